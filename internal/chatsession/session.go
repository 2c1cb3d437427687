package chatsession

import (
	"strings"
	"sync"
	"time"

	"shopchat/internal/logging"

	"github.com/google/uuid"
)

// DefaultReplyDelay is how long the simulated bot "types" before replying.
const DefaultReplyDelay = 1000 * time.Millisecond

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Delay     time.Duration    // DefaultReplyDelay when zero
	Scheduler Scheduler        // TimerScheduler when nil
	Responder Responder        // RandomResponder over DefaultResponses when nil
	Render    RenderFunc       // no-op when nil
	Now       func() time.Time // time.Now when nil
	NewID     func() string    // uuid.NewString when nil
}

// Session owns the message log, the typing indicator, and at most one
// pending reply task.
//
// Every scheduled task carries the generation it was created under. Submit,
// Clear and Teardown bump the generation, so a task whose timer already
// started running when it was cancelled still finds a stale generation under
// the lock and leaves the session alone.
type Session struct {
	mu       sync.Mutex
	messages []Message
	typing   bool
	pending  Task
	gen      uint64
	closed   bool
	once     sync.Once

	lastText        string
	lastAttachments []AttachmentMeta

	delay     time.Duration
	scheduler Scheduler
	responder Responder
	render    RenderFunc
	now       func() time.Time
	newID     func() string
}

// New creates an empty session.
func New(opts Options) *Session {
	s := &Session{
		delay:     opts.Delay,
		scheduler: opts.Scheduler,
		responder: opts.Responder,
		render:    opts.Render,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.delay <= 0 {
		s.delay = DefaultReplyDelay
	}
	if s.scheduler == nil {
		s.scheduler = TimerScheduler{}
	}
	if s.responder == nil {
		s.responder = NewRandomResponder(nil, nil)
	}
	if s.render == nil {
		s.render = func(State) {}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Submit appends a user message, shows the typing indicator and (re)schedules
// the bot reply. A pending reply is cancelled before the new one is scheduled.
func (s *Session) Submit(text string, attachments []AttachmentMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	content := strings.TrimSpace(text)
	if content == "" && len(attachments) == 0 {
		return ErrEmptySubmission
	}
	if content == "" {
		// Attachment-only messages carry a single space so the bubble renders.
		content = " "
	}

	var atts []AttachmentMeta
	if len(attachments) > 0 {
		atts = append([]AttachmentMeta(nil), attachments...)
	}

	s.messages = append(s.messages, Message{
		ID:          s.newID(),
		Role:        RoleUser,
		Content:     content,
		Attachments: atts,
		CreatedAt:   s.now(),
	})
	s.typing = true
	s.lastText = content
	s.lastAttachments = atts

	if s.cancelPendingLocked() {
		logging.SessionDebug("Superseded pending reply")
	}
	s.gen++
	gen := s.gen
	s.pending = s.scheduler.Schedule(s.delay, func() { s.fire(gen) })

	logging.SessionDebug("Submit: %d chars, %d attachments, reply in %v", len(content), len(atts), s.delay)
	s.render(s.snapshotLocked())
	return nil
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pending == nil || gen != s.gen {
		logging.SessionDebug("Dropped stale reply task (gen %d, current %d)", gen, s.gen)
		return
	}

	s.messages = append(s.messages, Message{
		ID:        s.newID(),
		Role:      RoleBot,
		Content:   s.responder.Respond(s.lastText, s.lastAttachments),
		CreatedAt: s.now(),
	})
	s.typing = false
	s.pending = nil

	s.render(s.snapshotLocked())
}

// Clear empties the log, cancels any pending reply and hides the typing
// indicator. Clearing a closed session does nothing.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.cancelPendingLocked()
	s.gen++
	s.messages = nil
	s.typing = false
	s.lastText = ""
	s.lastAttachments = nil

	logging.Session("Chat cleared")
	s.render(s.snapshotLocked())
}

// Teardown cancels any pending reply and closes the session. Calls after the
// first are no-ops.
func (s *Session) Teardown() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.cancelPendingLocked()
		s.gen++
		s.typing = false
		s.closed = true
		logging.Session("Session torn down with %d messages", len(s.messages))
	})
}

func (s *Session) cancelPendingLocked() bool {
	if s.pending == nil {
		return false
	}
	s.pending.Cancel()
	s.pending = nil
	return true
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return State{Messages: msgs, IsBotTyping: s.typing}
}

// Pending reports whether a reply task is scheduled.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Closed reports whether Teardown has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Delay returns the configured reply delay.
func (s *Session) Delay() time.Duration {
	return s.delay
}
