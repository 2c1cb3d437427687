package chatsession

import (
	"sync"
	"time"
)

// Task is a handle to a scheduled single-shot callback.
type Task interface {
	// Cancel stops the task. It reports whether the call prevented the
	// callback from running.
	Cancel() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// TimerScheduler schedules on the wall clock with time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(d time.Duration, fn func()) Task {
	return timerTask{time.AfterFunc(d, fn)}
}

type timerTask struct{ t *time.Timer }

func (t timerTask) Cancel() bool { return t.t.Stop() }

// ManualScheduler is a virtual clock. Tasks only fire inside Advance, on the
// caller's goroutine, in due-time order (ties in scheduling order).
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	s         *ManualScheduler
	due       time.Duration
	seq       uint64
	fn        func()
	cancelled bool
	fired     bool
}

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{s: m, due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	return true
}

// Now returns the elapsed virtual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns how many tasks are neither fired nor cancelled.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every task that comes due.
// Tasks scheduled by a firing callback fire in the same call if they fall
// inside the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d

	for {
		next := m.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		m.now = next.due
		m.mu.Unlock()
		next.fn()
		m.mu.Lock()
	}

	m.now = target
	m.compactLocked()
	m.mu.Unlock()
}

func (m *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	var best *manualTask
	for _, t := range m.tasks {
		if t.cancelled || t.fired || t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *ManualScheduler) compactLocked() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled && !t.fired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = live
}
