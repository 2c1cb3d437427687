// Package chatsession implements the simulated chatbot conversation: the
// message log, the typing indicator and the single pending reply task.
package chatsession

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// AttachmentMeta is the name/type record carried by a sent message.
// File bytes never enter the log.
type AttachmentMeta struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// Message is one entry in the log. Messages are never mutated after creation.
type Message struct {
	ID          string           `json:"id"`
	Role        Role             `json:"role"`
	Content     string           `json:"content"`
	Attachments []AttachmentMeta `json:"attachments,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// State is a point-in-time copy of the session handed to render callbacks.
type State struct {
	Messages    []Message `json:"messages"`
	IsBotTyping bool      `json:"is_bot_typing"`
}

// BotReplies counts bot messages in the state.
func (s State) BotReplies() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleBot {
			n++
		}
	}
	return n
}

// RenderFunc receives a fresh State after every mutation.
// It is called with the session lock held and must not block or call back
// into the session.
type RenderFunc func(State)
