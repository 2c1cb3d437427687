package server

import (
	"time"

	"shopchat/internal/chatsession"
)

// Frame types from client to server
const (
	TypeSubmit = "submit"
	TypeClear  = "clear"
)

// Frame types from server to client
const (
	TypeState = "state"
	TypeError = "error"
)

// Error codes carried by error frames and JSON error bodies.
const (
	ErrorCodeEmptySubmission = "empty_submission"
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionClosed   = "session_closed"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeInternal        = "internal_error"
)

// BaseMessage contains common fields for all frames.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	SessionID string `json:"session_id,omitempty"`
}

// SubmitMessage is sent by the client to post a chat message.
type SubmitMessage struct {
	BaseMessage
	Text        string                       `json:"text"`
	Attachments []chatsession.AttachmentMeta `json:"attachments,omitempty"`
}

// StateMessage carries the full session state after every change.
type StateMessage struct {
	BaseMessage
	Messages    []chatsession.Message `json:"messages"`
	IsBotTyping bool                  `json:"is_bot_typing"`
}

// ErrorMessage reports a rejected frame or request.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newStateMessage(sessionID string, st chatsession.State) StateMessage {
	msgs := st.Messages
	if msgs == nil {
		msgs = []chatsession.Message{}
	}
	return StateMessage{
		BaseMessage: BaseMessage{Type: TypeState, Ts: time.Now().UnixMilli(), SessionID: sessionID},
		Messages:    msgs,
		IsBotTyping: st.IsBotTyping,
	}
}

func newErrorMessage(sessionID, code, message string) ErrorMessage {
	return ErrorMessage{
		BaseMessage: BaseMessage{Type: TypeError, Ts: time.Now().UnixMilli(), SessionID: sessionID},
		Code:        code,
		Message:     message,
	}
}
