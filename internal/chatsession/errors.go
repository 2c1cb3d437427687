package chatsession

import "errors"

var (
	// ErrEmptySubmission is returned when both the trimmed text and the
	// attachment list are empty. The session is left untouched.
	ErrEmptySubmission = errors.New("empty submission")

	// ErrSessionClosed is returned by Submit after Teardown.
	ErrSessionClosed = errors.New("session closed")
)
