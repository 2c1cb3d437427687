// Package composer binds the message input and the attachment staging area to
// a chat session.
package composer

import (
	"errors"
	"strings"

	"shopchat/internal/attachment"
	"shopchat/internal/chatsession"
	"shopchat/internal/logging"
)

// ErrInputDisabled is returned by Submit while the composer is disabled.
var ErrInputDisabled = errors.New("input disabled")

// Composer is the composition area: draft text plus staged attachments.
type Composer struct {
	Text     string
	Staging  *attachment.Staging
	Disabled bool

	session *chatsession.Session
}

// New creates a composer that submits to session.
func New(session *chatsession.Session, staging *attachment.Staging) *Composer {
	if staging == nil {
		staging = attachment.NewStaging(nil)
	}
	return &Composer{Staging: staging, session: session}
}

// CanSend reports whether Submit would forward anything to the session.
func (c *Composer) CanSend() bool {
	if c.Disabled {
		return false
	}
	return strings.TrimSpace(c.Text) != "" || c.Staging.Len() > 0
}

// Submit sends the draft and staged attachment metadata. On success the draft
// is emptied and every preview handle released. A disabled composer never
// sends; an empty one returns chatsession.ErrEmptySubmission and keeps its state.
func (c *Composer) Submit() error {
	if c.Disabled {
		return ErrInputDisabled
	}

	if err := c.session.Submit(c.Text, c.Staging.Metadata()); err != nil {
		if !errors.Is(err, chatsession.ErrEmptySubmission) {
			logging.SessionWarn("Composer submit failed: %v", err)
		}
		return err
	}

	c.Text = ""
	c.Staging.ClearAll()
	return nil
}

// Teardown releases all staged previews. Safe to call repeatedly.
func (c *Composer) Teardown() {
	c.Staging.ClearAll()
}
