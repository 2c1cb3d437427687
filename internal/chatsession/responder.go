package chatsession

import (
	"math/rand/v2"
	"sync"
)

// DefaultResponses is the canned reply set of the simulated bot.
var DefaultResponses = []string{
	"Hi there! How can I assist you?",
	"That's an interesting point!",
	"Sure, I can help with that.",
	"Let's think this through together.",
	"Sounds good to me!",
	"Alright 👍",
}

// Responder produces the bot's reply to a user message. It stands in for a
// real backend; implementations must not block.
type Responder interface {
	Respond(text string, attachments []AttachmentMeta) string
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(text string, attachments []AttachmentMeta) string

// Respond implements Responder.
func (f ResponderFunc) Respond(text string, attachments []AttachmentMeta) string {
	return f(text, attachments)
}

// RandomResponder picks uniformly from a fixed set of responses.
type RandomResponder struct {
	mu        sync.Mutex
	responses []string
	rng       *rand.Rand
}

// NewRandomResponder builds a responder over responses (DefaultResponses when
// empty). A nil rng uses the shared global source.
func NewRandomResponder(responses []string, rng *rand.Rand) *RandomResponder {
	if len(responses) == 0 {
		responses = DefaultResponses
	}
	return &RandomResponder{
		responses: append([]string(nil), responses...),
		rng:       rng,
	}
}

// Respond implements Responder. The input is ignored.
func (r *RandomResponder) Respond(string, []AttachmentMeta) string {
	if r.rng == nil {
		return r.responses[rand.IntN(len(r.responses))]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responses[r.rng.IntN(len(r.responses))]
}

// Responses returns a copy of the reply set.
func (r *RandomResponder) Responses() []string {
	return append([]string(nil), r.responses...)
}
