package data

import (
	"context"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
)

// The scripted counterpart replies. These stand in for a real backend and
// are sent regardless of what the user typed.
const (
	FirstAutoReply  = "Thanks for your message!"
	SecondAutoReply = "This is an automated response. We'll get back to you soon!"
)

// scriptedResponder implements the default, content-unaware responder
type scriptedResponder struct{}

// NewScriptedResponder creates the stock scripted responder
func NewScriptedResponder() repo.ResponderRepo {
	return scriptedResponder{}
}

// Replies returns the two fixed reply texts
func (scriptedResponder) Replies(ctx context.Context, history []domain.Message, userText string) []string {
	return []string{FirstAutoReply, SecondAutoReply}
}
