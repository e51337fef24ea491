package repo

import (
	"context"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
)

// ResponderRepo produces the counterpart's automated reply texts for a
// user message. Implementations stand in for a real counterpart backend:
// the default one is scripted and ignores the input entirely.
type ResponderRepo interface {
	// Replies returns the reply texts to deliver, in order. The session
	// schedules one delayed append per entry.
	Replies(ctx context.Context, history []domain.Message, userText string) []string
}
