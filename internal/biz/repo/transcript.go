package repo

import (
	"context"
	"time"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
)

// Transcript represents one archived session log
type Transcript struct {
	ID             int64
	ConversationID string
	ArchivedAt     time.Time
	Messages       []domain.Message
}

// TranscriptRepo is the transcript archive interface.
// The archive is write-behind: sessions append to it on close and never
// read from it, so live negotiation state stays ephemeral.
type TranscriptRepo interface {
	// Archive stores the final message log of a closed session
	Archive(ctx context.Context, conversationID string, messages []domain.Message) (int64, error)

	// ListByConversation returns archived transcripts for a conversation,
	// oldest first
	ListByConversation(ctx context.Context, conversationID string) ([]*Transcript, error)

	// Close releases the underlying store
	Close() error
}
