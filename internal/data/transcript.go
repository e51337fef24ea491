package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// transcriptRepo implements the transcript archive on SQLite
type transcriptRepo struct {
	db *sql.DB
}

// NewTranscriptRepo creates a new transcript repository
func NewTranscriptRepo(dbPath string) (repo.TranscriptRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			archived_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transcripts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transcript_messages (
			transcript_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			msg_id TEXT NOT NULL,
			author TEXT NOT NULL,
			kind TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			offer_amount REAL NOT NULL DEFAULT 0,
			offer_status TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transcript_messages table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transcripts_conversation ON transcripts(conversation_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transcript_messages_transcript ON transcript_messages(transcript_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &transcriptRepo{db: db}, nil
}

// Archive stores a closed session's final message log
func (r *transcriptRepo) Archive(ctx context.Context, conversationID string, messages []domain.Message) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transcripts (conversation_id, archived_at) VALUES (?, ?)
	`, conversationID, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert transcript: %w", err)
	}

	transcriptID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transcript id: %w", err)
	}

	for i, msg := range messages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transcript_messages
				(transcript_id, position, msg_id, author, kind, body, offer_amount, offer_status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			transcriptID,
			i,
			msg.ID,
			string(msg.Author),
			string(msg.MsgKind),
			msg.Text,
			msg.OfferAmount,
			string(msg.OfferStatus),
			msg.CreatedAt.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transcript: %w", err)
	}
	return transcriptID, nil
}

// ListByConversation returns archived transcripts, oldest first
func (r *transcriptRepo) ListByConversation(ctx context.Context, conversationID string) ([]*repo.Transcript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, archived_at
		FROM transcripts
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*repo.Transcript
	for rows.Next() {
		var t repo.Transcript
		var archivedAt int64
		if err := rows.Scan(&t.ID, &t.ConversationID, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		t.ArchivedAt = time.Unix(archivedAt, 0)
		transcripts = append(transcripts, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcripts: %w", err)
	}

	for _, t := range transcripts {
		msgs, err := r.loadMessages(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Messages = msgs
	}
	return transcripts, nil
}

func (r *transcriptRepo) loadMessages(ctx context.Context, transcriptID int64) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT msg_id, author, kind, body, offer_amount, offer_status, created_at
		FROM transcript_messages
		WHERE transcript_id = ?
		ORDER BY position ASC
	`, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var author, kind, status string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &author, &kind, &msg.Text, &msg.OfferAmount, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Author = domain.Author(author)
		msg.MsgKind = domain.MessageKind(kind)
		msg.OfferStatus = domain.OfferStatus(status)
		msg.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// Close closes the underlying database
func (r *transcriptRepo) Close() error {
	return r.db.Close()
}
