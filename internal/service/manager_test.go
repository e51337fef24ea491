package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
)

// Mock implementations

type noopScheduler struct{}

func (noopScheduler) Schedule(d time.Duration, fn func()) int64 { return 0 }
func (noopScheduler) Cancel(id int64)                           {}
func (noopScheduler) StopAll()                                  {}

type mockResponder struct{}

func (mockResponder) Replies(ctx context.Context, history []domain.Message, userText string) []string {
	return []string{"ok"}
}

type mockTranscriptRepo struct {
	mu       sync.Mutex
	archived map[string][][]domain.Message
}

func newMockTranscriptRepo() *mockTranscriptRepo {
	return &mockTranscriptRepo{archived: make(map[string][][]domain.Message)}
}

func (m *mockTranscriptRepo) Archive(ctx context.Context, conversationID string, messages []domain.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived[conversationID] = append(m.archived[conversationID], messages)
	return int64(len(m.archived[conversationID])), nil
}

func (m *mockTranscriptRepo) ListByConversation(ctx context.Context, conversationID string) ([]*repo.Transcript, error) {
	return nil, nil
}

func (m *mockTranscriptRepo) Close() error { return nil }

func newTestManager(transcripts repo.TranscriptRepo) *SessionManager {
	return NewSessionManager(
		usecase.DefaultSessionConfig(),
		mockResponder{},
		transcripts,
		func() repo.Scheduler { return noopScheduler{} },
	)
}

func TestSessionManager_OpenIsIdempotentPerConversation(t *testing.T) {
	manager := newTestManager(nil)

	first, created := manager.Open("conv-1")
	if !created {
		t.Fatal("Expected a new session on first open")
	}

	second, created := manager.Open("conv-1")
	if created {
		t.Error("Expected existing session on second open")
	}
	if first.ID != second.ID {
		t.Errorf("Expected same session, got %s and %s", first.ID, second.ID)
	}

	other, created := manager.Open("conv-2")
	if !created || other.ID == first.ID {
		t.Error("Expected a distinct session for another conversation")
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 open sessions, got %d", manager.Count())
	}
}

func TestSessionManager_List(t *testing.T) {
	manager := newTestManager(newMockTranscriptRepo())

	if infos := manager.List(); len(infos) != 0 {
		t.Fatalf("Expected empty list, got %d sessions", len(infos))
	}

	first, _ := manager.Open("conv-1")
	second, _ := manager.Open("conv-2")

	infos := manager.List()
	if len(infos) != 2 {
		t.Fatalf("Expected 2 open sessions, got %d", len(infos))
	}
	byID := make(map[string]SessionInfo)
	for _, info := range infos {
		byID[info.SessionID] = info
	}
	if byID[first.ID].ConversationID != "conv-1" || byID[second.ID].ConversationID != "conv-2" {
		t.Errorf("Unexpected listing: %+v", infos)
	}
	for _, info := range infos {
		if info.OpenedAt.IsZero() {
			t.Errorf("Expected OpenedAt set for session %s", info.SessionID)
		}
	}

	// Closed sessions drop out of the listing
	manager.Close(context.Background(), first.ID)
	infos = manager.List()
	if len(infos) != 1 || infos[0].SessionID != second.ID {
		t.Errorf("Expected only the remaining session, got %+v", infos)
	}
}

func TestSessionManager_CloseArchivesTranscript(t *testing.T) {
	transcripts := newMockTranscriptRepo()
	manager := newTestManager(transcripts)

	session, _ := manager.Open("conv-1")
	session.Send("hello")

	if err := manager.Close(context.Background(), session.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if manager.Get(session.ID) != nil {
		t.Error("Expected session removed after close")
	}

	transcripts.mu.Lock()
	defer transcripts.mu.Unlock()
	logs := transcripts.archived["conv-1"]
	if len(logs) != 1 {
		t.Fatalf("Expected 1 archived transcript, got %d", len(logs))
	}
	if len(logs[0]) != 1 || logs[0][0].Text != "hello" {
		t.Error("Expected the final message log to be archived")
	}
}

func TestSessionManager_CloseUnknownSession(t *testing.T) {
	manager := newTestManager(nil)

	if err := manager.Close(context.Background(), "nope"); err != usecase.ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
}

func TestSessionManager_ReopenAfterClose(t *testing.T) {
	manager := newTestManager(newMockTranscriptRepo())

	first, _ := manager.Open("conv-1")
	first.Send("hi")
	manager.Close(context.Background(), first.ID)

	// The next open starts from scratch: nothing carries over
	second, created := manager.Open("conv-1")
	if !created {
		t.Fatal("Expected a fresh session after close")
	}
	if second.ID == first.ID {
		t.Error("Expected a new session ID")
	}
	if n := len(second.GetSnapshot().Messages); n != 0 {
		t.Errorf("Expected empty log in the new session, got %d messages", n)
	}
}

func TestSessionManager_EmptySessionNotArchived(t *testing.T) {
	transcripts := newMockTranscriptRepo()
	manager := newTestManager(transcripts)

	session, _ := manager.Open("conv-1")
	if err := manager.Close(context.Background(), session.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	transcripts.mu.Lock()
	defer transcripts.mu.Unlock()
	if len(transcripts.archived["conv-1"]) != 0 {
		t.Error("Expected no transcript for a session with no messages")
	}
}

func TestSessionManager_CloseAll(t *testing.T) {
	manager := newTestManager(newMockTranscriptRepo())

	manager.Open("conv-1")
	manager.Open("conv-2")
	manager.Open("conv-3")

	manager.CloseAll(context.Background())

	if manager.Count() != 0 {
		t.Errorf("Expected all sessions closed, %d remain", manager.Count())
	}
}

func TestSessionManager_EventsCarrySessionIdentity(t *testing.T) {
	manager := newTestManager(nil)

	var mu sync.Mutex
	var events []usecase.Event
	manager.SetEventCallback(func(ev usecase.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	session, _ := manager.Open("conv-1")
	session.Send("hello")

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatal("Expected events from session operations")
	}
	for _, ev := range events {
		if ev.SessionID != session.ID || ev.ConversationID != "conv-1" {
			t.Errorf("Event missing identity: %+v", ev)
		}
	}
}
