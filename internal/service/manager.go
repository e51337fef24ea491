package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
)

// SessionManager owns the open sessions. A conversation has at most one
// open session; opening it again returns the existing one. Closing a
// session cancels its timers, archives the transcript and drops the state.
type SessionManager struct {
	cfg          usecase.SessionConfig
	responder    repo.ResponderRepo
	transcripts  repo.TranscriptRepo
	newScheduler func() repo.Scheduler

	mu             sync.RWMutex
	sessions       map[string]*usecase.Session // by session ID
	byConversation map[string]string           // conversation ID -> session ID

	onEvent func(usecase.Event)
}

// NewSessionManager creates a new session manager
func NewSessionManager(
	cfg usecase.SessionConfig,
	responder repo.ResponderRepo,
	transcripts repo.TranscriptRepo,
	newScheduler func() repo.Scheduler,
) *SessionManager {
	return &SessionManager{
		cfg:            cfg,
		responder:      responder,
		transcripts:    transcripts,
		newScheduler:   newScheduler,
		sessions:       make(map[string]*usecase.Session),
		byConversation: make(map[string]string),
	}
}

// SetEventCallback sets the observer callback for all sessions
func (m *SessionManager) SetEventCallback(callback func(usecase.Event)) {
	m.onEvent = callback
}

// Open returns the session for a conversation, creating an empty one if
// none is open. Reports whether a new session was created.
func (m *SessionManager) Open(conversationID string) (*usecase.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sid, ok := m.byConversation[conversationID]; ok {
		if session, ok := m.sessions[sid]; ok {
			return session, false
		}
	}

	session := usecase.NewSession(
		uuid.NewString(),
		conversationID,
		m.cfg,
		m.newScheduler(),
		m.responder,
		m.emit,
	)
	m.sessions[session.ID] = session
	m.byConversation[conversationID] = session.ID

	fmt.Printf("[Sessions] Opened session %s for conversation %s\n", session.ID, conversationID)
	return session, true
}

// Get returns an open session by ID, or nil
func (m *SessionManager) Get(sessionID string) *usecase.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID]
}

// SessionInfo identifies one open session
type SessionInfo struct {
	SessionID      string
	ConversationID string
	OpenedAt       time.Time
}

// List returns every open session, oldest first
func (m *SessionManager) List() []SessionInfo {
	m.mu.RLock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, SessionInfo{
			SessionID:      session.ID,
			ConversationID: session.ConversationID,
			OpenedAt:       session.OpenedAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].OpenedAt.Equal(infos[j].OpenedAt) {
			return infos[i].SessionID < infos[j].SessionID
		}
		return infos[i].OpenedAt.Before(infos[j].OpenedAt)
	})
	return infos
}

// Close tears down a session and archives its transcript
func (m *SessionManager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
		delete(m.byConversation, session.ConversationID)
	}
	m.mu.Unlock()

	if !ok {
		return usecase.ErrSessionClosed
	}

	final := session.Close()
	if m.transcripts != nil && len(final) > 0 {
		if _, err := m.transcripts.Archive(ctx, session.ConversationID, final); err != nil {
			return fmt.Errorf("archive transcript: %w", err)
		}
	}

	fmt.Printf("[Sessions] Closed session %s (%d messages archived)\n", sessionID, len(final))
	return nil
}

// CloseAll tears down every open session (shutdown path)
func (m *SessionManager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			fmt.Printf("[Sessions] Error closing session %s: %v\n", id, err)
		}
	}
}

// Count returns the number of open sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) emit(ev usecase.Event) {
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}
