package usecase

import (
	"context"
	"errors"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
)

var (
	// ErrEmptyText indicates a message that is blank after trimming
	ErrEmptyText = errors.New("message text is empty")

	// ErrSessionClosed indicates an operation on a torn-down session
	ErrSessionClosed = errors.New("session is closed")

	// ErrUnknownMessage indicates a message ID not present in the log
	ErrUnknownMessage = errors.New("message not found")
)

// SessionConfig represents session timing configuration (value object)
type SessionConfig struct {
	FirstReplyDelay  time.Duration // delay before the first auto-reply
	SecondReplyDelay time.Duration // delay after the first reply fires
	CounterDelay     time.Duration // delay before an auto-counter-offer
}

// DefaultSessionConfig returns the stock timing used by the prototype
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FirstReplyDelay:  1 * time.Second,
		SecondReplyDelay: 2 * time.Second,
		CounterDelay:     2 * time.Second,
	}
}

// EventType represents a session event type
type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventOfferUpdated    EventType = "offer_updated"
	EventDialogChanged   EventType = "dialog_changed"
	EventSessionClosed   EventType = "session_closed"
)

// Event represents a state change broadcast to session observers
type Event struct {
	Type           EventType           `json:"type"`
	SessionID      string              `json:"session_id"`
	ConversationID string              `json:"conversation_id"`
	Message        *domain.Message     `json:"message,omitempty"`
	Dialog         *domain.OfferDialog `json:"dialog,omitempty"`
}

// MessageView is a message paired with its timestamp-grouping flag
type MessageView struct {
	domain.Message
	ShowTimestamp bool
}

// Snapshot is the full observable session state at one point in time
type Snapshot struct {
	SessionID            string
	ConversationID       string
	OpenedAt             time.Time
	Messages             []MessageView
	Dialog               *domain.OfferDialog
	LastCounterpartOffer *float64
	Closed               bool
}

// Session owns the mutable state of one open conversation view: the
// message log, the negotiation state and the transient offer dialog.
// All state lives in memory and dies with the session; mutation happens
// only through the methods below, which serialize on one mutex so timer
// callbacks and API calls never interleave mid-operation.
type Session struct {
	ID             string
	ConversationID string
	OpenedAt       time.Time

	cfg       SessionConfig
	scheduler repo.Scheduler
	responder repo.ResponderRepo
	onEvent   func(Event)

	mu          sync.Mutex
	conv        *domain.Conversation
	negotiation domain.Negotiation
	dialog      *domain.OfferDialog
	closed      bool
	entropy     *ulid.MonotonicEntropy
}

// NewSession creates an empty session for a conversation. Nothing is
// preloaded: the log starts empty and no prior negotiation history exists.
func NewSession(id, conversationID string, cfg SessionConfig, scheduler repo.Scheduler, responder repo.ResponderRepo, onEvent func(Event)) *Session {
	return &Session{
		ID:             id,
		ConversationID: conversationID,
		OpenedAt:       time.Now(),
		cfg:            cfg,
		scheduler:      scheduler,
		responder:      responder,
		onEvent:        onEvent,
		conv:           domain.NewConversation(conversationID),
		entropy:        ulid.Monotonic(mrand.New(mrand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Send appends a user text message and schedules the two scripted
// counterpart replies. The second reply is scheduled only when the first
// fires, so the pair is always delivered in order.
func (s *Session) Send(text string) (domain.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Message{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Message{}, ErrSessionClosed
	}

	msg := s.appendLocked(domain.Message{
		Text:    trimmed,
		Author:  domain.AuthorUser,
		MsgKind: domain.KindText,
	})

	history := s.conv.Snapshot()
	s.scheduler.Schedule(s.cfg.FirstReplyDelay, func() {
		s.deliverReplies(history, trimmed)
	})

	return msg, nil
}

// deliverReplies appends the first auto-reply and chains the second one
func (s *Session) deliverReplies(history []domain.Message, userText string) {
	replies := s.responder.Replies(context.Background(), history, userText)
	if len(replies) == 0 {
		return
	}

	s.appendCounterpartText(replies[0])

	rest := replies[1:]
	if len(rest) == 0 {
		return
	}
	s.scheduler.Schedule(s.cfg.SecondReplyDelay, func() {
		for _, text := range rest {
			s.appendCounterpartText(text)
		}
	})
}

func (s *Session) appendCounterpartText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.appendLocked(domain.Message{
		Text:    text,
		Author:  domain.AuthorCounterpart,
		MsgKind: domain.KindText,
	})
}

// OpenOfferDialog opens the amount-entry dialog for a fresh offer
func (s *Session) OpenOfferDialog() (*domain.OfferDialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.dialog = domain.NewInitialDialog()
	s.emitDialogLocked()
	return s.dialogCopyLocked(), nil
}

// RequestCounter opens the dialog in counter mode from a received offer
// message, pre-filled with that offer's amount
func (s *Session) RequestCounter(messageID string) (*domain.OfferDialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	// Counter is an action on a received offer; own offers don't qualify
	msg := s.conv.Find(messageID)
	if msg == nil || !msg.IsOffer() || msg.IsFromUser() {
		return nil, ErrUnknownMessage
	}

	s.dialog = domain.NewCounterDialog(msg.OfferAmount)
	s.emitDialogLocked()
	return s.dialogCopyLocked(), nil
}

// UpdateOfferDraft replaces the dialog's draft amount text
func (s *Session) UpdateOfferDraft(draft string) (*domain.OfferDialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.dialog == nil {
		return nil, nil
	}
	s.dialog.Draft = draft
	s.emitDialogLocked()
	return s.dialogCopyLocked(), nil
}

// DismissOfferDialog closes the dialog without submitting
func (s *Session) DismissOfferDialog() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.dialog != nil {
		s.dialog = nil
		s.emitDialogLocked()
	}
	return nil
}

// SubmitOffer validates and sends a user offer. The submitted offer
// supersedes every prior offer's actions, closes the dialog, and schedules
// one automated counter-offer. Invalid amount text fails before any state
// is touched.
func (s *Session) SubmitOffer(amountText string) (domain.Message, error) {
	amount, err := domain.ParseAmount(amountText)
	if err != nil {
		return domain.Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Message{}, ErrSessionClosed
	}

	s.conv.RetractOfferActions()

	msg := s.appendLocked(domain.Message{
		Author:      domain.AuthorUser,
		MsgKind:     domain.KindOffer,
		OfferAmount: amount,
	})

	if s.dialog != nil {
		s.dialog = nil
		s.emitDialogLocked()
	}

	s.scheduler.Schedule(s.cfg.CounterDelay, func() {
		s.deliverCounterOffer(amount)
	})

	return msg, nil
}

// deliverCounterOffer appends the automated counter-offer. The amount is
// computed at fire time from the negotiation state, so offers submitted
// in quick succession each get a counter based on the latest history.
func (s *Session) deliverCounterOffer(submitted float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	counter := s.negotiation.CounterAmount(submitted)

	// The new counter-offer supersedes anything still pending
	s.conv.RetractOfferActions()

	s.appendLocked(domain.Message{
		Author:         domain.AuthorCounterpart,
		MsgKind:        domain.KindOffer,
		OfferAmount:    counter,
		ActionsVisible: true,
		OfferStatus:    domain.OfferStatusPending,
	})

	s.negotiation.RecordCounterpartOffer(counter)
}

// AcceptOffer marks a pending counterpart offer accepted. Unknown IDs and
// already-resolved or superseded offers are no-ops reported as unchanged.
func (s *Session) AcceptOffer(messageID string) (bool, error) {
	return s.resolveOffer(messageID, domain.OfferStatusAccepted)
}

// RejectOffer marks a pending counterpart offer rejected
func (s *Session) RejectOffer(messageID string) (bool, error) {
	return s.resolveOffer(messageID, domain.OfferStatusRejected)
}

func (s *Session) resolveOffer(messageID string, status domain.OfferStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}

	msg := s.conv.Find(messageID)
	if msg == nil {
		return false, nil
	}
	if !msg.Resolve(status) {
		return false, nil
	}

	updated := *msg
	s.emitLocked(Event{Type: EventOfferUpdated, Message: &updated})
	return true, nil
}

// LastCounterpartOffer returns the amount of the last automated
// counter-offer, or false when none has been made yet
func (s *Session) LastCounterpartOffer() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.negotiation.LastCounterpartAmount, s.negotiation.HasCounterpartOffer
}

// GetSnapshot returns a copy of the observable session state, with the
// timestamp-grouping flag precomputed per message
func (s *Session) GetSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]MessageView, s.conv.Len())
	for i, msg := range s.conv.Messages {
		views[i] = MessageView{Message: msg, ShowTimestamp: s.conv.ShowTimestampAt(i)}
	}

	snap := Snapshot{
		SessionID:      s.ID,
		ConversationID: s.ConversationID,
		OpenedAt:       s.OpenedAt,
		Messages:       views,
		Dialog:         s.dialogCopyLocked(),
		Closed:         s.closed,
	}
	if s.negotiation.HasCounterpartOffer {
		amount := s.negotiation.LastCounterpartAmount
		snap.LastCounterpartOffer = &amount
	}
	return snap
}

// Close tears the session down: outstanding timers are cancelled so no
// callback mutates state after teardown, and the final log is returned
// for archiving. Closing twice returns nil.
func (s *Session) Close() []domain.Message {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	final := s.conv.Snapshot()
	s.mu.Unlock()

	s.scheduler.StopAll()
	s.emit(Event{Type: EventSessionClosed})
	return final
}

// appendLocked assigns identity and timestamp, appends, and notifies
// observers. Caller must hold s.mu.
func (s *Session) appendLocked(msg domain.Message) domain.Message {
	msg.ID = ulid.MustNew(ulid.Now(), s.entropy).String()
	msg.CreatedAt = time.Now()
	s.conv.Append(msg)

	appended := msg
	s.emitLocked(Event{Type: EventMessageAppended, Message: &appended})
	return msg
}

func (s *Session) dialogCopyLocked() *domain.OfferDialog {
	if s.dialog == nil {
		return nil
	}
	d := *s.dialog
	return &d
}

func (s *Session) emitDialogLocked() {
	s.emitLocked(Event{Type: EventDialogChanged, Dialog: s.dialogCopyLocked()})
}

func (s *Session) emitLocked(ev Event) {
	s.emit(ev)
}

func (s *Session) emit(ev Event) {
	if s.onEvent == nil {
		return
	}
	ev.SessionID = s.ID
	ev.ConversationID = s.ConversationID
	s.onEvent(ev)
}
