package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/service"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/ws"
)

// Server provides the HTTP JSON API over the session manager
type Server struct {
	manager     *service.SessionManager
	transcripts repo.TranscriptRepo
	hub         *ws.Hub

	// Fixed counterpart display name; the prototype never fetches a profile
	counterpartName string

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(manager *service.SessionManager, transcripts repo.TranscriptRepo, hub *ws.Hub, counterpartName string, port int) *Server {
	return &Server{
		manager:         manager,
		transcripts:     transcripts,
		hub:             hub,
		counterpartName: counterpartName,
		port:            port,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/conversations/{conversationID}/session", s.handleOpenSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/transcripts/{conversationID}", s.handleTranscripts)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Post("/messages", s.handleSendMessage)
			r.Post("/offers", s.handleSubmitOffer)
			r.Post("/offers/{messageID}/accept", s.handleAcceptOffer)
			r.Post("/offers/{messageID}/reject", s.handleRejectOffer)
			r.Post("/offer-dialog", s.handleOpenDialog)
			r.Patch("/offer-dialog", s.handleUpdateDraft)
			r.Delete("/offer-dialog", s.handleDismissDialog)
		})
	})

	if s.hub != nil {
		r.Get("/ws/sessions/{sessionID}", s.handleSubscribe)
	}

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Routes(),
	}
	fmt.Printf("[API] Listening on :%d\n", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
}

// JSON shapes

type messageJSON struct {
	ID             string    `json:"id"`
	Text           string    `json:"text,omitempty"`
	Author         string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	Kind           string    `json:"kind"`
	OfferAmount    *float64  `json:"offer_amount,omitempty"`
	ActionsVisible bool      `json:"actions_visible"`
	OfferStatus    string    `json:"offer_status,omitempty"`
	ShowTimestamp  bool      `json:"show_timestamp"`
}

type dialogJSON struct {
	Mode  string   `json:"mode"`
	Draft string   `json:"draft"`
	Cap   *float64 `json:"cap,omitempty"`
}

type snapshotJSON struct {
	SessionID            string        `json:"session_id"`
	ConversationID       string        `json:"conversation_id"`
	CounterpartName      string        `json:"counterpart_name,omitempty"`
	OpenedAt             time.Time     `json:"opened_at"`
	Messages             []messageJSON `json:"messages"`
	Dialog               *dialogJSON   `json:"dialog,omitempty"`
	LastCounterpartOffer *float64      `json:"last_counterpart_offer,omitempty"`
}

func toMessageJSON(m domain.Message, showTimestamp bool) messageJSON {
	out := messageJSON{
		ID:             m.ID,
		Text:           m.Text,
		Author:         string(m.Author),
		CreatedAt:      m.CreatedAt,
		Kind:           string(m.MsgKind),
		ActionsVisible: m.ActionsVisible,
		OfferStatus:    string(m.OfferStatus),
		ShowTimestamp:  showTimestamp,
	}
	if m.IsOffer() {
		amount := m.OfferAmount
		out.OfferAmount = &amount
	}
	return out
}

func toDialogJSON(d *domain.OfferDialog) *dialogJSON {
	if d == nil {
		return nil
	}
	out := &dialogJSON{Mode: string(d.Mode), Draft: d.Draft}
	if d.IsCounter() {
		capAmount := d.Cap
		out.Cap = &capAmount
	}
	return out
}

func (s *Server) toSnapshotJSON(snap usecase.Snapshot) snapshotJSON {
	out := snapshotJSON{
		SessionID:            snap.SessionID,
		ConversationID:       snap.ConversationID,
		CounterpartName:      s.counterpartName,
		OpenedAt:             snap.OpenedAt,
		Messages:             make([]messageJSON, len(snap.Messages)),
		Dialog:               toDialogJSON(snap.Dialog),
		LastCounterpartOffer: snap.LastCounterpartOffer,
	}
	for i, mv := range snap.Messages {
		out.Messages[i] = toMessageJSON(mv.Message, mv.ShowTimestamp)
	}
	return out
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "missing conversation id")
		return
	}

	session, created := s.manager.Open(conversationID)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, s.toSnapshotJSON(session.GetSnapshot()))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	type sessionInfoJSON struct {
		SessionID      string    `json:"session_id"`
		ConversationID string    `json:"conversation_id"`
		OpenedAt       time.Time `json:"opened_at"`
	}

	infos := s.manager.List()
	out := make([]sessionInfoJSON, len(infos))
	for i, info := range infos {
		out[i] = sessionInfoJSON{
			SessionID:      info.SessionID,
			ConversationID: info.ConversationID,
			OpenedAt:       info.OpenedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.toSnapshotJSON(session.GetSnapshot()))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if s.manager.Get(sessionID) == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := s.manager.Close(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := session.Send(payload.Text)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageJSON(msg, true))
}

func (s *Server) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}

	var payload struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := session.SubmitOffer(payload.Amount)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageJSON(msg, true))
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.handleResolveOffer(w, r, domain.OfferStatusAccepted)
}

func (s *Server) handleRejectOffer(w http.ResponseWriter, r *http.Request) {
	s.handleResolveOffer(w, r, domain.OfferStatusRejected)
}

func (s *Server) handleResolveOffer(w http.ResponseWriter, r *http.Request, status domain.OfferStatus) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}

	messageID := chi.URLParam(r, "messageID")
	var changed bool
	var err error
	if status == domain.OfferStatusAccepted {
		changed, err = session.AcceptOffer(messageID)
	} else {
		changed, err = session.RejectOffer(messageID)
	}
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Server) handleOpenDialog(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}

	var payload struct {
		Mode      string `json:"mode"`
		MessageID string `json:"message_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var dialog *domain.OfferDialog
	var err error
	switch payload.Mode {
	case "", string(domain.DialogInitial):
		dialog, err = session.OpenOfferDialog()
	case string(domain.DialogCounter):
		dialog, err = session.RequestCounter(payload.MessageID)
	default:
		writeError(w, http.StatusBadRequest, "unknown dialog mode")
		return
	}
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDialogJSON(dialog))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}

	var payload struct {
		Draft string `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	dialog, err := session.UpdateOfferDraft(payload.Draft)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if dialog == nil {
		writeError(w, http.StatusConflict, "no dialog open")
		return
	}
	writeJSON(w, http.StatusOK, toDialogJSON(dialog))
}

func (s *Server) handleDismissDialog(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFromRequest(w, r)
	if session == nil {
		return
	}
	if err := session.DismissOfferDialog(); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusNotFound, "transcript archive disabled")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	transcripts, err := s.transcripts.ListByConversation(r.Context(), conversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type transcriptJSON struct {
		ID         int64         `json:"id"`
		ArchivedAt time.Time     `json:"archived_at"`
		Messages   []messageJSON `json:"messages"`
	}
	out := make([]transcriptJSON, len(transcripts))
	for i, t := range transcripts {
		msgs := make([]messageJSON, len(t.Messages))
		for j, m := range t.Messages {
			msgs[j] = toMessageJSON(m, false)
		}
		out[i] = transcriptJSON{ID: t.ID, ArchivedAt: t.ArchivedAt, Messages: msgs}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation_id": conversationID, "transcripts": out})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if s.manager.Get(sessionID) == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.hub.Subscribe(w, r, sessionID)
}

// Helpers

func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) *usecase.Session {
	sessionID := chi.URLParam(r, "sessionID")
	session := s.manager.Get(sessionID)
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return session
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyText), errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrUnknownMessage):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrSessionClosed):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
