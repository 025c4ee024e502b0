// Package honeypot exposes the message intake and session inspection
// endpoints.
package honeypot

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	honeypotService "github.com/teamyukt/honeynet/internal/service/honeypot"
	"github.com/teamyukt/honeynet/pkg/utils"
)

// Handler serves the adversary-facing message API.
type Handler struct {
	svc *honeypotService.Service
}

// New creates the handler.
func New(svc *honeypotService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the message and inspection routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/message", h.handleMessage)
	r.Get("/sessions", h.handleListSessions)
	r.Get("/session/{sessionID}", h.handleGetSession)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   struct {
			Sender    string `json:"sender"`
			Text      string `json:"text"`
			Timestamp string `json:"timestamp"`
		} `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.HandleMessage(r.Context(), payload.SessionID, payload.Message.Text)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondSuccess(w, map[string]interface{}{
		"sessionId": result.SessionID,
		"reply":     result.Reply,
	})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	utils.RespondSuccess(w, map[string]interface{}{
		"sessions": h.svc.List(),
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, ok := h.svc.Get(sessionID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	rep, _ := h.svc.Finalize(sessionID)

	type messageView struct {
		Sender    string `json:"sender"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
	}
	messages := make([]messageView, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		messages = append(messages, messageView{
			Sender:    string(msg.Sender),
			Text:      msg.Text,
			Timestamp: msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":             sess.ID,
		"personaId":             sess.PersonaID,
		"scamDetected":          sess.ScamDetected,
		"scamType":              sess.ScamType,
		"confidenceLevel":       sess.Confidence,
		"turnCount":             sess.State.TurnCount,
		"stage":                 sess.State.Stage.String(),
		"extractionPriorities":  sess.State.Priorities,
		"extractedIntelligence": sess.Ledger.Snapshot(),
		"messages":              messages,
		"finalized":             sess.State.Finalized,
		"finalOutput":           rep,
	})
}
