// Package calls exposes the operator-facing call API: placing outbound
// calls and inspecting active sessions.
package calls

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	callservice "github.com/dialtone-ai/dialtone/internal/service/call"
	"github.com/dialtone-ai/dialtone/internal/service/telephony"
	"github.com/dialtone-ai/dialtone/pkg/utils"
)

// Dialer places outbound calls. Satisfied by the telephony client.
type Dialer interface {
	StartCall(ctx context.Context, to, voiceURL, statusURL string) (*telephony.Call, error)
}

// Handler serves the call management endpoints.
type Handler struct {
	orch          *callservice.Orchestrator
	dialer        Dialer
	publicBaseURL string
}

// New creates the call API handler. dialer may be nil when telephony
// credentials are not configured.
func New(orch *callservice.Orchestrator, dialer Dialer, publicBaseURL string) *Handler {
	return &Handler{orch: orch, dialer: dialer, publicBaseURL: publicBaseURL}
}

// RegisterRoutes mounts the call management endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start-call", h.handleStartCall)
	r.Get("/calls/active", h.handleActiveCalls)
	r.Get("/calls/{callSID}/turns", h.handleCallTurns)
}

func (h *Handler) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PhoneNumber string `json:"phoneNumber"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PhoneNumber == "" {
		utils.RespondError(w, http.StatusBadRequest, "phone number is required")
		return
	}

	if h.dialer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "telephony is not configured")
		return
	}

	created, err := h.dialer.StartCall(r.Context(), payload.PhoneNumber,
		h.publicBaseURL+"/twilio/voice", h.publicBaseURL+"/twilio/status")
	if err != nil {
		log.Printf("[calls] failed to start call to %s: %v", payload.PhoneNumber, err)
		status := http.StatusInternalServerError
		if errors.Is(err, telephony.ErrNonPublicURL) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, "failed to start call")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"callSid": created.SID,
		"message": "Call initiated successfully",
	})
}

func (h *Handler) handleActiveCalls(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.orch.ActiveSessions())
}

func (h *Handler) handleCallTurns(w http.ResponseWriter, r *http.Request) {
	callSID := chi.URLParam(r, "callSID")
	utils.RespondJSON(w, http.StatusOK, h.orch.Turns(callSID))
}
