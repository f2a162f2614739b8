// Package twilio exposes the webhook endpoints the telephony provider calls
// back into. Each handler is stateless: every request carries the call SID
// that anchors it to a session.
package twilio

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	callservice "github.com/dialtone-ai/dialtone/internal/service/call"
	"github.com/dialtone-ai/dialtone/internal/service/telephony"
	"github.com/dialtone-ai/dialtone/pkg/utils"
)

// defaultWebhookBudget bounds synchronous recording processing. The provider
// abandons a webhook after roughly fifteen seconds; the capture retries and
// the generation budget together must finish inside that window.
const defaultWebhookBudget = 14 * time.Second

// CallUpdater pushes TwiML into an in-progress call. Satisfied by the
// telephony client; stubbed in tests.
type CallUpdater interface {
	UpdateCallTwiML(ctx context.Context, callSID, twiml string) error
}

// Handler routes provider webhooks into the call orchestrator. Each caller
// utterance is processed on exactly one path: the capture pipeline when one
// is wired, the provider's transcription callback otherwise.
type Handler struct {
	orch          *callservice.Orchestrator
	updater       CallUpdater
	recordTimeout int
	webhookBudget time.Duration

	// providerTranscription is set when no capture pipeline exists; Record
	// verbs then carry the transcription attributes and the transcription
	// webhook drives the dialogue.
	providerTranscription bool
}

// New creates the webhook handler. updater may be nil when telephony
// credentials are not configured; transcription replies are then only
// logged.
func New(orch *callservice.Orchestrator, updater CallUpdater, recordTimeout int, webhookBudget time.Duration) *Handler {
	if recordTimeout <= 0 {
		recordTimeout = 10
	}
	if webhookBudget <= 0 {
		webhookBudget = defaultWebhookBudget
	}
	return &Handler{
		orch:                  orch,
		updater:               updater,
		recordTimeout:         recordTimeout,
		webhookBudget:         webhookBudget,
		providerTranscription: !orch.CaptureEnabled(),
	}
}

// RegisterRoutes mounts the provider webhook endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/twilio", func(tw chi.Router) {
		tw.Post("/voice", h.handleVoice)
		tw.Post("/handle-recording/{callSID}", h.handleRecording)
		tw.Post("/transcription/{callSID}", h.handleTranscription)
		tw.Post("/status", h.handleStatus)
	})
}

// handleVoice answers the initial call webhook: greet the caller and start
// recording their first utterance.
func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondTwiML(w, telephony.SpeakAndHangup("Sorry, there was an error. Please try again later."))
		return
	}

	callSID := r.PostFormValue("CallSid")
	from := r.PostFormValue("From")
	if callSID == "" {
		log.Printf("[webhook] voice webhook without CallSid")
		utils.RespondTwiML(w, telephony.SpeakAndHangup("Sorry, there was an error. Please try again later."))
		return
	}

	welcome := h.orch.OnCallStarted(callSID, from)
	utils.RespondTwiML(w, telephony.SpeakAndRecord(welcome, callSID, h.recordTimeout, h.providerTranscription))
}

// handleRecording answers a finished recording. With a capture pipeline it
// processes the audio synchronously and speaks the reply, or closes the call
// if the caller said goodbye; without one, the provider's transcription
// callback carries the speech and this webhook only keeps the recording loop
// going. Backend failures degrade to a spoken re-prompt; the HTTP exchange
// itself never fails.
func (h *Handler) handleRecording(w http.ResponseWriter, r *http.Request) {
	callSID := chi.URLParam(r, "callSID")

	if h.providerTranscription {
		utils.RespondTwiML(w, telephony.ContinueRecording(callSID, h.recordTimeout))
		return
	}

	if err := r.ParseForm(); err != nil {
		utils.RespondTwiML(w, telephony.SpeakAndRecord(callservice.RepromptUtterance, callSID, h.recordTimeout, false))
		return
	}

	recordingURL := r.PostFormValue("RecordingUrl")
	if recordingURL == "" {
		utils.RespondTwiML(w, telephony.SpeakAndRecord(callservice.RepromptUtterance, callSID, h.recordTimeout, false))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.webhookBudget)
	defer cancel()

	reply, ended := h.orch.OnAudioCaptured(ctx, callSID, recordingURL)
	if ended {
		utils.RespondTwiML(w, telephony.SpeakAndHangup(reply))
		return
	}
	utils.RespondTwiML(w, telephony.SpeakAndRecord(reply, callSID, h.recordTimeout, false))
}

// handleTranscription receives the provider's own asynchronous transcription
// of a recording. The reply cannot ride on this response, so it is pushed
// into the live call through the REST API.
func (h *Handler) handleTranscription(w http.ResponseWriter, r *http.Request) {
	callSID := chi.URLParam(r, "callSID")

	// The capture pipeline already handled this utterance; acting on the
	// callback too would answer the caller twice.
	if !h.providerTranscription {
		log.Printf("[webhook] capture pipeline active, ignoring transcription callback for call %s", callSID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	text := r.PostFormValue("TranscriptionText")
	if text == "" {
		log.Printf("[webhook] empty transcription for call %s", callSID)
		w.WriteHeader(http.StatusOK)
		return
	}

	reply := h.orch.OnCallerUtterance(r.Context(), callSID, text)

	if h.updater != nil {
		twiml := telephony.SpeakAndRecord(reply, callSID, h.recordTimeout, true)
		if err := h.updater.UpdateCallTwiML(r.Context(), callSID, twiml); err != nil {
			log.Printf("[webhook] failed to speak reply into call %s: %v", callSID, err)
		}
	} else {
		log.Printf("[webhook] telephony disabled, dropping reply for call %s", callSID)
	}

	w.WriteHeader(http.StatusOK)
}

// handleStatus applies provider call-status updates.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	callSID := r.PostFormValue("CallSid")
	status := r.PostFormValue("CallStatus")
	if callSID != "" {
		h.orch.OnStatusSignal(callSID, status)
	}

	w.WriteHeader(http.StatusOK)
}
