package call

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dialtone-ai/dialtone/internal/model/call"
)

// Utterances for the fixed points of the call script.
const (
	WelcomeUtterance = "Hello! I'm your AI assistant. How can I help you today?"
	ClosingUtterance = "Thank you for calling. Goodbye!"
)

// goodbyePhrases trigger caller-initiated termination when they appear
// anywhere in a transcript. Substring matching is a deliberate heuristic:
// "that's all I wanted to say" ends the call even mid-thought, because a
// missed hang-up costs more than an early one.
var goodbyePhrases = []string{
	"goodbye",
	"bye",
	"end call",
	"hang up",
	"that's all",
	"nothing else",
}

// Capturer turns a provider recording reference into transcript text.
type Capturer interface {
	Capture(ctx context.Context, recordingURL, callID string) (string, error)
}

// Orchestrator is the boundary the webhook layer talks to. It owns the
// wiring between store, coordinator, capture pipeline and lifecycle, and
// publishes activity events for observers.
type Orchestrator struct {
	store       *Store
	coordinator *Coordinator
	lifecycle   *Lifecycle
	capture     Capturer
	events      EventSink
}

// NewOrchestrator assembles the call orchestrator. capture may be nil when
// no transcription credentials are configured; events may be nil.
func NewOrchestrator(store *Store, coordinator *Coordinator, lifecycle *Lifecycle, capture Capturer, events EventSink) *Orchestrator {
	if events == nil {
		events = noopSink{}
	}
	return &Orchestrator{
		store:       store,
		coordinator: coordinator,
		lifecycle:   lifecycle,
		capture:     capture,
		events:      events,
	}
}

// OnCallStarted registers an inbound call and returns the greeting to speak.
// Duplicate deliveries of the start webhook reuse the existing session. The
// greeting is spoken but never recorded: the turn history holds only the
// caller/assistant exchange pairs.
func (o *Orchestrator) OnCallStarted(id, callerNumber string) string {
	session, created := o.store.CreateIfAbsent(id, callerNumber)
	if created {
		log.Printf("[call] incoming call from %s, sid=%s", callerNumber, id)
		o.events.Publish(Event{
			Type:         EventCallStarted,
			CallID:       id,
			CallerNumber: session.CallerNumber,
			Timestamp:    time.Now().UTC(),
		})
	}
	return WelcomeUtterance
}

// OnCallerUtterance runs one dialogue turn for transcribed caller speech and
// returns the assistant's reply.
func (o *Orchestrator) OnCallerUtterance(ctx context.Context, id, text string) string {
	// A request for a call we have no record of is a first-turn request,
	// not an error; the provider may have retried the very first webhook.
	o.store.CreateIfAbsent(id, "")

	reply := o.coordinator.NextUtterance(ctx, id, text)
	if strings.TrimSpace(text) != "" {
		o.events.Publish(Event{Type: EventTurn, CallID: id, Speaker: call.SpeakerCaller, Text: text, Timestamp: time.Now().UTC()})
		o.events.Publish(Event{Type: EventTurn, CallID: id, Speaker: call.SpeakerAssistant, Text: reply, Timestamp: time.Now().UTC()})
	}
	return reply
}

// OnAudioCaptured normalizes a finished recording into text and either runs
// a dialogue turn or, when the caller said goodbye, closes the call. The
// second return value reports whether the call should be hung up.
func (o *Orchestrator) OnAudioCaptured(ctx context.Context, id, recordingURL string) (string, bool) {
	o.store.CreateIfAbsent(id, "")

	if o.capture == nil {
		log.Printf("[call] no capture pipeline configured, re-prompting call %s", id)
		return RepromptUtterance, false
	}

	// A failed capture is treated exactly like an empty transcript: the
	// caller is re-prompted, never dropped.
	transcript, err := o.capture.Capture(ctx, recordingURL, id)
	if err != nil {
		log.Printf("[call] capture failed for call %s: %v", id, err)
		return RepromptUtterance, false
	}
	if strings.TrimSpace(transcript) == "" {
		return RepromptUtterance, false
	}

	if containsGoodbye(transcript) {
		o.store.AppendTurn(id, call.SpeakerCaller, transcript)
		o.store.AppendTurn(id, call.SpeakerAssistant, ClosingUtterance)
		o.lifecycle.Terminate(id)
		o.events.Publish(Event{Type: EventCallEnded, CallID: id, Timestamp: time.Now().UTC()})
		return ClosingUtterance, true
	}

	return o.OnCallerUtterance(ctx, id, transcript), false
}

// CaptureEnabled reports whether a capture pipeline is wired, which decides
// whether recordings are processed here or by the provider's transcription.
func (o *Orchestrator) CaptureEnabled() bool {
	return o.capture != nil
}

// OnStatusSignal applies a provider call-status update.
func (o *Orchestrator) OnStatusSignal(id, status string) {
	if o.lifecycle.HandleStatus(id, status) {
		o.events.Publish(Event{Type: EventCallEnded, CallID: id, Timestamp: time.Now().UTC()})
	}
}

// ActiveSessions snapshots all calls still in progress, for diagnostics.
func (o *Orchestrator) ActiveSessions() []call.Session {
	return o.store.ListActive()
}

// Turns exposes a session's dialogue history.
func (o *Orchestrator) Turns(id string) []call.Turn {
	return o.store.Turns(id)
}

func containsGoodbye(transcript string) bool {
	lowered := strings.ToLower(transcript)
	for _, phrase := range goodbyePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
