package call

import (
	"time"

	"github.com/dialtone-ai/dialtone/internal/model/call"
)

// Event types published on the live feed.
const (
	EventCallStarted = "call.started"
	EventTurn        = "call.turn"
	EventCallEnded   = "call.ended"
)

// Event is a call activity notification for connected observers.
type Event struct {
	Type         string       `json:"type"`
	CallID       string       `json:"callId"`
	CallerNumber string       `json:"callerNumber,omitempty"`
	Speaker      call.Speaker `json:"speaker,omitempty"`
	Text         string       `json:"text,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// EventSink receives call activity events. Publish must not block the
// webhook path.
type EventSink interface {
	Publish(event Event)
}

type noopSink struct{}

func (noopSink) Publish(Event) {}
