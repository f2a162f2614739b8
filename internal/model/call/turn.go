package call

import "time"

// Speaker identifies which side of the conversation produced a turn.
type Speaker string

const (
	SpeakerCaller    Speaker = "caller"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is a single utterance within a call.
type Turn struct {
	ID         string    `json:"id"`
	Speaker    Speaker   `json:"speaker"`
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recordedAt"`
}
