package call

import "time"

// Status tracks where a session is in its lifecycle. A session only ever
// moves from active to terminated.
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

// Session captures the state of one phone call, keyed by the provider's
// call SID. Turns are append-only and chronological.
type Session struct {
	ID           string     `json:"id"`
	CallerNumber string     `json:"callerNumber"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Turns        []Turn     `json:"turns"`
}
