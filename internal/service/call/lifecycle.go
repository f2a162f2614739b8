package call

import (
	"log"
	"strings"
	"time"
)

// DefaultCleanupGrace keeps a terminated session addressable long enough for
// straggling webhooks to be answered before the state is dropped.
const DefaultCleanupGrace = time.Hour

// terminalStatuses are the provider call statuses that end a session.
// Intermediate statuses (queued, ringing, in-progress, answered) carry no
// lifecycle consequence here.
var terminalStatuses = map[string]struct{}{
	"completed": {},
	"failed":    {},
	"busy":      {},
	"no-answer": {},
}

// Lifecycle applies provider status signals to sessions and schedules their
// eventual removal.
type Lifecycle struct {
	store *Store
	grace time.Duration
}

// NewLifecycle builds a lifecycle controller with the given cleanup grace
// period.
func NewLifecycle(store *Store, grace time.Duration) *Lifecycle {
	if grace <= 0 {
		grace = DefaultCleanupGrace
	}
	return &Lifecycle{store: store, grace: grace}
}

// HandleStatus processes one provider status signal and reports whether it
// terminated the session. Non-terminal statuses are ignored; repeated
// terminal signals are idempotent.
func (l *Lifecycle) HandleStatus(id, status string) bool {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if _, ok := terminalStatuses[normalized]; !ok {
		return false
	}

	log.Printf("[call] call %s ended with status %s", id, normalized)
	l.Terminate(id)
	return true
}

// Terminate ends the session now and schedules its removal after the grace
// period.
func (l *Lifecycle) Terminate(id string) {
	l.store.MarkTerminated(id)
	l.store.ScheduleRemoval(id, l.grace)
}
