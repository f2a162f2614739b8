package call

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialtone-ai/dialtone/internal/model/call"
)

// Store owns all in-memory call session state. Every mutation is scoped to a
// single call SID; callers only ever receive copies, never references into
// the stored turn slices.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*call.Session
	removals map[string]*time.Timer
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*call.Session),
		removals: make(map[string]*time.Timer),
	}
}

// CreateIfAbsent provisions a session for the given call SID. Creation is
// idempotent: duplicate "call started" webhooks reuse the existing session
// untouched. The second return value reports whether a new session was made.
func (s *Store) CreateIfAbsent(id, callerNumber string) (call.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[id]; ok {
		return cloneSession(existing), false
	}

	session := &call.Session{
		ID:           id,
		CallerNumber: callerNumber,
		Status:       call.StatusActive,
		CreatedAt:    time.Now().UTC(),
		Turns:        make([]call.Turn, 0, 16),
	}
	s.sessions[id] = session
	return cloneSession(session), true
}

// AppendTurn records one utterance on the session's history. A late webhook
// for an already-removed call is expected, so an unknown SID is a logged
// no-op rather than an error.
func (s *Store) AppendTurn(id string, speaker call.Speaker, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		log.Printf("[store] dropping %s turn for unknown call %s", speaker, id)
		return
	}

	session.Turns = append(session.Turns, call.Turn{
		ID:         uuid.NewString(),
		Speaker:    speaker,
		Text:       text,
		RecordedAt: time.Now().UTC(),
	})
}

// Turns returns a copy of the session's dialogue history in chronological
// order, or an empty slice for an unknown SID.
func (s *Store) Turns(id string) []call.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}

	turns := make([]call.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns
}

// Get retrieves a snapshot of a session by call SID.
func (s *Store) Get(id string) (call.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return call.Session{}, false
	}
	return cloneSession(session), true
}

// MarkTerminated moves the session to the terminated state and stamps
// EndedAt. Repeat calls and unknown SIDs are no-ops.
func (s *Store) MarkTerminated(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.Status == call.StatusTerminated {
		return
	}

	now := time.Now().UTC()
	session.Status = call.StatusTerminated
	session.EndedAt = &now
}

// ScheduleRemoval arranges for the session to be deleted once the grace
// period elapses, provided it is still terminated by then. Rescheduling
// replaces any pending timer. The delay exists so in-flight webhooks that
// still reference the call can be answered instead of hitting a missing
// session.
func (s *Store) ScheduleRemoval(id string, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return
	}

	if pending, ok := s.removals[id]; ok {
		pending.Stop()
	}

	s.removals[id] = time.AfterFunc(after, func() {
		s.removeIfTerminated(id)
	})
}

// CancelRemoval stops a pending removal timer, if any.
func (s *Store) CancelRemoval(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.removals[id]; ok {
		pending.Stop()
		delete(s.removals, id)
	}
}

func (s *Store) removeIfTerminated(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.removals, id)

	session, ok := s.sessions[id]
	if !ok || session.Status != call.StatusTerminated {
		return
	}

	delete(s.sessions, id)
	log.Printf("[store] cleaned up call %s", id)
}

// ListActive returns snapshots of every session still in the active state.
func (s *Store) ListActive() []call.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]call.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.Status == call.StatusActive {
			active = append(active, cloneSession(session))
		}
	}
	return active
}

func cloneSession(session *call.Session) call.Session {
	clone := *session
	clone.Turns = make([]call.Turn, len(session.Turns))
	copy(clone.Turns, session.Turns)
	if session.EndedAt != nil {
		ended := *session.EndedAt
		clone.EndedAt = &ended
	}
	return clone
}
