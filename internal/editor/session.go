package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActionKind tags the generative operation recorded as a session's last
// action.
type ActionKind string

const (
	ActionEdit    ActionKind = "edit"
	ActionFilter  ActionKind = "filter"
	ActionAdjust  ActionKind = "adjust"
	ActionTexture ActionKind = "texture"
)

// Hotspot is a pixel coordinate marking where a localized edit applies.
type Hotspot struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LastAction records the most recently applied generative operation so it
// can be re-issued against the previous history entry. The instruction is
// the complete replay input; hotspot and other auxiliary inputs are already
// folded into it. Local transforms such as crop do not update it.
type LastAction struct {
	Kind        ActionKind
	Instruction string
}

// Session holds one user's editing state: the artifact history plus the last
// generative action. Sessions are mutated by one request at a time; the
// mutex guards against overlapping HTTP calls on the same session id.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	history    *History
	lastAction *LastAction
	updatedAt  time.Time
}

func newSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		history:   NewHistory(),
		updatedAt: now,
	}
}

// UpdatedAt returns the time of the session's most recent mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// SessionStore keeps live sessions in memory keyed by uuid. Sessions are
// ephemeral; durable results go to the gallery instead.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers and returns a fresh session.
func (st *SessionStore) Create() *Session {
	s := newSession()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes the session with the given id, if present.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// PruneIdle drops sessions that have not been touched for longer than
// maxIdle and returns how many were removed.
func (st *SessionStore) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
