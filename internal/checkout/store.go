package checkout

import (
	"sync"
)

// Session is one user's live checkout: the wizard position plus the payment
// outcome.
type Session struct {
	Wizard  Wizard       `json:"wizard"`
	Payment PaymentState `json:"payment"`
}

// MemoryStore keeps checkout sessions in memory, one per user. Sessions are
// transient: a restart sends the user back to the start of the wizard.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Begin replaces any previous session with a fresh wizard and cleared
// payment state.
func (s *MemoryStore) Begin(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := Session{Wizard: NewWizard()}
	s.sessions[userID] = session
	return session
}

func (s *MemoryStore) Get(userID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	return session, ok
}

// Update applies fn to the user's session under the lock and returns the
// result. The boolean reports whether a session existed.
func (s *MemoryStore) Update(userID string, fn func(Session) Session) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	session = fn(session)
	s.sessions[userID] = session
	return session, true
}

func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
