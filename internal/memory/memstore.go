package memory

import "sync"

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu        sync.Mutex
	sessionID string
	env       *Envelope
	failLoad  bool
}

// NewMemStore returns an empty in-memory store for sessionID.
func NewMemStore(sessionID string) *MemStore {
	return &MemStore{sessionID: sessionID}
}

func (s *MemStore) SessionID() string { return s.sessionID }

// Corrupt marks the next Load as if the backing state were unreadable,
// exercising the reinitialize path.
func (s *MemStore) Corrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = true
}

func (s *MemStore) Load() (*Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad || s.env == nil {
		s.failLoad = false
		s.env = NewEnvelope(s.sessionID)
	}
	return s.env.Clone(), nil
}

func (s *MemStore) Save(env *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env.UpdatedAt = nowUTC()
	s.env = env.Clone()
	return nil
}

func (s *MemStore) Close() error { return nil }
