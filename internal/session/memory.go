package session

import (
	"context"
	"sync"
)

// MemoryStore keeps session documents in a map. Useful for tests and
// for running without external storage; state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	// Hand out a copy: the caller's session stays authoritative until
	// the next Upsert.
	out := stored.clone()
	out.bind(s)
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; ok {
		return nil, ErrAlreadyExists
	}
	sess := newSession(s, userID)
	s.sessions[userID] = sess.clone()
	return sess, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess.clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	return nil
}
