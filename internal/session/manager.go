package session

import (
	"context"
	"errors"
	"sync"
)

// Manager wraps a Store with per-user serialization. Units of work for
// different users run concurrently; two quick messages from the same
// user must queue so the second sees the first one's turns.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, locks: make(map[int64]*sync.Mutex)}
}

// LockUser acquires the lock for one user's turn and returns the
// release function. Callers hold it for a whole unit of work.
func (m *Manager) LockUser(userID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// GetOrCreate returns the stored session for the user, creating one on
// first contact. A create conflict from a concurrent first message is
// absorbed by re-reading, so exactly one document ever exists per user.
func (m *Manager) GetOrCreate(ctx context.Context, userID int64) (*Session, error) {
	s, err := m.store.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	s, err = m.store.Create(ctx, userID)
	if errors.Is(err, ErrAlreadyExists) {
		return m.store.Get(ctx, userID)
	}
	return s, err
}

// Delete removes the user's session document.
func (m *Manager) Delete(ctx context.Context, userID int64) error {
	return m.store.Delete(ctx, userID)
}
