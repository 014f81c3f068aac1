package session

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrAlreadyExists = errors.New("session already exists")
)

// Store persists one session document per user. Upsert replaces the
// whole document or fails; there is no partial write. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when no document exists for the user.
	Get(ctx context.Context, userID int64) (*Session, error)

	// Create initializes an empty transcript with the default TTS state.
	// It returns ErrAlreadyExists when a document is already present.
	Create(ctx context.Context, userID int64) (*Session, error)

	// Upsert persists the full current state of the session.
	Upsert(ctx context.Context, s *Session) error

	Delete(ctx context.Context, userID int64) error

	Close() error
}
