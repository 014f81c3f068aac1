package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all session documents in a single JSON file. Every
// write rewrites the file under a lock, so a document is either fully
// replaced or untouched.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.loadUnlocked()
	if err != nil {
		return nil, err
	}
	sess, ok := sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	sess.bind(s)
	return sess, nil
}

func (s *FileStore) Create(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.loadUnlocked()
	if err != nil {
		return nil, err
	}
	if _, ok := sessions[userID]; ok {
		return nil, ErrAlreadyExists
	}
	sess := newSession(s, userID)
	sessions[userID] = sess
	if err := s.saveUnlocked(sessions); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *FileStore) Upsert(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	sessions[sess.UserID] = sess
	return s.saveUnlocked(sessions)
}

func (s *FileStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	delete(sessions, userID)
	return s.saveUnlocked(sessions)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadUnlocked() (map[int64]*Session, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	sessions := make(map[int64]*Session)
	dec := json.NewDecoder(f)
	if err := dec.Decode(&sessions); err != nil {
		if err == io.EOF {
			return sessions, nil
		}
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

func (s *FileStore) saveUnlocked(sessions map[int64]*Session) error {
	f, err := os.OpenFile(s.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sessions); err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	return nil
}
