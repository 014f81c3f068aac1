package session

import (
	"context"
	"errors"
	"testing"

	"github.com/twaslowski/openai-telegram-bot/internal/llm"
	"github.com/twaslowski/openai-telegram-bot/internal/speech"
)

// flakyStore wraps MemoryStore with injectable upsert failures.
type flakyStore struct {
	*MemoryStore
	failUpserts bool
}

func (f *flakyStore) Create(ctx context.Context, userID int64) (*Session, error) {
	s, err := f.MemoryStore.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.bind(f)
	return s, nil
}

func (f *flakyStore) Upsert(ctx context.Context, s *Session) error {
	if f.failUpserts {
		return errors.New("write failed")
	}
	return f.MemoryStore.Upsert(ctx, s)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store)

	s1, err := m.GetOrCreate(ctx, 123)
	if err != nil {
		t.Fatalf("first get_or_create: %v", err)
	}
	if len(s1.Messages) != 0 {
		t.Fatalf("new session should have empty transcript, got %d", len(s1.Messages))
	}
	if s1.TTS.Active || s1.TTS.Voice != speech.DefaultVoice {
		t.Fatalf("unexpected default tts state: %+v", s1.TTS)
	}

	s2, err := m.GetOrCreate(ctx, 123)
	if err != nil {
		t.Fatalf("second get_or_create: %v", err)
	}
	if s2.UserID != s1.UserID {
		t.Fatalf("user id mismatch: %d vs %d", s2.UserID, s1.UserID)
	}

	// Creation conflict is an error; GetOrCreate absorbs it.
	if _, err := store.Create(ctx, 123); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddMessage_Durable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store)

	s, err := m.GetOrCreate(ctx, 1)
	if err != nil {
		t.Fatalf("get_or_create: %v", err)
	}
	if err := s.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("add message: %v", err)
	}
	if err := s.AddMessage(ctx, llm.Message{Role: llm.RoleAssistant, Content: "hi"}); err != nil {
		t.Fatalf("add message: %v", err)
	}

	fetched, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(fetched.Messages) != 2 {
		t.Fatalf("want 2 persisted messages, got %d", len(fetched.Messages))
	}
	if fetched.Messages[0].Role != llm.RoleUser || fetched.Messages[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", fetched.Messages[0])
	}
	if fetched.Messages[1].Role != llm.RoleAssistant || fetched.Messages[1].Content != "hi" {
		t.Fatalf("unexpected second message: %+v", fetched.Messages[1])
	}
}

func TestAddMessage_RollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	m := NewManager(store)

	s, err := m.GetOrCreate(ctx, 1)
	if err != nil {
		t.Fatalf("get_or_create: %v", err)
	}
	if err := s.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: "kept"}); err != nil {
		t.Fatalf("add message: %v", err)
	}

	store.failUpserts = true
	err = s.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: "lost"})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if len(s.Messages) != 1 || s.Messages[0].Content != "kept" {
		t.Fatalf("in-memory transcript diverged from store: %+v", s.Messages)
	}
}

func TestTTSMutations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store)

	s, _ := m.GetOrCreate(ctx, 7)
	if err := s.EnableTTS(ctx, "nova"); err != nil {
		t.Fatalf("enable tts: %v", err)
	}

	fetched, _ := store.Get(ctx, 7)
	if !fetched.TTS.Active || fetched.TTS.Voice != "nova" {
		t.Fatalf("tts preference not persisted: %+v", fetched.TTS)
	}

	if err := fetched.ResetTTS(ctx); err != nil {
		t.Fatalf("reset tts: %v", err)
	}
	again, _ := store.Get(ctx, 7)
	if again.TTS.Active {
		t.Fatalf("tts still active after reset")
	}
	if again.TTS.Voice != "nova" {
		t.Fatalf("reset should keep the chosen voice, got %q", again.TTS.Voice)
	}
}

func TestReset_TruncatesTranscript(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store)

	s, _ := m.GetOrCreate(ctx, 5)
	_ = s.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: "a"})
	_ = s.AddMessage(ctx, llm.Message{Role: llm.RoleAssistant, Content: "b"})
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	fetched, _ := store.Get(ctx, 5)
	if len(fetched.Messages) != 0 {
		t.Fatalf("transcript not truncated: %+v", fetched.Messages)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s, _ := store.Create(ctx, 9)
	_ = s.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: "hello"})

	fetched, _ := store.Get(ctx, 9)
	fetched.Messages[0].Content = "mutated"

	again, _ := store.Get(ctx, 9)
	if again.Messages[0].Content != "hello" {
		t.Fatalf("stored document mutated via returned session")
	}
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store)

	_, _ = m.GetOrCreate(ctx, 3)
	if err := m.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
