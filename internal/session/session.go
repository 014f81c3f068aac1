package session

import (
	"context"
	"fmt"

	"github.com/twaslowski/openai-telegram-bot/internal/llm"
	"github.com/twaslowski/openai-telegram-bot/internal/speech"
)

// TTS is the per-session text-to-speech preference.
type TTS struct {
	Active bool   `json:"active"`
	Voice  string `json:"voice"`
}

// Session is the durable per-user conversation state: the ordered
// transcript plus the TTS preference. Every mutation persists the whole
// document before returning; on a store failure the in-memory state is
// rolled back so it never diverges from what was acknowledged.
type Session struct {
	UserID   int64         `json:"user_id"`
	Messages []llm.Message `json:"messages"`
	TTS      TTS           `json:"tts"`

	store Store
}

func newSession(st Store, userID int64) *Session {
	return &Session{
		UserID: userID,
		TTS:    TTS{Active: false, Voice: speech.DefaultVoice},
		store:  st,
	}
}

// bind attaches the owning store after deserialization.
func (s *Session) bind(st Store) { s.store = st }

func (s *Session) clone() *Session {
	c := *s
	c.Messages = append([]llm.Message(nil), s.Messages...)
	return &c
}

// AddMessage appends one turn to the transcript and persists it. The
// append and the write succeed or fail as a unit.
func (s *Session) AddMessage(ctx context.Context, msg llm.Message) error {
	s.Messages = append(s.Messages, msg)
	if err := s.store.Upsert(ctx, s); err != nil {
		s.Messages = s.Messages[:len(s.Messages)-1]
		return fmt.Errorf("failed to persist message: %w", err)
	}
	return nil
}

// Transcript returns the ordered conversation history, suitable as
// completion-endpoint input.
func (s *Session) Transcript() []llm.Message { return s.Messages }

// EnableTTS turns on voice replies with the given voice.
func (s *Session) EnableTTS(ctx context.Context, voice string) error {
	prev := s.TTS
	s.TTS = TTS{Active: true, Voice: voice}
	if err := s.store.Upsert(ctx, s); err != nil {
		s.TTS = prev
		return fmt.Errorf("failed to persist tts preference: %w", err)
	}
	return nil
}

// ResetTTS turns off voice replies, keeping the chosen voice.
func (s *Session) ResetTTS(ctx context.Context) error {
	prev := s.TTS
	s.TTS.Active = false
	if err := s.store.Upsert(ctx, s); err != nil {
		s.TTS = prev
		return fmt.Errorf("failed to persist tts preference: %w", err)
	}
	return nil
}

// Reset truncates the transcript, making the bot forget all context.
func (s *Session) Reset(ctx context.Context) error {
	prev := s.Messages
	s.Messages = nil
	if err := s.store.Upsert(ctx, s); err != nil {
		s.Messages = prev
		return fmt.Errorf("failed to persist reset: %w", err)
	}
	return nil
}
