package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/twaslowski/openai-telegram-bot/internal/storage"
)

type fakeRecorder struct {
	events []storage.Event
}

func (f *fakeRecorder) AppendInteraction(ev storage.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeRecorder) LoadInteractions() ([]storage.Event, error) {
	return f.events, nil
}

func TestSendUsageDigest(t *testing.T) {
	now := time.Now().UTC()
	rec := &fakeRecorder{events: []storage.Event{
		{Timestamp: now.Add(-1 * time.Hour), UserID: 1, TotalTokens: 10},
		{Timestamp: now.Add(-2 * time.Hour), UserID: 2, TotalTokens: 5},
		{Timestamp: now.Add(-48 * time.Hour), UserID: 3, TotalTokens: 100},
	}}
	fs := &fakeSender{}
	b := &Bot{s: fs, recorder: rec, adminUserID: 99}

	if err := b.SendUsageDigest(context.Background()); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("want 1 digest message, got %d", len(fs.sent))
	}
	mc := fs.sent[0].(tgbotapi.MessageConfig)
	if mc.ChatID != 99 {
		t.Fatalf("digest not sent to admin: %+v", mc)
	}
	if !strings.Contains(mc.Text, "2 messages from 2 users, 15 tokens") {
		t.Fatalf("stale events counted: %q", mc.Text)
	}
}
