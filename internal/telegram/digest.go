package telegram

import (
	"context"
	"fmt"
	"time"
)

// SendUsageDigest reports the last 24 hours of activity to the admin
// user. Wired into the cron scheduler from main.
func (b *Bot) SendUsageDigest(ctx context.Context) error {
	if b.recorder == nil || b.adminUserID == 0 {
		return nil
	}

	events, err := b.recorder.LoadInteractions()
	if err != nil {
		return fmt.Errorf("failed to load interactions: %w", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	var messages, tokens int
	users := make(map[int64]struct{})
	for _, ev := range events {
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		messages++
		tokens += ev.TotalTokens
		users[ev.UserID] = struct{}{}
	}

	b.sendMessage(b.adminUserID, fmt.Sprintf(
		"Daily digest: %d messages from %d users, %d tokens.",
		messages, len(users), tokens))
	return nil
}
