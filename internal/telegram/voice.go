package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/twaslowski/openai-telegram-bot/internal/speech"
)

// handleVoiceNote transcribes an incoming voice note and feeds the
// transcription through the regular prompt pipeline.
func (b *Bot) handleVoiceNote(ctx context.Context, msg *tgbotapi.Message) error {
	if b.transcriber == nil {
		b.sendMessage(msg.Chat.ID, "Sorry, I can't process voice notes right now.")
		return nil
	}

	text, err := b.transcribeVoice(ctx, msg.Voice.FileID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return err
	}
	log.Printf("transcribed voice note from user %d: %q", msg.From.ID, text)
	return b.handlePrompt(ctx, msg, text, nil)
}

// handleTranscribe answers a reply to a voice note with the bare
// transcription, without touching the conversation.
func (b *Bot) handleTranscribe(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.Voice == nil {
		b.sendMessage(msg.Chat.ID, "Reply to a voice note with /transcribe and I'll write it out for you.")
		return nil
	}
	if b.transcriber == nil {
		b.sendMessage(msg.Chat.ID, "Sorry, I can't process voice notes right now.")
		return nil
	}

	text, err := b.transcribeVoice(ctx, msg.ReplyToMessage.Voice.FileID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return err
	}
	b.sendMessage(msg.Chat.ID, text)
	return nil
}

// handleTTS toggles voice replies for the session: "/tts off" disables,
// "/tts" enables with the current voice, "/tts <voice>" picks a voice.
func (b *Bot) handleTTS(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.sessions.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return fmt.Errorf("failed to resolve session: %w", err)
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	switch {
	case arg == "off":
		if err := sess.ResetTTS(ctx); err != nil {
			b.sendMessage(msg.Chat.ID, apologyText)
			return err
		}
		b.sendMessage(msg.Chat.ID, "Voice replies disabled.")
	case arg == "":
		if err := sess.EnableTTS(ctx, sess.TTS.Voice); err != nil {
			b.sendMessage(msg.Chat.ID, apologyText)
			return err
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Voice replies enabled with voice %q.", sess.TTS.Voice))
	case speech.IsKnownVoice(arg):
		if err := sess.EnableTTS(ctx, arg); err != nil {
			b.sendMessage(msg.Chat.ID, apologyText)
			return err
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Voice replies enabled with voice %q.", arg))
	default:
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(
			"Unknown voice %q. Available voices: %s.", arg, strings.Join(speech.Voices(), ", ")))
	}
	return nil
}

func (b *Bot) transcribeVoice(ctx context.Context, fileID string) (string, error) {
	audioPath, err := b.downloadVoice(ctx, fileID)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil {
			log.Printf("failed to remove temp voice file %s: %v", audioPath, rmErr)
		}
	}()
	text, err := b.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return text, nil
}

func (b *Bot) downloadVoice(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve voice file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build voice download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download voice file: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("voice download returned status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "voice-*.oga")
	if err != nil {
		return "", fmt.Errorf("failed to create temp voice file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write voice file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close voice file: %w", err)
	}
	return f.Name(), nil
}
