package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/twaslowski/openai-telegram-bot/internal/llm"
	"github.com/twaslowski/openai-telegram-bot/internal/session"
	"github.com/twaslowski/openai-telegram-bot/internal/storage"
)

const (
	thinkingText   = "Thinking ..."
	convertingText = "Converting response to speech ..."
	apologyText    = "I'm very sorry, an error occurred."

	ttsFailedText = "Unfortunately there was an error retrieving the TTS. " +
		"Your text response is below. TTS will be disabled for now."

	// systemUnableToRespond is the canned refusal the model is instructed
	// to use when it cannot answer. Such replies are never converted to
	// speech.
	systemUnableToRespond = "I am unable to respond to that"

	helpText = "Hi! I'm a ChatGPT bot. I can answer your questions and reply to prompts.\n" +
		"Try asking me a question – you can even record a voice note.\n" +
		"Reply to one of my messages to pick the conversation up from there.\n" +
		"Use /tts to get my answers as voice notes and /reset to make me forget everything.\n\n" +
		"Prompt ideas:"

	promptHelp = "Forget everything. " +
		"Generate three prompts with less than ten words each. " +
		"Two prompts should showcase ChatGPT's ability to help with day-to-day problems. " +
		"One should be funny, random, or quirky. Give me just the ideas, nothing else."
)

// handlePrompt runs one prompt/completion cycle: resolve the session,
// append the user turn, call the completion endpoint, append the
// assistant turn, and hand the reply to delivery. A nil placeholder
// sends a fresh "Thinking ..." message first.
func (b *Bot) handlePrompt(ctx context.Context, msg *tgbotapi.Message, prompt string, placeholder *EditableMessage) error {
	if placeholder == nil {
		sent, err := b.s.Send(tgbotapi.NewMessage(msg.Chat.ID, thinkingText))
		if err != nil {
			return fmt.Errorf("failed to send placeholder: %w", err)
		}
		pm := newEditable(sent)
		placeholder = &pm
	}

	sess, err := b.sessions.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		b.apologize(*placeholder)
		return fmt.Errorf("failed to resolve session: %w", err)
	}

	if err := sess.AddMessage(ctx, llm.Message{Role: llm.RoleUser, Content: prompt}); err != nil {
		b.apologize(*placeholder)
		return err
	}

	resp, err := b.llmClient.Complete(ctx, b.completionContext(sess))
	if err != nil {
		// The user turn stays persisted, so resending the message
		// retries the completion with the same context.
		b.apologize(*placeholder)
		return fmt.Errorf("completion failed: %w", err)
	}

	if err := sess.AddMessage(ctx, llm.Message{Role: llm.RoleAssistant, Content: resp.Content}); err != nil {
		b.apologize(*placeholder)
		return err
	}

	log.Printf("LLM response for user %d [model=%s, tokens=%d]", sess.UserID, resp.Model, resp.TotalTokens)
	b.record(sess.UserID, prompt, resp)

	return b.sendResponse(ctx, sess, resp.Content, *placeholder)
}

// completionContext prepends the configured system prompt to the
// session transcript. The system prompt is never persisted.
func (b *Bot) completionContext(sess *session.Session) []llm.Message {
	if b.systemPrompt == "" {
		return sess.Transcript()
	}
	msgs := make([]llm.Message, 0, len(sess.Messages)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: b.systemPrompt})
	return append(msgs, sess.Transcript()...)
}

// sendResponse delivers a generated reply, either as an edit of the
// placeholder or as a voice note when the session asks for speech.
func (b *Bot) sendResponse(ctx context.Context, sess *session.Session, text string, placeholder EditableMessage) error {
	if !b.shouldSynthesize(sess, text) {
		if err := b.editText(placeholder, placeholder.Template.Render(text)); err != nil {
			return fmt.Errorf("failed to edit response into placeholder: %w", err)
		}
		return nil
	}

	if err := b.editText(placeholder, convertingText); err != nil {
		log.Printf("failed to edit conversion notice: %v", err)
	}

	audioPath, err := b.speech.Synthesize(ctx, text, sess.TTS.Voice)
	if err != nil {
		// Degrade to text: disable TTS and make sure the user still
		// gets the answer.
		log.Printf("failed to synthesize speech for user %d: %v", sess.UserID, err)
		if rerr := sess.ResetTTS(ctx); rerr != nil {
			log.Printf("failed to disable tts for user %d: %v", sess.UserID, rerr)
		}
		if eerr := b.editText(placeholder, ttsFailedText+"\n"+text); eerr != nil {
			return fmt.Errorf("failed to deliver text fallback: %w", eerr)
		}
		return nil
	}
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil {
			log.Printf("failed to remove temp audio file %s: %v", audioPath, rmErr)
		}
	}()

	voice := tgbotapi.NewVoice(placeholder.ChatID, tgbotapi.FilePath(audioPath))
	if _, err := b.s.Send(voice); err != nil {
		return fmt.Errorf("failed to send voice note: %w", err)
	}
	return nil
}

func (b *Bot) shouldSynthesize(sess *session.Session, text string) bool {
	return b.speech != nil && sess.TTS.Active && !strings.Contains(text, systemUnableToRespond)
}

// handleHelp sends the static help text and then lets the model append
// prompt suggestions by editing the help message in place.
func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) error {
	sent, err := b.s.Send(tgbotapi.NewMessage(msg.Chat.ID, helpText))
	if err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}
	ph := newEditable(sent).withTemplate(Template{Prefix: helpText + "\n"})
	return b.handlePrompt(ctx, msg, promptHelp, &ph)
}

// handleReply re-anchors the conversation to the quoted bot message by
// injecting it as an assistant turn before the new prompt.
func (b *Bot) handleReply(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.sessions.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	quoted := msg.ReplyToMessage.Text
	if err := sess.AddMessage(ctx, llm.Message{Role: llm.RoleAssistant, Content: quoted}); err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return err
	}
	return b.handlePrompt(ctx, msg, msg.Text, nil)
}

func (b *Bot) handleReset(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.sessions.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	if err := sess.Reset(ctx); err != nil {
		b.sendMessage(msg.Chat.ID, apologyText)
		return err
	}
	b.sendMessage(msg.Chat.ID, "Context cleared. I've forgotten our conversation.")
	return nil
}

func (b *Bot) apologize(placeholder EditableMessage) {
	if err := b.editText(placeholder, apologyText); err != nil {
		log.Printf("failed to send apology: %v", err)
	}
}

func (b *Bot) record(userID int64, prompt string, resp llm.Response) {
	if b.recorder == nil {
		return
	}
	err := b.recorder.AppendInteraction(storage.Event{
		Timestamp:         time.Now().UTC(),
		UserID:            userID,
		UserMessage:       prompt,
		AssistantResponse: resp.Content,
		Model:             resp.Model,
		TotalTokens:       resp.TotalTokens,
	})
	if err != nil {
		log.Printf("failed to record interaction: %v", err)
	}
}
