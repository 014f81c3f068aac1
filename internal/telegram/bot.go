package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/twaslowski/openai-telegram-bot/internal/llm"
	"github.com/twaslowski/openai-telegram-bot/internal/session"
	"github.com/twaslowski/openai-telegram-bot/internal/speech"
	"github.com/twaslowski/openai-telegram-bot/internal/storage"
)

type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	selfID       int64
	llmClient    llm.Client
	speech       speech.Engine
	transcriber  speech.Transcriber
	sessions     *session.Manager
	recorder     storage.Recorder
	systemPrompt string
	adminUserID  int64
	parseMode    string
}

func New(
	botToken string,
	llmClient llm.Client,
	speechEngine speech.Engine,
	transcriber speech.Transcriber,
	sessions *session.Manager,
	recorder storage.Recorder,
	systemPrompt string,
	adminUserID int64,
	parseMode string,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		selfID:       api.Self.ID,
		llmClient:    llmClient,
		speech:       speechEngine,
		transcriber:  transcriber,
		sessions:     sessions,
		recorder:     recorder,
		systemPrompt: systemPrompt,
		adminUserID:  adminUserID,
		parseMode:    parseMode,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			go b.handleUpdate(ctx, update.Message)
		}
	}
}

// handleUpdate is the top-level handler for one unit of work. Failures
// are reported to the user first and then surfaced to the operator; a
// panic is re-raised after the apology so systemic breakage stays
// visible.
func (b *Bot) handleUpdate(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling update from user %d: %v", msg.From.ID, r)
			b.sendMessage(msg.Chat.ID, apologyText)
			panic(r)
		}
	}()

	if err := b.handleMessage(ctx, msg); err != nil {
		log.Printf("update from user %d failed: %v", msg.From.ID, err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	// Serialize turns per user: a second message queues until the first
	// one's mutations are committed.
	defer b.sessions.LockUser(msg.From.ID)()

	switch {
	case msg.IsCommand():
		return b.handleCommand(ctx, msg)
	case msg.Voice != nil:
		return b.handleVoiceNote(ctx, msg)
	case b.isReplyToBot(msg):
		return b.handleReply(ctx, msg)
	case msg.Text != "":
		log.Printf("received message from user %d: %q", msg.From.ID, msg.Text)
		return b.handlePrompt(ctx, msg, msg.Text, nil)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return b.handleHelp(ctx, msg)
	case "reset":
		return b.handleReset(ctx, msg)
	case "tts":
		return b.handleTTS(ctx, msg)
	case "transcribe":
		return b.handleTranscribe(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command. Try /help.")
		return nil
	}
}

func (b *Bot) isReplyToBot(msg *tgbotapi.Message) bool {
	return msg.ReplyToMessage != nil &&
		msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.ID == b.selfID &&
		msg.ReplyToMessage.Text != ""
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if b.parseMode != "" {
		msg.ParseMode = b.parseMode
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) editText(m EditableMessage, text string) error {
	edit := tgbotapi.NewEditMessageText(m.ChatID, m.MessageID, text)
	if b.parseMode != "" {
		edit.ParseMode = b.parseMode
	}
	if _, err := b.s.Send(edit); err != nil {
		return err
	}
	return nil
}
