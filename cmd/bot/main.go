package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/twaslowski/openai-telegram-bot/internal/config"
	"github.com/twaslowski/openai-telegram-bot/internal/llm"
	"github.com/twaslowski/openai-telegram-bot/internal/scheduler"
	"github.com/twaslowski/openai-telegram-bot/internal/session"
	"github.com/twaslowski/openai-telegram-bot/internal/speech"
	"github.com/twaslowski/openai-telegram-bot/internal/storage"
	"github.com/twaslowski/openai-telegram-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to init session store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close session store: %v", err)
		}
	}()

	factory := &llm.Factory{
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		OpenAIBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	var speechEngine speech.Engine
	var transcriber speech.Transcriber
	if cfg.OpenAIAPIKey != "" {
		engine := speech.NewOpenAI(cfg.OpenAIAPIKey)
		speechEngine = engine
		transcriber = engine
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		llmClient,
		speechEngine,
		transcriber,
		session.NewManager(store),
		rec,
		readSystemPrompt(cfg.SystemPromptPath),
		cfg.AdminUserID,
		cfg.MessageParseMode,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.DigestCron != "" && cfg.AdminUserID != 0 {
		sched := scheduler.New()
		sched.SetDigestFunction(bot.SendUsageDigest)
		if err := sched.Start(cfg.DigestCron); err != nil {
			log.Printf("failed to start scheduler: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("starting bot")
	bot.Start(ctx)
}

func newStore(cfg *config.Config) (session.Store, error) {
	switch cfg.SessionStore {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	case config.StoreFile:
		return session.NewFileStore(cfg.SessionsFilePath)
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return session.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.SessionStore)
	}
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return string(data)
}
