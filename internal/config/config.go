package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type StoreType string

const (
	StoreMemory StoreType = "memory"
	StoreFile   StoreType = "file"
	StoreRedis  StoreType = "redis"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`

	// Session storage
	SessionStore     StoreType `env:"SESSION_STORE" envDefault:"file"`
	SessionsFilePath string    `env:"SESSIONS_FILE_PATH" envDefault:"data/sessions.json"`
	RedisAddr        string    `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string    `env:"REDIS_PASSWORD"`
	RedisDB          int       `env:"REDIS_DB"`

	// Interaction log + digest
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`
	DigestCron  string `env:"DIGEST_CRON"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
