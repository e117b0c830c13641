package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/assistant"
)

// Config carries everything main needs to wire the service.
type Config struct {
	DataDir  string
	BindAddr string

	AIProvider  string // "openai" or "ollama"
	OpenAIKey   string
	OpenAIModel string
	OllamaURL   string
	OllamaModel string
	AITimeout   time.Duration

	Logger *zap.Logger
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine in production.
		logger.Warn("could not load .env file", zap.Error(err))
	}

	cfg := &Config{
		DataDir:     getEnv("SHELFMATE_DATA_DIR", "./data"),
		BindAddr:    ":" + getEnv("SHELFMATE_PORT", "8080"),
		AIProvider:  getEnv("SHELFMATE_AI_PROVIDER", "openai"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		OllamaURL:   os.Getenv("OLLAMA_URL"),
		OllamaModel: os.Getenv("OLLAMA_MODEL"),
		AITimeout:   assistant.DefaultTimeout,
		Logger:      logger,
	}

	if raw := os.Getenv("SHELFMATE_AI_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid SHELFMATE_AI_TIMEOUT_SECONDS %q", raw)
		}
		cfg.AITimeout = time.Duration(seconds) * time.Second
	}

	if cfg.AIProvider == "openai" && cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, falling back to the ollama provider")
		cfg.AIProvider = "ollama"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
