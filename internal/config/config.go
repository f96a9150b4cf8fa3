package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ShowdownUsername string
	ShowdownURL      string
	ShowdownRoom     string
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	LLMStream        bool
	DBPath           string
	LogLevel         string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ShowdownUsername: getEnv("SHOWDOWN_USERNAME", ""),
		ShowdownURL:      getEnv("SHOWDOWN_URL", "wss://sim3.psim.us/showdown/websocket"),
		ShowdownRoom:     getEnv("SHOWDOWN_ROOM", ""),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:         getEnv("LLM_MODEL", "qwen/qwen3-8b"),
		LLMStream:        getEnvBool("LLM_STREAM", true),
		DBPath:           getEnv("DB_PATH", "pokebrains.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if cfg.ShowdownUsername == "" {
		return nil, fmt.Errorf("SHOWDOWN_USERNAME is required")
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	logger.Info().
		Str("showdown_url", cfg.ShowdownURL).
		Str("room", cfg.ShowdownRoom).
		Str("model", cfg.LLMModel).
		Bool("stream", cfg.LLMStream).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

var Module = fx.Provide(Load)
