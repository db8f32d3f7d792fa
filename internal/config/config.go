// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	// HTTPAddr is the listen address of the API server.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// DataDir enables the Badger-backed session store when set; sessions
	// are kept in memory otherwise.
	DataDir string `env:"DATA_DIR"`

	// TelegramBotToken enables Telegram notification delivery when set;
	// notifications go to the log otherwise.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// OpenAI settings enable the generated step source when the key is
	// set; the built-in catalog is used otherwise.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIAPIBase string `env:"OPENAI_API_BASE"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
