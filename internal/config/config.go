package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds application configuration, populated from the environment.
type Config struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	Model         string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	ProspectsFile string `env:"PROSPECTS_FILE" envDefault:"data/prospects.json"`
	DBFile        string `env:"DB_FILE" envDefault:"leaderboard.db"`
	LogDir        string `env:"LOG_DIR" envDefault:"logs"`

	Debug bool `env:"DEBUG"`
}

// New parses configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
