package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v6"

	"kipped/internal/utils"
)

type Config struct {
	Telegram struct {
		Token  string `env:"TG_TOKEN,required"`
		ChatID int64  `env:"TG_CHAT_ID,required"`
	}
	Database struct {
		Path string `env:"DB_PATH" envDefault:"data/kipped.db"`
	}
	Cache struct {
		Dir string `env:"CACHE_DIR" envDefault:"data/summaries"`
	}
	Timezone          string `env:"TIMEZONE" envDefault:"UTC"`
	DailyReminderTime string `env:"DAILY_REMINDER_TIME" envDefault:"20:00"`

	LLM struct {
		Provider         string `env:"LLM_PROVIDER" envDefault:"openai"`
		OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
		OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
		OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
		AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
		AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
		AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TG_TOKEN is empty")
	}

	if !utils.IsClock(cfg.DailyReminderTime) {
		return nil, fmt.Errorf("DAILY_REMINDER_TIME must be HH:MM, got %q", cfg.DailyReminderTime)
	}

	switch cfg.LLM.Provider {
	case "openai", "anthropic":
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", cfg.LLM.Provider)
	}

	log.Printf("✅ Config loaded: db=%s, cache=%s, tz=%s, llm=%s",
		cfg.Database.Path, cfg.Cache.Dir, cfg.Timezone, cfg.LLM.Provider)

	return cfg, nil
}
