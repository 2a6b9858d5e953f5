package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TG_TOKEN", "token")
	t.Setenv("TG_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, "data/kipped.db", cfg.Database.Path)
	assert.Equal(t, "data/summaries", cfg.Cache.Dir)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "20:00", cfg.DailyReminderTime)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TG_TOKEN", "token")
	t.Setenv("TG_CHAT_ID", "7")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("CACHE_DIR", "/tmp/cache")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, "/tmp/cache", cfg.Cache.Dir)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("TG_TOKEN", "")
		os.Unsetenv("TG_TOKEN")
		t.Setenv("TG_CHAT_ID", "1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad chat id", func(t *testing.T) {
		t.Setenv("TG_TOKEN", "token")
		t.Setenv("TG_CHAT_ID", "abc")
		_, err := Load()
		assert.Error(t, err)
	})

	for _, clock := range []string{"8:00", "24:00", "20.30", "evening"} {
		t.Run("reminder time "+clock, func(t *testing.T) {
			t.Setenv("TG_TOKEN", "token")
			t.Setenv("TG_CHAT_ID", "1")
			t.Setenv("DAILY_REMINDER_TIME", clock)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("TG_TOKEN", "token")
		t.Setenv("TG_CHAT_ID", "1")
		t.Setenv("LLM_PROVIDER", "yandex")
		_, err := Load()
		assert.Error(t, err)
	})
}
