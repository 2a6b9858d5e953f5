package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kipped/internal/config"
	"kipped/internal/database"
	"kipped/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "kipped.db")
	cfg.Cache.Dir = t.TempDir()
	cfg.Timezone = "UTC"
	cfg.DailyReminderTime = "21:15"
	cfg.LLM.Provider = "anthropic"
	return cfg
}

func TestNewServiceManager(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.New(cfg.Database.Path)
	require.NoError(t, err)
	defer db.Close()

	sm := NewServiceManager(cfg, database.NewRepository(db))
	assert.Equal(t, "21:15", sm.Preferences.Get().DailyReminderTime)
	assert.Equal(t, "anthropic", sm.Summaries.Provider())

	require.NoError(t, sm.Preferences.Set(services.PrefProvider, "openai"))
	assert.Equal(t, "openai", sm.Summaries.Provider())

	// No API key anywhere: summaries still come back, from the fallback.
	sm.Notes.AddNote("a good day", sm.Now())
	res := sm.Summaries.Summarize(context.Background(), database.Weekly, sm.Now())
	assert.Equal(t, services.SourceFallback, res.Source)
}

func TestSetupCronJobs(t *testing.T) {
	a := &Application{cron: cron.New()}
	require.NoError(t, a.setupCronJobs())
	require.Len(t, a.cron.Entries(), 2)

	// 2026-10-17 is a Saturday; the weekly summary runs the next evening.
	sat := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	sched, err := cron.ParseStandard(weeklySummarySpec)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC), sched.Next(sat))
}
