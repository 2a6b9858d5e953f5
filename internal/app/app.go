package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"kipped/internal/cache"
	"kipped/internal/config"
	"kipped/internal/database"
	"kipped/internal/llm"
	"kipped/internal/services"
	"kipped/internal/telegram"
	"kipped/internal/utils"
)

const weeklySummarySpec = "0 20 * * 0"

type Application struct {
	config     *config.Config
	db         *database.Database
	bot        *telegram.Bot
	services   *services.ServiceManager
	cron       *cron.Cron
	cancelFunc context.CancelFunc
	ctx        context.Context
}

func New(cfg *config.Config) (*Application, error) {
	if err := utils.SetLocation(cfg.Timezone); err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	serviceManager := NewServiceManager(cfg, database.NewRepository(db))
	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, serviceManager)
	if err != nil {
		db.Close()
		return nil, err
	}

	serviceManager.SetNotificationSender(bot)
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config:     cfg,
		db:         db,
		bot:        bot,
		services:   serviceManager,
		cron:       cron.New(cron.WithLocation(utils.Location())),
		cancelFunc: cancel,
		ctx:        ctx,
	}

	if err := app.setupCronJobs(); err != nil {
		cancel()
		db.Close()
		return nil, err
	}

	return app, nil
}

// NewServiceManager builds the services from configuration on top of kv.
func NewServiceManager(cfg *config.Config, kv database.KeyValue) *services.ServiceManager {
	defaults := services.DefaultPreferences()
	defaults.DailyReminderTime = cfg.DailyReminderTime

	return services.NewServiceManager(kv, services.Options{
		Factory:         llm.NewFactory(cfg),
		Cache:           cache.NewFileCache(cfg.Cache.Dir),
		DefaultProvider: cfg.LLM.Provider,
		Defaults:        defaults,
	})
}

func (a *Application) Start() error {
	log.Println("🚀 Starting application...")

	go a.bot.Start(a.ctx)

	log.Println("🔍 Checking for missed reminders...")
	a.services.Notification.SendMissedNotifications()

	a.cron.Start()

	log.Printf("✅ Application started. Bot: @%s", a.bot.GetUsername())
	log.Printf("%s", utils.GetTimezoneInfo(time.Now()))
	return nil
}

func (a *Application) Stop() error {
	log.Println("🛑 Stopping application...")

	a.cancelFunc()
	<-a.cron.Stop().Done()
	a.bot.Wait()

	if err := a.db.Close(); err != nil {
		log.Printf("⚠️ Failed to close database: %v", err)
	}

	log.Println("✅ Application stopped")
	return nil
}

func (a *Application) setupCronJobs() error {
	// Due to-do reminders and the daily nudge, every minute.
	if _, err := a.cron.AddFunc("* * * * *", func() {
		a.services.Notification.CheckAndSendNotifications()
	}); err != nil {
		return fmt.Errorf("schedule notifications: %w", err)
	}

	// Weekly summary, Sunday evening.
	if _, err := a.cron.AddFunc(weeklySummarySpec, func() {
		a.bot.SendWeeklySummary(a.ctx)
	}); err != nil {
		return fmt.Errorf("schedule weekly summary: %w", err)
	}
	return nil
}
