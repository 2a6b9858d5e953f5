package services

import (
	"time"

	"kipped/internal/database"
)

type ServiceManager struct {
	Notification *NotificationService
	Notes        *NoteService
	Todos        *TodoService
	Analytics    *AnalyticsService
	Summaries    *SummaryService
	Preferences  *PreferencesService
	Export       *ExportService
	now          func() time.Time
}

type Options struct {
	Factory         SummarizerFactory
	Cache           SummaryCache
	DefaultProvider string
	Defaults        database.Preferences
	Now             func() time.Time
}

func NewServiceManager(kv database.KeyValue, opts Options) *ServiceManager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	notes := NewNoteService(kv, now)
	todos := NewTodoService(kv, now)
	prefs := NewPreferencesService(kv, opts.Defaults)

	return &ServiceManager{
		Notification: nil,
		Notes:        notes,
		Todos:        todos,
		Analytics:    NewAnalyticsService(notes, now),
		Summaries:    NewSummaryService(notes, prefs, opts.Factory, opts.Cache, opts.DefaultProvider),
		Preferences:  prefs,
		Export:       NewExportService(notes, todos, now),
		now:          now,
	}
}

// SetNotificationSender creates the notification service and hands it every
// pending to-do reminder.
func (sm *ServiceManager) SetNotificationSender(sender NotificationSender) {
	sm.Notification = NewNotificationService(sender, sm.Todos, sm.Notes, sm.Preferences, sm.now)
	sm.Todos.SetReminderScheduler(sm.Notification)
}

func (sm *ServiceManager) Now() time.Time {
	return sm.now()
}
