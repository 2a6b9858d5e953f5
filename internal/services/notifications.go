package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"kipped/internal/database"
	"kipped/internal/utils"
)

const missedReminderWindow = 24 * time.Hour

// NotificationSender delivers reminders to the user.
type NotificationSender interface {
	SendMessage(text string) error
	SendTodoReminder(todo database.TodoNotification) error
}

// ReminderTracker remembers which reminders have already been handled.
type ReminderTracker interface {
	MarkReminderSent(id string)
}

// NotificationService is the in-memory reminder scheduler. Due reminders are
// delivered by CheckAndSendNotifications, at most once per schedule.
type NotificationService struct {
	mu        sync.Mutex
	sender    NotificationSender
	tracker   ReminderTracker
	notes     *NoteService
	prefs     *PreferencesService
	now       func() time.Time
	scheduled map[string]database.TodoNotification
	lastDaily string
}

func NewNotificationService(sender NotificationSender, tracker ReminderTracker, notes *NoteService, prefs *PreferencesService, now func() time.Time) *NotificationService {
	return &NotificationService{
		sender:    sender,
		tracker:   tracker,
		notes:     notes,
		prefs:     prefs,
		now:       now,
		scheduled: make(map[string]database.TodoNotification),
	}
}

func (ns *NotificationService) Schedule(todo database.Todo) {
	if todo.ReminderDate == nil {
		return
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.scheduled[todo.ID] = database.TodoNotification{ID: todo.ID, Title: todo.Title, ReminderDate: *todo.ReminderDate}
	log.Printf("⏰ Reminder scheduled: %q at %s", todo.Title, utils.FormatTimeForDisplay(*todo.ReminderDate))
}

func (ns *NotificationService) Cancel(id string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if _, ok := ns.scheduled[id]; ok {
		delete(ns.scheduled, id)
		log.Printf("🔕 Reminder cancelled: %s", id)
	}
}

func (ns *NotificationService) Pending() []database.TodoNotification {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	out := make([]database.TodoNotification, 0, len(ns.scheduled))
	for _, n := range ns.scheduled {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDate.Before(out[j].ReminderDate) })
	return out
}

// takeDue removes and returns reminders due at or before now. They count as
// handled from here on, whether or not delivery succeeds.
func (ns *NotificationService) takeDue(now time.Time) []database.TodoNotification {
	ns.mu.Lock()
	var due []database.TodoNotification
	for id, n := range ns.scheduled {
		if !n.ReminderDate.After(now) {
			due = append(due, n)
			delete(ns.scheduled, id)
		}
	}
	ns.mu.Unlock()

	// The to-do store calls back into Schedule and Cancel under its own
	// lock, so it must not be entered while ns.mu is held.
	for _, n := range due {
		ns.tracker.MarkReminderSent(n.ID)
	}

	sort.Slice(due, func(i, j int) bool { return due[i].ReminderDate.Before(due[j].ReminderDate) })
	return due
}

func (ns *NotificationService) CheckAndSendNotifications() {
	now := ns.now()

	due := ns.takeDue(now)
	if len(due) > 0 {
		log.Printf("🔔 Sending %d todo reminders", len(due))
	}
	for _, n := range due {
		if err := ns.sender.SendTodoReminder(n); err != nil {
			log.Printf("❌ Failed to send reminder %s: %v", n.ID, err)
		}
	}

	ns.CheckDailyReminder()
}

// SendMissedNotifications runs once at startup. Reminders that fell due while
// the process was down are sent if they are recent and dropped otherwise.
func (ns *NotificationService) SendMissedNotifications() {
	now := ns.now()
	for _, n := range ns.takeDue(now) {
		if now.Sub(n.ReminderDate) > missedReminderWindow {
			log.Printf("⚠️ Dropping stale reminder %q from %s", n.Title, utils.FormatTimeForDisplay(n.ReminderDate))
			continue
		}
		if err := ns.sender.SendTodoReminder(n); err != nil {
			log.Printf("❌ Failed to send missed reminder %s: %v", n.ID, err)
		}
	}
}

// CheckDailyReminder nudges the user once a day, after the preferred time,
// unless notifications are off or today already has a note.
func (ns *NotificationService) CheckDailyReminder() {
	prefs := ns.prefs.Get()
	if !prefs.NotificationsEnabled {
		return
	}

	now := ns.now().In(utils.Location())
	today := utils.FormatDay(now)
	if now.Format(utils.ClockLayout) < prefs.DailyReminderTime {
		return
	}

	ns.mu.Lock()
	if ns.lastDaily == today {
		ns.mu.Unlock()
		return
	}
	ns.lastDaily = today
	ns.mu.Unlock()

	if ns.notes.HasNoteForDate(now) {
		return
	}

	text := "🌼 What was one good thing about today?\nReply with a message and I'll keep it as today's note."
	if yesterday := utils.AddDays(now, -1); ns.notes.HasNoteForDate(yesterday) {
		text += "\n\n🔥 Don't break your streak!"
	}

	if err := ns.sender.SendMessage(text); err != nil {
		log.Printf("❌ Failed to send daily reminder: %v", err)
	}
}
