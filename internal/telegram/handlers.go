package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kipped/internal/database"
	"kipped/internal/services"
	"kipped/internal/utils"
)

const (
	notesListLimit = 20
	memoriesLimit  = 5
	reminderMarker = " @ "
)

const helpText = `🌼 <b>Kipped</b>: one good thing a day

<b>Notes</b>
/note &lt;text&gt; - save today's note (plain text works too)
/note YYYY-MM-DD &lt;text&gt; - write for another day
/today - show today's note
/edit &lt;id&gt; [YYYY-MM-DD] &lt;text&gt; - change a note
/delnote &lt;id&gt; - delete a note
/notes - recent notes by month

<b>Calendar</b>
/month [YYYY-MM] - month grid
/year [YYYY] - year at a glance
/streak - streaks and totals
/memories week|month|year - postcards from the past
/summary week|month|year [YYYY-MM-DD] - AI summary

<b>To-dos</b>
/todo &lt;title&gt; [@ YYYY-MM-DD HH:MM] - add, with an optional reminder
/todos - active to-dos
/done &lt;id&gt; - toggle completion
/retitle &lt;id&gt; &lt;title&gt; [@ YYYY-MM-DD HH:MM | @ none]
/archive &lt;id&gt;, /unarchive &lt;id&gt;, /archived
/deltodo &lt;id&gt; - delete

<b>Other</b>
/settings, /set &lt;name&gt; &lt;value&gt;|reset
/export - download everything as YAML`

func (b *Bot) handleStart(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(helpText)
}

func (b *Bot) handleNote(_ context.Context, _ *tgbotapi.Message, args string) {
	if args == "" {
		b.SendMessageOrLogError("❌ Usage: /note [YYYY-MM-DD] &lt;text&gt;")
		return
	}

	day := b.services.Now()
	if first, rest, ok := strings.Cut(args, " "); ok {
		if d, err := utils.ParseDay(first); err == nil {
			day, args = d, strings.TrimSpace(rest)
		}
	}

	if utils.StartOfDay(day).After(utils.StartOfDay(b.services.Now())) {
		b.SendMessageOrLogError("❌ Notes can't be written for future days")
		return
	}
	b.saveNote(day, args)
}

func (b *Bot) saveNote(day time.Time, content string) {
	existed := b.services.Notes.HasNoteForDate(day)
	note := b.services.Notes.AddNote(content, day)

	verb := "✅ Saved"
	if existed {
		verb = "✏️ Updated"
	}
	text := fmt.Sprintf("%s\n\n%s", verb, renderNote(note))

	if utils.SameDay(day, b.services.Now()) {
		streak := b.services.Notes.CurrentStreak()
		text += fmt.Sprintf("\n\n🔥 Streak: %d %s", streak, plural(streak, "day", "days"))
	}
	b.SendMessageOrLogError(text)
}

func (b *Bot) handleToday(_ context.Context, _ *tgbotapi.Message, _ string) {
	note, ok := b.services.Notes.NoteForDate(b.services.Now())
	if !ok {
		b.SendMessageOrLogError("📭 Nothing yet today. What was one good thing?")
		return
	}
	b.SendMessageOrLogError(renderNote(note))
}

func (b *Bot) handleEdit(_ context.Context, _ *tgbotapi.Message, args string) {
	id, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	if id == "" || rest == "" {
		b.SendMessageOrLogError("❌ Usage: /edit &lt;id&gt; [YYYY-MM-DD] &lt;text&gt;")
		return
	}

	note, ok := b.services.Notes.Lookup(id)
	if !ok {
		b.SendMessageOrLogError("❌ Note not found")
		return
	}

	if first, text, found := strings.Cut(rest, " "); found {
		if day, err := utils.ParseDay(first); err == nil {
			if day.After(utils.StartOfDay(b.services.Now())) {
				b.SendMessageOrLogError("❌ Notes can't be moved to future days")
				return
			}
			updated, _ := b.services.Notes.UpdateNoteWithDate(note.ID, strings.TrimSpace(text), day)
			b.SendMessageOrLogError("✏️ Moved\n\n" + renderNote(updated))
			return
		}
	}

	updated, _ := b.services.Notes.UpdateNote(note.ID, rest)
	b.SendMessageOrLogError("✏️ Updated\n\n" + renderNote(updated))
}

func (b *Bot) handleDeleteNote(_ context.Context, _ *tgbotapi.Message, args string) {
	note, ok := b.services.Notes.Lookup(args)
	if !ok {
		b.SendMessageOrLogError("❌ Note not found")
		return
	}
	b.services.Notes.DeleteNote(note.ID)
	b.SendMessageOrLogError(fmt.Sprintf("🗑 Deleted the note from %s", note.Date.Format("Jan 2, 2006")))
}

func (b *Bot) handleNotes(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(renderNotesByMonth(b.services.Notes.NotesByMonth(), notesListLimit))
}

func (b *Bot) handleMonth(_ context.Context, _ *tgbotapi.Message, args string) {
	month := b.services.Now().In(utils.Location())
	if args != "" {
		m, err := utils.ParseMonth(args)
		if err != nil {
			b.SendMessageOrLogError("❌ Usage: /month [YYYY-MM]")
			return
		}
		month = m
	}
	b.SendMessageOrLogError(renderMonthGrid(b.services.Analytics.MonthGrid(month.Year(), month.Month())))
}

func (b *Bot) handleYear(_ context.Context, _ *tgbotapi.Message, args string) {
	year := b.services.Now().In(utils.Location()).Year()
	if args != "" {
		y, err := strconv.Atoi(args)
		if err != nil || y < 1900 || y > 9999 {
			b.SendMessageOrLogError("❌ Usage: /year [YYYY]")
			return
		}
		year = y
	}
	b.SendMessageOrLogError(renderYearGrid(b.services.Analytics.YearGrid(year)))
}

func (b *Bot) handleStreak(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(renderStats(b.services.Analytics.Stats()))
}

func (b *Bot) handleMemories(_ context.Context, _ *tgbotapi.Message, args string) {
	period := database.Weekly
	if args != "" {
		p, ok := database.ParsePeriod(strings.ToLower(args))
		if !ok {
			b.SendMessageOrLogError("❌ Usage: /memories week|month|year")
			return
		}
		period = p
	}
	b.SendMessageOrLogError(renderMemories(b.services.Analytics.Memories(period, memoriesLimit)))
}

func (b *Bot) handleSummary(ctx context.Context, _ *tgbotapi.Message, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		msg := tgbotapi.NewMessage(b.chatID, "Which period should I summarize?")
		msg.ReplyMarkup = b.createSummaryKeyboard()
		if _, err := b.s.Send(msg); err != nil {
			log.Printf("❌ Failed to send summary keyboard: %v", err)
		}
		return
	}

	period, ok := database.ParsePeriod(strings.ToLower(fields[0]))
	if !ok || len(fields) > 2 {
		b.SendMessageOrLogError("❌ Usage: /summary week|month|year [YYYY-MM-DD]")
		return
	}

	anchor := b.services.Now()
	if len(fields) == 2 {
		d, err := utils.ParseDay(fields[1])
		if err != nil {
			b.SendMessageOrLogError("❌ " + escape(err.Error()))
			return
		}
		anchor = d
	}
	b.sendSummaryAsync(ctx, period, anchor)
}

// sendSummaryAsync runs the summarizer outside the update loop. Wait blocks
// until it is done.
func (b *Bot) sendSummaryAsync(ctx context.Context, period database.Period, anchor time.Time) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.sendSummary(ctx, period, anchor)
	}()
}

// SendWeeklySummary pushes the summary of the current week. Nothing is sent
// when notifications are off or the week has no notes.
func (b *Bot) SendWeeklySummary(ctx context.Context) {
	if !b.services.Preferences.Get().NotificationsEnabled {
		return
	}

	now := b.services.Now()
	start, end := services.PeriodRange(database.Weekly, now)
	if len(b.services.Notes.NotesInRange(start, end)) == 0 {
		log.Println("📭 No notes this week, skipping weekly summary")
		return
	}

	log.Println("📊 Sending weekly summary")
	b.sendSummary(ctx, database.Weekly, now)
}

func (b *Bot) sendSummary(ctx context.Context, period database.Period, anchor time.Time) {
	result := b.services.Summaries.Summarize(ctx, period, anchor)
	b.SendMessageOrLogError(renderSummary(period, result))
}

// parseTodoArgs splits "title @ YYYY-MM-DD HH:MM". A reminder of "none"
// clears the reminder.
func parseTodoArgs(args string) (title string, reminder *time.Time, clearReminder bool, err error) {
	args = " " + args
	idx := strings.LastIndex(args, reminderMarker)
	if idx < 0 {
		return strings.TrimSpace(args), nil, false, nil
	}

	title = strings.TrimSpace(args[:idx])
	when := strings.TrimSpace(args[idx+len(reminderMarker):])
	if strings.EqualFold(when, "none") {
		return title, nil, true, nil
	}

	parts := strings.Fields(when)
	if len(parts) != 2 {
		return "", nil, false, fmt.Errorf("reminder must be YYYY-MM-DD HH:MM")
	}
	at, err := utils.ParseDateTime(parts[0], parts[1])
	if err != nil {
		return "", nil, false, err
	}
	return title, &at, false, nil
}

func (b *Bot) handleAddTodo(_ context.Context, _ *tgbotapi.Message, args string) {
	title, reminder, _, err := parseTodoArgs(args)
	if err != nil {
		b.SendMessageOrLogError("❌ " + escape(err.Error()))
		return
	}
	if title == "" {
		b.SendMessageOrLogError("❌ Usage: /todo &lt;title&gt; [@ YYYY-MM-DD HH:MM]")
		return
	}
	if reminder != nil && !reminder.After(b.services.Now()) {
		b.SendMessageOrLogError("❌ The reminder time has already passed")
		return
	}

	todo := b.services.Todos.Add(title, reminder)
	b.SendMessageOrLogError("✅ Added\n" + renderTodo(todo))
}

func (b *Bot) handleTodos(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(renderTodos("📋 To-dos", b.services.Todos.Active(), "📭 No to-dos. Add one with /todo"))
}

func (b *Bot) handleArchived(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(renderTodos("🗄 Archived", b.services.Todos.Archived(), "📭 The archive is empty"))
}

func (b *Bot) lookupTodo(idOrPrefix string) (database.Todo, bool) {
	todo, ok := b.services.Todos.Lookup(strings.TrimSpace(idOrPrefix))
	if !ok {
		b.SendMessageOrLogError("❌ To-do not found")
	}
	return todo, ok
}

func (b *Bot) handleDone(_ context.Context, _ *tgbotapi.Message, args string) {
	todo, ok := b.lookupTodo(args)
	if !ok {
		return
	}
	todo, _ = b.services.Todos.ToggleCompletion(todo.ID)
	if todo.IsCompleted {
		b.SendMessageOrLogError("✅ Done: " + escape(todo.Title))
	} else {
		b.SendMessageOrLogError("↩️ Reopened: " + escape(todo.Title))
	}
}

func (b *Bot) handleRetitle(_ context.Context, _ *tgbotapi.Message, args string) {
	id, rest, _ := strings.Cut(args, " ")
	todo, ok := b.lookupTodo(id)
	if !ok {
		return
	}

	title, reminder, clearReminder, err := parseTodoArgs(rest)
	if err != nil {
		b.SendMessageOrLogError("❌ " + escape(err.Error()))
		return
	}
	if title == "" {
		title = todo.Title
	}
	if reminder == nil && !clearReminder {
		reminder = todo.ReminderDate
	}

	todo, _ = b.services.Todos.Edit(todo.ID, title, reminder)
	b.SendMessageOrLogError("✏️ Updated\n" + renderTodo(todo))
}

func (b *Bot) handleArchive(_ context.Context, _ *tgbotapi.Message, args string) {
	todo, ok := b.lookupTodo(args)
	if !ok {
		return
	}
	b.services.Todos.Archive(todo.ID)
	b.SendMessageOrLogError("🗄 Archived: " + escape(todo.Title))
}

func (b *Bot) handleUnarchive(_ context.Context, _ *tgbotapi.Message, args string) {
	todo, ok := b.lookupTodo(args)
	if !ok {
		return
	}
	b.services.Todos.Unarchive(todo.ID)
	b.SendMessageOrLogError("📤 Restored: " + escape(todo.Title))
}

func (b *Bot) handleDeleteTodo(_ context.Context, _ *tgbotapi.Message, args string) {
	todo, ok := b.lookupTodo(args)
	if !ok {
		return
	}
	b.services.Todos.Delete(todo.ID)
	b.SendMessageOrLogError("🗑 Deleted: " + escape(todo.Title))
}

func (b *Bot) handleSettings(_ context.Context, _ *tgbotapi.Message, _ string) {
	b.SendMessageOrLogError(renderSettings(b.services.Preferences.Get(), b.services.Summaries.Provider()))
}

func (b *Bot) handleSet(_ context.Context, _ *tgbotapi.Message, args string) {
	name, value, ok := strings.Cut(args, " ")
	if !ok || strings.TrimSpace(value) == "" {
		b.SendMessageOrLogError("❌ Usage: /set &lt;name&gt; &lt;value&gt;")
		return
	}

	name = strings.ToLower(name)
	if strings.EqualFold(strings.TrimSpace(value), "reset") {
		if err := b.services.Preferences.Reset(name); err != nil {
			b.SendMessageOrLogError("❌ " + escape(err.Error()))
			return
		}
		b.SendMessageOrLogError(fmt.Sprintf("↩️ %s reset to default", escape(name)))
		return
	}

	if err := b.services.Preferences.Set(name, value); err != nil {
		b.SendMessageOrLogError("❌ " + escape(err.Error()))
		return
	}
	b.SendMessageOrLogError(fmt.Sprintf("✅ %s updated", escape(name)))
}

func (b *Bot) handleExport(_ context.Context, _ *tgbotapi.Message, _ string) {
	data, err := b.services.Export.ExportYAML()
	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		b.SendMessageOrLogError("❌ Export failed")
		return
	}

	name := fmt.Sprintf("kipped-%s.yaml", utils.FormatDay(b.services.Now()))
	doc := tgbotapi.NewDocument(b.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = "📦 Your notes and to-dos"
	if _, err := b.s.Send(doc); err != nil {
		log.Printf("❌ Failed to send export: %v", err)
	}
}
