package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/samber/lo"

	"kipped/internal/database"
	"kipped/internal/services"
	"kipped/internal/utils"
)

const shortIDLength = 8

var weekdayHeader = "Mo Tu We Th Fr Sa Su"

func escape(s string) string {
	return html.EscapeString(s)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func renderNote(n database.Note) string {
	return fmt.Sprintf("📝 <b>%s</b> <code>%s</code>\n%s",
		n.Date.In(utils.Location()).Format("Mon, Jan 2 2006"), shortID(n.ID), escape(n.Content))
}

func renderNotesByMonth(groups []database.MonthGroup, limit int) string {
	if len(groups) == 0 {
		return "📭 No notes yet. Send me one good thing about today."
	}

	var sb strings.Builder
	shown := 0
	for _, g := range groups {
		if shown >= limit {
			break
		}
		sb.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n", g.Month.Format("January 2006"), len(g.Notes)))
		for _, n := range g.Notes {
			if shown >= limit {
				break
			}
			sb.WriteString(fmt.Sprintf("• %s <code>%s</code> %s\n", n.Date.Format("Jan 2"), shortID(n.ID), escape(n.Content)))
			shown++
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderMonthGrid draws the month as a monospaced calendar. Days with a note
// show a dot instead of their number.
func renderMonthGrid(grid database.MonthGrid) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>%s</b>\n<pre>", grid.Month.Format("January 2006")))
	sb.WriteString(weekdayHeader + "\n")

	count := 0
	for _, week := range grid.Weeks {
		cells := lo.Map(week, func(c database.DayCell, _ int) string {
			if c.Date.IsZero() {
				return "  "
			}
			if c.HasNote {
				count++
				return " ●"
			}
			return fmt.Sprintf("%2d", c.Date.Day())
		})
		sb.WriteString(strings.TrimRight(strings.Join(cells, " "), " ") + "\n")
	}
	sb.WriteString("</pre>")
	sb.WriteString(fmt.Sprintf("\n%d %s this month", count, plural(count, "note", "notes")))

	if today, ok := lo.Find(lo.Flatten(grid.Weeks), func(c database.DayCell) bool { return c.IsToday }); ok {
		mark := "○ no note yet"
		if today.HasNote {
			mark = "● written"
		}
		sb.WriteString(fmt.Sprintf("\nToday: %s", mark))
	}
	return sb.String()
}

// renderYearGrid prints one row of dots per month.
func renderYearGrid(grid database.YearGrid) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎆 <b>%d</b>: %d %s\n<pre>", grid.Year, grid.Count, plural(grid.Count, "note", "notes")))

	byMonth := lo.GroupBy(grid.Days, func(c database.DayCell) time.Month { return c.Date.Month() })
	for m := time.January; m <= time.December; m++ {
		days := byMonth[m]
		dots := lo.Map(days, func(c database.DayCell, _ int) string {
			switch {
			case c.HasNote:
				return "●"
			case c.IsToday:
				return "◎"
			default:
				return "·"
			}
		})
		sb.WriteString(fmt.Sprintf("%s %s\n", m.String()[:3], strings.Join(dots, "")))
	}
	sb.WriteString("</pre>")
	return sb.String()
}

func renderStats(stats database.JournalStats) string {
	return fmt.Sprintf(
		"🔥 <b>Current streak:</b> %d %s\n"+
			"🏆 <b>Longest streak:</b> %d %s\n\n"+
			"📝 This month: %d\n"+
			"📅 This year: %d\n"+
			"📚 All time: %d",
		stats.CurrentStreak, plural(stats.CurrentStreak, "day", "days"),
		stats.LongestStreak, plural(stats.LongestStreak, "day", "days"),
		stats.NotesThisMonth, stats.NotesThisYear, stats.TotalNotes,
	)
}

// renderMemories lays out each period as a postcard.
func renderMemories(memories []database.Memory) string {
	if len(memories) == 0 {
		return "📭 No memories yet."
	}

	cards := lo.Map(memories, func(m database.Memory, _ int) string {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", utils.GetPeriodEmoji(string(m.Period)), escape(m.Label)))
		for _, n := range m.Notes {
			sb.WriteString(fmt.Sprintf("  %s · %s\n", n.Date.Format("Mon Jan 2"), escape(n.Content)))
		}
		return strings.TrimRight(sb.String(), "\n")
	})
	return strings.Join(cards, "\n\n")
}

func renderSummary(period database.Period, result services.SummaryResult) string {
	s := result.Summary

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n<i>%s</i>\n\n", utils.GetPeriodEmoji(string(period)), escape(s.Title), escape(result.Label)))
	sb.WriteString(escape(s.Summary) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s Mood: %s\n", utils.GetMoodEmoji(s.Mood), escape(s.Mood)))
	if len(s.Themes) > 0 {
		tags := lo.Map(s.Themes, func(t string, _ int) string { return "#" + strings.ReplaceAll(escape(t), " ", "_") })
		sb.WriteString("🏷 " + strings.Join(tags, " ") + "\n")
	}
	if s.Color != nil {
		sb.WriteString(fmt.Sprintf("🎨 %s\n", escape(*s.Color)))
	}

	switch result.Source {
	case services.SourceCache:
		sb.WriteString("\n<i>📦 from cache</i>")
	case services.SourceFallback:
		sb.WriteString("\n<i>✍️ offline summary</i>")
	default:
		sb.WriteString(fmt.Sprintf("\n<i>✨ by %s · %d %s</i>", escape(result.Source), result.NoteCount, plural(result.NoteCount, "note", "notes")))
	}
	return sb.String()
}

func renderTodo(t database.Todo) string {
	status := "⬜"
	if t.IsCompleted {
		status = "✅"
	}
	line := fmt.Sprintf("%s <code>%s</code> %s", status, shortID(t.ID), escape(t.Title))
	if t.ReminderDate != nil {
		line += " ⏰ " + utils.FormatTimeForDisplay(*t.ReminderDate)
	}
	return line
}

func renderTodos(title string, todos []database.Todo, empty string) string {
	if len(todos) == 0 {
		return empty
	}
	lines := lo.Map(todos, func(t database.Todo, _ int) string { return renderTodo(t) })
	return fmt.Sprintf("<b>%s</b>\n\n%s", title, strings.Join(lines, "\n"))
}

func renderSettings(p database.Preferences, provider string) string {
	accent, _ := utils.AccentColorHex(p.AccentColor)
	if p.LLMProvider == "" {
		provider += " (default)"
	}

	return fmt.Sprintf(
		"⚙️ <b>Settings</b>\n\n"+
			"theme: %s\n"+
			"accent: %s %s\n"+
			"font: %s\n"+
			"icon: %s\n"+
			"haptics: %s\n"+
			"notifications: %s\n"+
			"reminder: %s\n"+
			"provider: %s\n"+
			"openai_key: %s\n"+
			"anthropic_key: %s\n\n"+
			"Change with /set &lt;name&gt; &lt;value&gt;",
		p.Theme, p.AccentColor, accent, p.Font, p.AppIcon,
		onOff(p.HapticsEnabled), onOff(p.NotificationsEnabled), p.DailyReminderTime,
		escape(provider), maskKey(p.OpenAIAPIKey), maskKey(p.AnthropicAPIKey),
	)
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
