package database

import (
	"time"

	"kipped/internal/utils"
)

type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

var PeriodNames = map[Period]string{
	Weekly:  "week",
	Monthly: "month",
	Yearly:  "year",
}

// ParsePeriod accepts the canonical names and the short forms used in commands.
func ParsePeriod(s string) (Period, bool) {
	switch s {
	case "weekly", "week", "w":
		return Weekly, true
	case "monthly", "month", "m":
		return Monthly, true
	case "yearly", "year", "y":
		return Yearly, true
	default:
		return "", false
	}
}

// Start returns the first local midnight of the period containing anchor.
// Weeks start on Monday; unknown periods are treated as weekly.
func (p Period) Start(anchor time.Time) time.Time {
	switch p {
	case Monthly:
		return utils.MonthStart(anchor)
	case Yearly:
		return utils.YearStart(anchor)
	default:
		return utils.WeekStart(anchor)
	}
}

// Note is a single day's entry. Date is always local midnight.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	Date      time.Time `json:"date" yaml:"date"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Todo struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	IsCompleted  bool       `json:"is_completed" yaml:"is_completed"`
	IsArchived   bool       `json:"is_archived" yaml:"is_archived"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	ReminderDate *time.Time `json:"reminder_date,omitempty" yaml:"reminder_date,omitempty"`
	ReminderSent bool       `json:"reminder_sent,omitempty" yaml:"reminder_sent,omitempty"`
}

// Summary is the structured record a summarizer returns for a period.
type Summary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Themes  []string `json:"themes"`
	Mood    string   `json:"mood"`
	Color   *string  `json:"color,omitempty"`
}

type MonthGroup struct {
	Month time.Time `json:"month"`
	Notes []Note    `json:"notes"`
}

type DayCell struct {
	Date    time.Time `json:"date"`
	HasNote bool      `json:"has_note"`
	IsToday bool      `json:"is_today"`
}

// MonthGrid holds Monday-first weeks; blank cells have a zero Date.
type MonthGrid struct {
	Month time.Time   `json:"month"`
	Weeks [][]DayCell `json:"weeks"`
}

type YearGrid struct {
	Year  int       `json:"year"`
	Days  []DayCell `json:"days"`
	Count int       `json:"count"`
}

// Memory is one postcard: the notes of a single period.
type Memory struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Label  string    `json:"label"`
	Notes  []Note    `json:"notes"`
}

type JournalStats struct {
	TotalNotes     int `json:"total_notes"`
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
	NotesThisMonth int `json:"notes_this_month"`
	NotesThisYear  int `json:"notes_this_year"`
}

type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

type Preferences struct {
	Theme                Theme  `json:"theme"`
	AccentColor          string `json:"accent_color"`
	Font                 string `json:"font"`
	AppIcon              string `json:"app_icon"`
	HapticsEnabled       bool   `json:"haptics_enabled"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DailyReminderTime    string `json:"daily_reminder_time"`
	LLMProvider          string `json:"llm_provider"`
	OpenAIAPIKey         string `json:"openai_api_key"`
	AnthropicAPIKey      string `json:"anthropic_api_key"`
}

type TodoNotification struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ReminderDate time.Time `json:"reminder_date"`
}
