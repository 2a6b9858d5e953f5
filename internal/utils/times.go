package utils

import (
	"fmt"
	"regexp"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	ClockLayout = "15:04"
)

var (
	location = time.UTC

	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	dayRe   = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// SetLocation changes the zone calendar days are computed in.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}
	location = loc
	return nil
}

func Location() *time.Location {
	return location
}

// StartOfDay strips the time of day in the configured zone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, location)
}

func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// AddDays moves by calendar days, which is not always 24h across DST changes.
func AddDays(t time.Time, n int) time.Time {
	d := StartOfDay(t)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, location)
}

// WeekStart returns the Monday that begins t's ISO week.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	return AddDays(day, -((int(day.Weekday()) + 6) % 7))
}

func MonthStart(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, location)
}

func YearStart(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, location)
}

func FormatDay(t time.Time) string {
	return t.In(location).Format(DayLayout)
}

// ParseDay parses YYYY-MM-DD as local midnight.
func ParseDay(s string) (time.Time, error) {
	if !dayRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return time.ParseInLocation(DayLayout, s, location)
}

func ParseMonth(s string) (time.Time, error) {
	return time.ParseInLocation(MonthLayout, s, location)
}

func IsClock(s string) bool {
	return clockRe.MatchString(s)
}

// ParseDateTime parses "YYYY-MM-DD HH:MM" in the configured zone.
func ParseDateTime(day, clock string) (time.Time, error) {
	if !IsClock(clock) {
		return time.Time{}, fmt.Errorf("time must be HH:MM, got %q", clock)
	}
	d, err := ParseDay(day)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(DayLayout+" "+ClockLayout, FormatDay(d)+" "+clock, location)
}

// FormatTimeForDisplay renders a timestamp with its zone abbreviation.
func FormatTimeForDisplay(t time.Time) string {
	local := t.In(location)
	name, _ := local.Zone()
	return fmt.Sprintf("%s %s %s", local.Format(DayLayout), local.Format(ClockLayout), name)
}

func GetTimezoneInfo(now time.Time) string {
	local := now.In(location)
	_, offset := local.Zone()
	return fmt.Sprintf("🕐 %s (%s, UTC%+d)", local.Format(ClockLayout), location.String(), offset/3600)
}
