package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"kipped/internal/database"
	"kipped/internal/utils"
)

// PeriodRange returns the bounds of the period containing anchor. end is exclusive.
func PeriodRange(period database.Period, anchor time.Time) (start, end time.Time) {
	start = period.Start(anchor)
	switch period {
	case database.Monthly:
		end = start.AddDate(0, 1, 0)
	case database.Yearly:
		end = start.AddDate(1, 0, 0)
	default:
		end = utils.AddDays(start, 7)
	}
	return start, end
}

func PeriodLabel(period database.Period, anchor time.Time) string {
	start, end := PeriodRange(period, anchor)
	switch period {
	case database.Monthly:
		return start.Format("January 2006")
	case database.Yearly:
		return start.Format("2006")
	default:
		last := utils.AddDays(end, -1)
		return fmt.Sprintf("%s – %s", start.Format("Jan 2"), last.Format("Jan 2, 2006"))
	}
}

type AnalyticsService struct {
	notes *NoteService
	now   func() time.Time
}

func NewAnalyticsService(notes *NoteService, now func() time.Time) *AnalyticsService {
	return &AnalyticsService{
		notes: notes,
		now:   now,
	}
}

// YearGrid has one cell per day of year.
func (as *AnalyticsService) YearGrid(year int) database.YearGrid {
	days := as.notes.daySet()
	today := utils.StartOfDay(as.now())

	grid := database.YearGrid{Year: year}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, utils.Location())
	for day := start; day.Year() == year; day = utils.AddDays(day, 1) {
		_, has := days[utils.FormatDay(day)]
		grid.Days = append(grid.Days, database.DayCell{Date: day, HasNote: has, IsToday: day.Equal(today)})
		if has {
			grid.Count++
		}
	}
	return grid
}

// MonthGrid lays the month out in Monday-first weeks padded with blank cells.
func (as *AnalyticsService) MonthGrid(year int, month time.Month) database.MonthGrid {
	days := as.notes.daySet()
	today := utils.StartOfDay(as.now())
	first := time.Date(year, month, 1, 0, 0, 0, 0, utils.Location())

	cells := make([]database.DayCell, (int(first.Weekday())+6)%7)
	for day := first; day.Month() == month; day = utils.AddDays(day, 1) {
		_, has := days[utils.FormatDay(day)]
		cells = append(cells, database.DayCell{Date: day, HasNote: has, IsToday: day.Equal(today)})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, database.DayCell{})
	}

	return database.MonthGrid{Month: first, Weeks: lo.Chunk(cells, 7)}
}

// Memories returns postcards for the most recent periods that have notes.
func (as *AnalyticsService) Memories(period database.Period, limit int) []database.Memory {
	notes := as.notes.Notes()
	grouped := lo.GroupBy(notes, func(n database.Note) string {
		start, _ := PeriodRange(period, n.Date)
		return utils.FormatDay(start)
	})

	keys := lo.Keys(grouped)
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	memories := make([]database.Memory, 0, len(keys))
	for _, k := range keys {
		group := grouped[k]
		start, end := PeriodRange(period, group[0].Date)
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })
		memories = append(memories, database.Memory{
			Period: period,
			Start:  start,
			End:    end,
			Label:  PeriodLabel(period, start),
			Notes:  group,
		})
	}
	return memories
}

func (as *AnalyticsService) Stats() database.JournalStats {
	now := as.now()
	monthStart, monthEnd := PeriodRange(database.Monthly, now)
	yearStart, yearEnd := PeriodRange(database.Yearly, now)

	return database.JournalStats{
		TotalNotes:     as.notes.Count(),
		CurrentStreak:  as.notes.CurrentStreak(),
		LongestStreak:  as.notes.LongestStreak(),
		NotesThisMonth: len(as.notes.NotesInRange(monthStart, monthEnd)),
		NotesThisYear:  len(as.notes.NotesInRange(yearStart, yearEnd)),
	}
}
