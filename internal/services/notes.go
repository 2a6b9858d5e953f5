package services

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"kipped/internal/database"
	"kipped/internal/utils"
)

// NoteService holds every note in memory and writes the whole list back to
// storage after each change. At most one note exists per calendar day.
// Persistence failures are logged and never returned.
type NoteService struct {
	mu    sync.RWMutex
	kv    database.KeyValue
	now   func() time.Time
	notes []database.Note
}

func NewNoteService(kv database.KeyValue, now func() time.Time) *NoteService {
	ns := &NoteService{kv: kv, now: now}
	ns.load()
	return ns
}

func (ns *NoteService) load() {
	var notes []database.Note
	if _, err := database.GetJSON(ns.kv, database.NotesKey, &notes); err != nil {
		log.Printf("⚠️ Failed to load notes, starting empty: %v", err)
		notes = nil
	}
	for i := range notes {
		notes[i].Date = utils.StartOfDay(notes[i].Date)
	}
	ns.notes = notes
	log.Printf("📓 Loaded %d notes", len(notes))
}

func (ns *NoteService) saveLocked() {
	if err := database.SetJSON(ns.kv, database.NotesKey, ns.notes); err != nil {
		log.Printf("⚠️ Failed to save notes: %v", err)
	}
}

func (ns *NoteService) indexByID(id string) int {
	_, idx, ok := lo.FindIndexOf(ns.notes, func(n database.Note) bool { return n.ID == id })
	if !ok {
		return -1
	}
	return idx
}

func (ns *NoteService) indexByDay(day time.Time) int {
	_, idx, ok := lo.FindIndexOf(ns.notes, func(n database.Note) bool { return utils.SameDay(n.Date, day) })
	if !ok {
		return -1
	}
	return idx
}

// AddNote stores content for day. A note already on that day is replaced in
// place and keeps its ID.
func (ns *NoteService) AddNote(content string, day time.Time) database.Note {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	day = utils.StartOfDay(day)
	if idx := ns.indexByDay(day); idx >= 0 {
		ns.notes[idx].Content = content
		ns.saveLocked()
		return ns.notes[idx]
	}

	note := database.Note{
		ID:        uuid.New().String(),
		Content:   content,
		Date:      day,
		CreatedAt: ns.now(),
	}
	ns.notes = append(ns.notes, note)
	ns.saveLocked()
	return note
}

func (ns *NoteService) UpdateNote(id, content string) (database.Note, bool) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	idx := ns.indexByID(id)
	if idx < 0 {
		return database.Note{}, false
	}
	ns.notes[idx].Content = content
	ns.saveLocked()
	return ns.notes[idx], true
}

// UpdateNoteWithDate moves a note to day, dropping whichever other note
// already occupied it.
func (ns *NoteService) UpdateNoteWithDate(id, content string, day time.Time) (database.Note, bool) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.indexByID(id) < 0 {
		return database.Note{}, false
	}

	day = utils.StartOfDay(day)
	ns.notes = lo.Reject(ns.notes, func(n database.Note, _ int) bool {
		return n.ID != id && utils.SameDay(n.Date, day)
	})

	idx := ns.indexByID(id)
	ns.notes[idx].Content = content
	ns.notes[idx].Date = day
	ns.saveLocked()
	return ns.notes[idx], true
}

func (ns *NoteService) DeleteNote(id string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	idx := ns.indexByID(id)
	if idx < 0 {
		return false
	}
	ns.notes = append(ns.notes[:idx], ns.notes[idx+1:]...)
	ns.saveLocked()
	return true
}

func (ns *NoteService) NoteForDate(day time.Time) (database.Note, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	if idx := ns.indexByDay(day); idx >= 0 {
		return ns.notes[idx], true
	}
	return database.Note{}, false
}

func (ns *NoteService) HasNoteForDate(day time.Time) bool {
	_, ok := ns.NoteForDate(day)
	return ok
}

// Lookup finds a note by full ID or by a unique ID prefix.
func (ns *NoteService) Lookup(idOrPrefix string) (database.Note, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	matches := lo.Filter(ns.notes, func(n database.Note, _ int) bool {
		return n.ID == idOrPrefix || strings.HasPrefix(n.ID, idOrPrefix)
	})
	if len(matches) != 1 || idOrPrefix == "" {
		return database.Note{}, false
	}
	return matches[0], true
}

// Notes returns a copy of all notes, newest day first.
func (ns *NoteService) Notes() []database.Note {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	out := make([]database.Note, len(ns.notes))
	copy(out, ns.notes)
	sortNotesDesc(out)
	return out
}

// NotesInRange returns notes with from <= day < to, oldest first.
func (ns *NoteService) NotesInRange(from, to time.Time) []database.Note {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	out := lo.Filter(ns.notes, func(n database.Note, _ int) bool {
		return !n.Date.Before(from) && n.Date.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (ns *NoteService) Count() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return len(ns.notes)
}

// NotesByMonth groups notes by calendar month, newest month first.
func (ns *NoteService) NotesByMonth() []database.MonthGroup {
	notes := ns.Notes()

	grouped := lo.GroupBy(notes, func(n database.Note) time.Time { return utils.MonthStart(n.Date) })
	months := lo.Keys(grouped)
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	groups := make([]database.MonthGroup, 0, len(months))
	for _, m := range months {
		groups = append(groups, database.MonthGroup{Month: m, Notes: grouped[m]})
	}
	return groups
}

func (ns *NoteService) daySet() map[string]struct{} {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	days := make(map[string]struct{}, len(ns.notes))
	for _, n := range ns.notes {
		days[utils.FormatDay(n.Date)] = struct{}{}
	}
	return days
}

// CurrentStreak counts consecutive days with a note, walking back from today.
// It is zero when today has no note.
func (ns *NoteService) CurrentStreak() int {
	days := ns.daySet()

	streak := 0
	for day := utils.StartOfDay(ns.now()); ; day = utils.AddDays(day, -1) {
		if _, ok := days[utils.FormatDay(day)]; !ok {
			return streak
		}
		streak++
	}
}

// LongestStreak is the longest run of consecutive days with notes.
func (ns *NoteService) LongestStreak() int {
	days := lo.Keys(ns.daySet())
	sort.Strings(days)

	longest, run := 0, 0
	var prev time.Time
	for i, s := range days {
		day, err := utils.ParseDay(s)
		if err != nil {
			continue
		}
		if i > 0 && utils.AddDays(prev, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = day
	}
	return longest
}

func sortNotesDesc(notes []database.Note) {
	sort.Slice(notes, func(i, j int) bool { return notes[i].Date.After(notes[j].Date) })
}
