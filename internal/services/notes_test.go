package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kipped/internal/database"
)

func TestAddNote_ReplacesSameDay(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)

	first := ns.AddNote("sunny walk", day("2026-10-15").Add(8*time.Hour))
	second := ns.AddNote("coffee with Ana", day("2026-10-15").Add(22*time.Hour))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, ns.Count())

	note, ok := ns.NoteForDate(day("2026-10-15"))
	require.True(t, ok)
	assert.Equal(t, "coffee with Ana", note.Content)
	assert.Equal(t, day("2026-10-15"), note.Date)
}

func TestHasNoteForDate_IgnoresTimeOfDay(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	ns.AddNote("a", day("2026-10-10").Add(13*time.Hour))

	assert.True(t, ns.HasNoteForDate(day("2026-10-10")))
	assert.True(t, ns.HasNoteForDate(day("2026-10-10").Add(23*time.Hour+59*time.Minute)))
	assert.False(t, ns.HasNoteForDate(day("2026-10-11")))
	assert.False(t, ns.HasNoteForDate(day("2026-10-09").Add(23*time.Hour)))
}

func TestUpdateNote(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	note := ns.AddNote("draft", day("2026-10-01"))

	updated, ok := ns.UpdateNote(note.ID, "final")
	require.True(t, ok)
	assert.Equal(t, "final", updated.Content)
	assert.Equal(t, note.Date, updated.Date)

	_, ok = ns.UpdateNote("missing", "x")
	assert.False(t, ok)
}

func TestUpdateNoteWithDate_ReplacesOccupant(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	moving := ns.AddNote("moving", day("2026-10-01"))
	occupant := ns.AddNote("occupant", day("2026-10-02"))
	ns.AddNote("bystander", day("2026-10-03"))

	moved, ok := ns.UpdateNoteWithDate(moving.ID, "moved", day("2026-10-02").Add(5*time.Hour))
	require.True(t, ok)
	assert.Equal(t, moving.ID, moved.ID)
	assert.Equal(t, day("2026-10-02"), moved.Date)

	assert.Equal(t, 2, ns.Count())
	assert.False(t, ns.HasNoteForDate(day("2026-10-01")))
	_, found := ns.Lookup(occupant.ID)
	assert.False(t, found)

	got, _ := ns.NoteForDate(day("2026-10-02"))
	assert.Equal(t, "moved", got.Content)

	_, ok = ns.UpdateNoteWithDate("missing", "x", day("2026-10-03"))
	assert.False(t, ok)
	assert.Equal(t, 2, ns.Count())
}

func TestUpdateNoteWithDate_SameDay(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	note := ns.AddNote("one", day("2026-10-01"))

	_, ok := ns.UpdateNoteWithDate(note.ID, "two", day("2026-10-01"))
	require.True(t, ok)
	assert.Equal(t, 1, ns.Count())
}

func TestDeleteNote(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	note := ns.AddNote("bye", day("2026-10-01"))

	assert.True(t, ns.DeleteNote(note.ID))
	assert.False(t, ns.DeleteNote(note.ID))
	assert.Equal(t, 0, ns.Count())
}

func TestCurrentStreak(t *testing.T) {
	clock := newFakeClock(testNow)
	ns := NewNoteService(newTestKV(t), clock.Now)

	ns.AddNote("today", day("2026-10-17"))
	ns.AddNote("yesterday", day("2026-10-16"))
	ns.AddNote("day before", day("2026-10-15"))
	ns.AddNote("after a gap", day("2026-10-13"))
	assert.Equal(t, 3, ns.CurrentStreak())

	clock.Set(testNow.AddDate(0, 0, 1))
	assert.Equal(t, 0, ns.CurrentStreak())
}

func TestCurrentStreak_AcrossMonthBoundary(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
	ns := NewNoteService(newTestKV(t), clock.Now)

	ns.AddNote("a", day("2026-02-27"))
	ns.AddNote("b", day("2026-02-28"))
	ns.AddNote("c", day("2026-03-01"))
	assert.Equal(t, 3, ns.CurrentStreak())
}

func TestLongestStreak(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	assert.Equal(t, 0, ns.LongestStreak())

	for _, d := range []string{"2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02", "2026-02-10", "2026-10-17"} {
		ns.AddNote(d, day(d))
	}
	assert.Equal(t, 4, ns.LongestStreak())
}

func TestNotesByMonth(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	ns.AddNote("sep", day("2026-09-30"))
	ns.AddNote("oct a", day("2026-10-01"))
	ns.AddNote("oct b", day("2026-10-15"))
	ns.AddNote("last year", day("2025-10-05"))

	groups := ns.NotesByMonth()
	require.Len(t, groups, 3)
	assert.Equal(t, day("2026-10-01"), groups[0].Month)
	assert.Equal(t, []string{"oct b", "oct a"}, []string{groups[0].Notes[0].Content, groups[0].Notes[1].Content})
	assert.Equal(t, day("2026-09-01"), groups[1].Month)
	assert.Equal(t, day("2025-10-01"), groups[2].Month)
}

func TestNotesInRange(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	ns.AddNote("in 2", day("2026-10-14"))
	ns.AddNote("in 1", day("2026-10-12"))
	ns.AddNote("out", day("2026-10-19"))

	got := ns.NotesInRange(day("2026-10-12"), day("2026-10-19"))
	require.Len(t, got, 2)
	assert.Equal(t, "in 1", got[0].Content)
	assert.Equal(t, "in 2", got[1].Content)
}

func TestLookup_Prefix(t *testing.T) {
	ns := NewNoteService(newTestKV(t), newFakeClock(testNow).Now)
	note := ns.AddNote("x", day("2026-10-01"))

	got, ok := ns.Lookup(note.ID[:8])
	require.True(t, ok)
	assert.Equal(t, note.ID, got.ID)

	_, ok = ns.Lookup("")
	assert.False(t, ok)
}

func TestNotes_PersistAcrossReload(t *testing.T) {
	kv := newTestKV(t)
	clock := newFakeClock(testNow)

	ns := NewNoteService(kv, clock.Now)
	note := ns.AddNote("kept", day("2026-10-01"))
	ns.AddNote("gone", day("2026-10-02"))
	ns.DeleteNote(ns.Notes()[0].ID)

	reloaded := NewNoteService(kv, clock.Now)
	require.Equal(t, 1, reloaded.Count())
	got, ok := reloaded.NoteForDate(day("2026-10-01"))
	require.True(t, ok)
	assert.Equal(t, note.ID, got.ID)
}

func TestNotes_CorruptStorageStartsEmpty(t *testing.T) {
	kv := newTestKV(t)
	require.NoError(t, kv.Set(database.NotesKey, []byte("not json")))

	ns := NewNoteService(kv, newFakeClock(testNow).Now)
	assert.Equal(t, 0, ns.Count())
}

func TestNotes_SaveFailureIsSilent(t *testing.T) {
	kv := &brokenKV{}
	ns := NewNoteService(kv, newFakeClock(testNow).Now)

	note := ns.AddNote("still here", day("2026-10-17"))
	assert.True(t, ns.HasNoteForDate(day("2026-10-17")))
	assert.Equal(t, note.ID, ns.Notes()[0].ID)
	assert.Equal(t, 1, kv.writes)
}
