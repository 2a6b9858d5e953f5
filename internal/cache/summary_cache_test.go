package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kipped/internal/database"
)

func TestKey_OrderIndependent(t *testing.T) {
	anchor := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	a := Key(database.Weekly, anchor, []string{"c", "a", "b"})
	b := Key(database.Weekly, anchor, []string{"b", "c", "a"})
	assert.Equal(t, a, b)
	assert.Equal(t, "weekly_2026-10-12_"+NoteSetHash([]string{"a", "b", "c"}), a)
	assert.Len(t, NoteSetHash(nil), hashLength)
}

func TestKey_NormalizesAnchorToPeriodStart(t *testing.T) {
	ids := []string{"a"}
	wednesday := time.Date(2026, 10, 14, 18, 45, 0, 0, time.UTC)
	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, Key(database.Weekly, wednesday, ids), Key(database.Weekly, sunday, ids))
	assert.Equal(t, "weekly_2026-10-12_"+NoteSetHash(ids), Key(database.Weekly, sunday, ids))
	assert.Equal(t, "monthly_2026-10-01_"+NoteSetHash(ids), Key(database.Monthly, wednesday, ids))
	assert.Equal(t, "yearly_2026-01-01_"+NoteSetHash(ids), Key(database.Yearly, wednesday, ids))
}

func TestKey_Distinguishes(t *testing.T) {
	anchor := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	base := Key(database.Weekly, anchor, []string{"a", "b"})

	assert.NotEqual(t, base, Key(database.Monthly, anchor, []string{"a", "b"}))
	assert.NotEqual(t, base, Key(database.Weekly, anchor.AddDate(0, 0, 7), []string{"a", "b"}))
	assert.NotEqual(t, base, Key(database.Weekly, anchor, []string{"a", "b", "c"}))
}

func TestKey_DoesNotMutateInput(t *testing.T) {
	ids := []string{"z", "y", "x"}
	Key(database.Yearly, time.Now(), ids)
	assert.Equal(t, []string{"z", "y", "x"}, ids)
}

func TestFileCache_StoreLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "summaries")
	c := NewFileCache(dir)

	_, ok := c.Load("weekly_2026-10-12_abc")
	assert.False(t, ok)

	color := "#F4B400"
	want := database.Summary{Title: "Bright week", Summary: "Lots of sun.", Themes: []string{"sun"}, Mood: "joyful", Color: &color}
	require.NoError(t, c.Store("weekly_2026-10-12_abc", want))

	got, ok := c.Load("weekly_2026-10-12_abc")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, c.Len())

	want.Title = "Brighter week"
	require.NoError(t, c.Store("weekly_2026-10-12_abc", want))
	got, _ = c.Load("weekly_2026-10-12_abc")
	assert.Equal(t, "Brighter week", got.Title)
	assert.Equal(t, 1, c.Len())
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monthly_2026-10-01_x.json"), []byte("{nope"), 0o644))

	_, ok := c.Load("monthly_2026-10-01_x")
	assert.False(t, ok)
}
