package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kipped/internal/database"
)

// 2026-10-17 is a Saturday.
var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestKV(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "kipped.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewRepository(db)
}

// brokenKV fails every write and reports every key as absent.
type brokenKV struct{ writes int }

func (b *brokenKV) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (b *brokenKV) Set(string, []byte) error {
	b.writes++
	return errors.New("disk full")
}
func (b *brokenKV) Delete(string) error           { return errors.New("disk full") }
func (b *brokenKV) Keys(string) ([]string, error) { return nil, nil }

func day(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}
