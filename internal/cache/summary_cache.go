// Package cache keeps summarizer results on disk so the same note set is never
// sent to a provider twice. Entries are advisory: a missing, unreadable or
// corrupt file is a miss, and nothing is ever evicted.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kipped/internal/database"
	"kipped/internal/utils"
)

const hashLength = 16

// Key builds "<period>_<YYYY-MM-DD>_<hash>". The date is the start of the
// period containing anchor, so any day inside the period yields the same key.
// The hash covers the sorted note IDs.
func Key(period database.Period, anchor time.Time, noteIDs []string) string {
	return fmt.Sprintf("%s_%s_%s", period, utils.FormatDay(period.Start(anchor)), NoteSetHash(noteIDs))
}

// NoteSetHash is an order-independent digest of a set of note IDs.
func NoteSetHash(noteIDs []string) string {
	ids := append([]string(nil), noteIDs...)
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(h.Sum(nil))[:hashLength]
}

type FileCache struct {
	dir string
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Load returns the cached summary for key.
func (c *FileCache) Load(key string) (database.Summary, bool) {
	var summary database.Summary

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Summary cache read failed for %s: %v", key, err)
		}
		return summary, false
	}

	if err := json.Unmarshal(data, &summary); err != nil {
		log.Printf("⚠️ Summary cache entry %s is corrupt: %v", key, err)
		return database.Summary{}, false
	}

	return summary, true
}

// Store writes summary under key, replacing any previous entry. The file is
// written to a temp name and renamed so readers never see a partial entry.
func (c *FileCache) Store(key string, summary database.Summary) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

// Len counts cached entries.
func (c *FileCache) Len() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}
