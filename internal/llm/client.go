package llm

import (
	"context"
	"errors"
	"time"

	"kipped/internal/database"
)

var ErrMissingAPIKey = errors.New("api key is not configured")

type NoteLine struct {
	Date    time.Time
	Content string
}

// Request describes one period to summarize.
type Request struct {
	Period database.Period
	Label  string
	Notes  []NoteLine
}

// Summarizer turns a set of notes into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (database.Summary, error)
	Provider() string
}
