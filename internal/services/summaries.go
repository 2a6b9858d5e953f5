package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"

	"kipped/internal/cache"
	"kipped/internal/database"
	"kipped/internal/llm"
)

const SourceCache, SourceFallback = "cache", "fallback"

type SummarizerFactory interface {
	Create(provider, apiKey string) (llm.Summarizer, error)
}

type SummaryCache interface {
	Load(key string) (database.Summary, bool)
	Store(key string, summary database.Summary) error
}

type SummaryResult struct {
	Summary   database.Summary
	Source    string
	Key       string
	Label     string
	NoteCount int
}

type SummaryService struct {
	notes           *NoteService
	prefs           *PreferencesService
	factory         SummarizerFactory
	cache           SummaryCache
	defaultProvider string
}

func NewSummaryService(notes *NoteService, prefs *PreferencesService, factory SummarizerFactory, cache SummaryCache, defaultProvider string) *SummaryService {
	return &SummaryService{
		notes:           notes,
		prefs:           prefs,
		factory:         factory,
		cache:           cache,
		defaultProvider: defaultProvider,
	}
}

// Provider is the preferred provider, or the configured default when none is set.
func (ss *SummaryService) Provider() string {
	if p := ss.prefs.Get().LLMProvider; p != "" {
		return p
	}
	return ss.defaultProvider
}

// Summarize returns a summary for the period containing anchor. It never
// fails: cache hits are returned as is, provider results are cached, and any
// failure yields the local fallback, which is not cached.
func (ss *SummaryService) Summarize(ctx context.Context, period database.Period, anchor time.Time) SummaryResult {
	start, end := PeriodRange(period, anchor)
	notes := ss.notes.NotesInRange(start, end)
	ids := lo.Map(notes, func(n database.Note, _ int) string { return n.ID })

	result := SummaryResult{
		Key:       cache.Key(period, start, ids),
		Label:     PeriodLabel(period, start),
		NoteCount: len(notes),
	}

	if cached, ok := ss.cache.Load(result.Key); ok {
		log.Printf("📦 Summary cache hit: %s", result.Key)
		result.Summary, result.Source = cached, SourceCache
		return result
	}

	fallback := func(reason error) SummaryResult {
		log.Printf("⚠️ Using fallback summary for %s: %v", result.Key, reason)
		result.Summary, result.Source = FallbackSummary(period, result.Label, notes), SourceFallback
		return result
	}

	if len(notes) == 0 {
		return fallback(fmt.Errorf("no notes in period"))
	}

	provider := ss.Provider()
	summarizer, err := ss.factory.Create(provider, ss.prefs.APIKey(provider))
	if err != nil {
		return fallback(err)
	}

	summary, err := summarizer.Summarize(ctx, llm.Request{
		Period: period,
		Label:  result.Label,
		Notes: lo.Map(notes, func(n database.Note, _ int) llm.NoteLine {
			return llm.NoteLine{Date: n.Date, Content: n.Content}
		}),
	})
	if err != nil {
		return fallback(err)
	}

	if err := ss.cache.Store(result.Key, summary); err != nil {
		log.Printf("⚠️ Failed to cache summary %s: %v", result.Key, err)
	}
	log.Printf("✅ Summary generated by %s: %s", summarizer.Provider(), result.Key)

	result.Summary, result.Source = summary, summarizer.Provider()
	return result
}

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true, "before": true,
	"being": true, "from": true, "have": true, "into": true, "just": true, "more": true,
	"much": true, "really": true, "some": true, "than": true, "that": true, "their": true,
	"them": true, "then": true, "there": true, "they": true, "this": true, "today": true,
	"very": true, "were": true, "what": true, "when": true, "with": true, "your": true,
	"finally": true, "got": true, "went": true, "made": true,
}

var moodKeywords = []struct {
	mood  string
	words []string
}{
	{"joyful", []string{"fun", "laugh", "happy", "joy", "amazing", "awesome", "great"}},
	{"proud", []string{"finished", "done", "achieved", "won", "passed", "completed", "shipped"}},
	{"loved", []string{"family", "friend", "friends", "hug", "love", "together", "mom", "dad"}},
	{"calm", []string{"walk", "rest", "quiet", "sleep", "read", "relax", "peaceful", "tea"}},
}

// FallbackSummary builds a placeholder summary locally. It never returns an
// empty title or summary, even without notes.
func FallbackSummary(period database.Period, label string, notes []database.Note) database.Summary {
	unit := "Period"
	if name := database.PeriodNames[period]; name != "" {
		unit = strings.ToUpper(name[:1]) + name[1:]
	}
	if strings.TrimSpace(label) == "" {
		label = "this " + strings.ToLower(unit)
	}

	if len(notes) == 0 {
		return database.Summary{
			Title:   fmt.Sprintf("A Quiet %s", unit),
			Summary: fmt.Sprintf("There are no notes for %s yet. One small good thing a day is all it takes.", label),
			Themes:  []string{},
			Mood:    "hopeful",
		}
	}

	plural := "notes"
	if len(notes) == 1 {
		plural = "note"
	}

	latest := lo.MaxBy(notes, func(a, b database.Note) bool { return a.Date.After(b.Date) })
	return database.Summary{
		Title:   fmt.Sprintf("Your %s in Review", unit),
		Summary: fmt.Sprintf("You wrote %d positive %s during %s. Most recently: \"%s\"", len(notes), plural, label, truncate(latest.Content, 80)),
		Themes:  topWords(notes, 3),
		Mood:    guessMood(notes),
	}
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func topWords(notes []database.Note, n int) []string {
	counts := map[string]int{}
	for _, note := range notes {
		for _, w := range words(note.Content) {
			if len([]rune(w)) > 3 && !stopwords[w] {
				counts[w]++
			}
		}
	}

	ranked := lo.Keys(counts)
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func guessMood(notes []database.Note) string {
	seen := map[string]bool{}
	for _, note := range notes {
		for _, w := range words(note.Content) {
			seen[w] = true
		}
	}

	best, bestHits := "grateful", 0
	for _, mk := range moodKeywords {
		hits := lo.CountBy(mk.words, func(w string) bool { return seen[w] })
		if hits > bestHits {
			best, bestHits = mk.mood, hits
		}
	}
	return best
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
