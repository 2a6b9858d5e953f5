package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kipped/internal/cache"
	"kipped/internal/database"
	"kipped/internal/llm"
)

type stubSummarizer struct {
	provider string
	calls    int
	last     llm.Request
	summary  database.Summary
	err      error
}

func (s *stubSummarizer) Provider() string { return s.provider }

func (s *stubSummarizer) Summarize(_ context.Context, req llm.Request) (database.Summary, error) {
	s.calls++
	s.last = req
	return s.summary, s.err
}

type stubFactory struct {
	summarizers map[string]*stubSummarizer
	gotProvider string
	gotKey      string
}

func (f *stubFactory) Create(provider, apiKey string) (llm.Summarizer, error) {
	f.gotProvider, f.gotKey = provider, apiKey
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, llm.ErrMissingAPIKey)
	}
	s, ok := f.summarizers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	return s, nil
}

type summaryFixture struct {
	svc     *SummaryService
	notes   *NoteService
	prefs   *PreferencesService
	cache   *cache.FileCache
	openai  *stubSummarizer
	claude  *stubSummarizer
	factory *stubFactory
}

func newSummaryFixture(t *testing.T) *summaryFixture {
	t.Helper()
	kv := newTestKV(t)
	clock := newFakeClock(testNow)

	f := &summaryFixture{
		notes: NewNoteService(kv, clock.Now),
		prefs: NewPreferencesService(kv, DefaultPreferences()),
		cache: cache.NewFileCache(t.TempDir()),
		openai: &stubSummarizer{provider: llm.ProviderOpenAI, summary: database.Summary{
			Title: "Sunlit Days", Summary: "A week of small wins.", Themes: []string{"walks"}, Mood: "calm",
		}},
		claude: &stubSummarizer{provider: llm.ProviderAnthropic, summary: database.Summary{
			Title: "Warm Evenings", Summary: "Time with friends.", Themes: []string{"friends"}, Mood: "loved",
		}},
	}
	f.factory = &stubFactory{summarizers: map[string]*stubSummarizer{
		llm.ProviderOpenAI:    f.openai,
		llm.ProviderAnthropic: f.claude,
	}}
	f.svc = NewSummaryService(f.notes, f.prefs, f.factory, f.cache, llm.ProviderOpenAI)
	require.NoError(t, f.prefs.Set(PrefOpenAIKey, "sk-test"))
	return f
}

func TestSummarize_MissThenHit(t *testing.T) {
	f := newSummaryFixture(t)
	f.notes.AddNote("long walk by the river", day("2026-10-13"))
	f.notes.AddNote("finished the book", day("2026-10-15"))

	first := f.svc.Summarize(context.Background(), database.Weekly, testNow)
	assert.Equal(t, llm.ProviderOpenAI, first.Source)
	assert.Equal(t, "Sunlit Days", first.Summary.Title)
	assert.Equal(t, 2, first.NoteCount)
	assert.Equal(t, "Oct 12 – Oct 18, 2026", first.Label)
	assert.Equal(t, 1, f.openai.calls)
	assert.Equal(t, "sk-test", f.factory.gotKey)

	require.Len(t, f.openai.last.Notes, 2)
	assert.Equal(t, "long walk by the river", f.openai.last.Notes[0].Content)
	assert.Equal(t, database.Weekly, f.openai.last.Period)

	second := f.svc.Summarize(context.Background(), database.Weekly, day("2026-10-12"))
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 1, f.openai.calls)
	assert.Equal(t, 1, f.cache.Len())
}

func TestSummarize_NewNoteChangesKey(t *testing.T) {
	f := newSummaryFixture(t)
	f.notes.AddNote("one", day("2026-10-13"))

	first := f.svc.Summarize(context.Background(), database.Monthly, testNow)
	f.notes.AddNote("two", day("2026-10-14"))
	second := f.svc.Summarize(context.Background(), database.Monthly, testNow)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, llm.ProviderOpenAI, second.Source)
	assert.Equal(t, 2, f.openai.calls)
}

func TestSummarize_ProviderErrorFallsBack(t *testing.T) {
	f := newSummaryFixture(t)
	f.openai.err = errors.New("status 500")
	f.notes.AddNote("quiet tea", day("2026-10-13"))

	res := f.svc.Summarize(context.Background(), database.Weekly, testNow)
	assert.Equal(t, SourceFallback, res.Source)
	assert.NotEmpty(t, res.Summary.Title)
	assert.NotEmpty(t, res.Summary.Summary)
	assert.Equal(t, 0, f.cache.Len())

	f.openai.err = nil
	res = f.svc.Summarize(context.Background(), database.Weekly, testNow)
	assert.Equal(t, llm.ProviderOpenAI, res.Source)
	assert.Equal(t, 2, f.openai.calls)
}

func TestSummarize_MissingKeyFallsBack(t *testing.T) {
	f := newSummaryFixture(t)
	require.NoError(t, f.prefs.Set(PrefProvider, llm.ProviderAnthropic))
	f.notes.AddNote("x", day("2026-10-13"))

	res := f.svc.Summarize(context.Background(), database.Weekly, testNow)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, llm.ProviderAnthropic, f.factory.gotProvider)
	assert.Equal(t, 0, f.claude.calls)
}

func TestSummarize_PreferredProvider(t *testing.T) {
	f := newSummaryFixture(t)
	require.NoError(t, f.prefs.Set(PrefProvider, llm.ProviderAnthropic))
	require.NoError(t, f.prefs.Set(PrefAnthropicKey, "sk-ant"))
	f.notes.AddNote("dinner with friends", day("2026-02-13"))

	res := f.svc.Summarize(context.Background(), database.Yearly, testNow)
	assert.Equal(t, llm.ProviderAnthropic, res.Source)
	assert.Equal(t, "Warm Evenings", res.Summary.Title)
	assert.Equal(t, "sk-ant", f.factory.gotKey)
	assert.Equal(t, 0, f.openai.calls)
}

func TestSummarize_EmptyPeriodSkipsProvider(t *testing.T) {
	f := newSummaryFixture(t)

	res := f.svc.Summarize(context.Background(), database.Weekly, testNow)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 0, res.NoteCount)
	assert.Equal(t, "A Quiet Week", res.Summary.Title)
	assert.Equal(t, 0, f.openai.calls)
}

func TestFallbackSummary_NeverEmpty(t *testing.T) {
	notes := []database.Note{
		{ID: "1", Content: "Laughed so much at the park with friends", Date: day("2026-10-13")},
		{ID: "2", Content: "Park picnic, so much fun", Date: day("2026-10-14")},
	}

	for _, period := range []database.Period{database.Weekly, database.Monthly, database.Yearly, database.Period("")} {
		for _, label := range []string{"", "October 2026"} {
			for _, ns := range [][]database.Note{nil, notes} {
				s := FallbackSummary(period, label, ns)
				assert.NotEmpty(t, s.Title)
				assert.NotEmpty(t, s.Summary)
				assert.NotEmpty(t, s.Mood)
				assert.NotNil(t, s.Themes)
			}
		}
	}
}

func TestFallbackSummary_Content(t *testing.T) {
	notes := []database.Note{
		{ID: "1", Content: "Laughed at the park with friends", Date: day("2026-10-13")},
		{ID: "2", Content: "Park picnic was fun", Date: day("2026-10-14")},
	}

	s := FallbackSummary(database.Monthly, "October 2026", notes)
	assert.Equal(t, "Your Month in Review", s.Title)
	assert.Contains(t, s.Summary, "2 positive notes")
	assert.Contains(t, s.Summary, "Park picnic was fun")
	assert.Equal(t, "park", s.Themes[0])
	assert.Equal(t, "joyful", s.Mood)
	assert.Nil(t, s.Color)

	quiet := FallbackSummary(database.Yearly, "2026", nil)
	assert.Equal(t, "A Quiet Year", quiet.Title)
	assert.Empty(t, quiet.Themes)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	long := truncate("abcdefghij", 5)
	assert.Equal(t, "abcd…", long)
	assert.Equal(t, 5, len([]rune(long)))
}
