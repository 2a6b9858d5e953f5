package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"kipped/internal/database"
	"kipped/internal/utils"
)

const SystemPrompt = `You are a warm, encouraging journaling companion.
You read a person's short daily positive notes and reflect them back as a gentle summary.
Always answer with a single JSON object and nothing else.`

// BuildPrompt renders the user prompt shared by every provider.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Here are my positive notes for the %s of %s:\n\n", database.PeriodNames[req.Period], req.Label))
	if len(req.Notes) == 0 {
		b.WriteString("(no notes)\n")
	}
	for _, n := range req.Notes {
		b.WriteString(fmt.Sprintf("- %s: %s\n", utils.FormatDay(n.Date), strings.TrimSpace(n.Content)))
	}

	b.WriteString(`
Respond with JSON using exactly these fields:
{
  "title": "a short evocative title, at most 6 words",
  "summary": "one or two sentences in second person",
  "themes": ["up to 3 single-word themes"],
  "mood": "one lowercase word",
  "color": "optional hex color like #F4B400 that matches the mood"
}`)

	return b.String()
}

// ParseSummary decodes a provider reply. Code fences and prose around the
// outermost JSON object are ignored.
func ParseSummary(text string) (database.Summary, error) {
	var summary database.Summary

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return summary, fmt.Errorf("no json object in response")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &summary); err != nil {
		return database.Summary{}, fmt.Errorf("decode summary: %w", err)
	}

	summary.Title = strings.TrimSpace(summary.Title)
	summary.Summary = strings.TrimSpace(summary.Summary)
	summary.Mood = strings.ToLower(strings.TrimSpace(summary.Mood))
	if summary.Title == "" || summary.Summary == "" {
		return database.Summary{}, fmt.Errorf("summary is missing title or text")
	}
	if summary.Themes == nil {
		summary.Themes = []string{}
	}
	if summary.Color != nil && strings.TrimSpace(*summary.Color) == "" {
		summary.Color = nil
	}

	return summary, nil
}
