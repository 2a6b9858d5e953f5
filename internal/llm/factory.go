package llm

import (
	"fmt"
	"strings"

	"kipped/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Factory creates summarizers. Keys passed to Create override the ones from config.
type Factory struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:     cfg.LLM.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.LLM.OpenAIBaseURL,
		OpenAIModel:      cfg.LLM.OpenAIModel,
		AnthropicAPIKey:  cfg.LLM.AnthropicAPIKey,
		AnthropicBaseURL: cfg.LLM.AnthropicBaseURL,
		AnthropicModel:   cfg.LLM.AnthropicModel,
	}
}

func (f *Factory) Create(provider, apiKey string) (Summarizer, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		key := firstNonEmpty(apiKey, f.OpenAIAPIKey)
		if key == "" {
			return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
		}
		return NewOpenAI(key, f.OpenAIBaseURL, f.OpenAIModel), nil
	case ProviderAnthropic:
		key := firstNonEmpty(apiKey, f.AnthropicAPIKey)
		if key == "" {
			return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
		}
		return NewAnthropic(key, f.AnthropicBaseURL, f.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

func IsProvider(name string) bool {
	switch strings.ToLower(name) {
	case ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
