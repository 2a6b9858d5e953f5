package services

import (
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"kipped/internal/database"
	"kipped/internal/llm"
	"kipped/internal/utils"
)

var (
	Fonts    = []string{"default", "rounded", "serif", "mono"}
	AppIcons = []string{"default", "sunrise", "midnight", "paper"}
	Themes   = []database.Theme{database.ThemeSystem, database.ThemeLight, database.ThemeDark}
)

// Preference names accepted by Set, each stored under database.PrefPrefix+name.
const (
	PrefTheme         = "theme"
	PrefAccentColor   = "accent"
	PrefFont          = "font"
	PrefAppIcon       = "icon"
	PrefHaptics       = "haptics"
	PrefNotifications = "notifications"
	PrefReminderTime  = "reminder"
	PrefProvider      = "provider"
	PrefOpenAIKey     = "openai_key"
	PrefAnthropicKey  = "anthropic_key"
)

// PreferencesService stores user settings as individual scalars.
type PreferencesService struct {
	mu       sync.RWMutex
	kv       database.KeyValue
	prefs    database.Preferences
	defaults database.Preferences
}

func DefaultPreferences() database.Preferences {
	return database.Preferences{
		Theme:                database.ThemeSystem,
		AccentColor:          "sunflower",
		Font:                 "default",
		AppIcon:              "default",
		HapticsEnabled:       true,
		NotificationsEnabled: true,
		DailyReminderTime:    "20:00",
	}
}

func NewPreferencesService(kv database.KeyValue, defaults database.Preferences) *PreferencesService {
	ps := &PreferencesService{kv: kv, prefs: defaults, defaults: defaults}
	ps.load()
	return ps
}

func (ps *PreferencesService) fields() map[string]any {
	return preferenceFields(&ps.prefs)
}

func preferenceFields(p *database.Preferences) map[string]any {
	return map[string]any{
		PrefTheme:         &p.Theme,
		PrefAccentColor:   &p.AccentColor,
		PrefFont:          &p.Font,
		PrefAppIcon:       &p.AppIcon,
		PrefHaptics:       &p.HapticsEnabled,
		PrefNotifications: &p.NotificationsEnabled,
		PrefReminderTime:  &p.DailyReminderTime,
		PrefProvider:      &p.LLMProvider,
		PrefOpenAIKey:     &p.OpenAIAPIKey,
		PrefAnthropicKey:  &p.AnthropicAPIKey,
	}
}

func (ps *PreferencesService) load() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	keys, err := ps.kv.Keys(database.PrefPrefix)
	if err != nil {
		log.Printf("⚠️ Failed to list preferences, using defaults: %v", err)
		return
	}

	fields := ps.fields()
	for _, key := range keys {
		name := strings.TrimPrefix(key, database.PrefPrefix)
		dst, ok := fields[name]
		if !ok {
			log.Printf("⚠️ Ignoring unknown preference %s", name)
			continue
		}
		if _, err := database.GetJSON(ps.kv, key, dst); err != nil {
			log.Printf("⚠️ Failed to load preference %s: %v", name, err)
		}
	}
}

func (ps *PreferencesService) Get() database.Preferences {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.prefs
}

// Set validates value and stores it under name. Validation errors are
// returned; storage errors are only logged.
func (ps *PreferencesService) Set(name, value string) error {
	value = strings.TrimSpace(value)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := &ps.prefs
	switch name {
	case PrefTheme:
		theme := database.Theme(strings.ToLower(value))
		if !lo.Contains(Themes, theme) {
			return fmt.Errorf("theme must be one of %v", Themes)
		}
		p.Theme = theme
	case PrefAccentColor:
		if _, ok := utils.AccentColorHex(value); !ok {
			return fmt.Errorf("accent must be one of %s", strings.Join(utils.AccentColorNames(), ", "))
		}
		p.AccentColor = strings.ToLower(value)
	case PrefFont:
		if !lo.Contains(Fonts, strings.ToLower(value)) {
			return fmt.Errorf("font must be one of %s", strings.Join(Fonts, ", "))
		}
		p.Font = strings.ToLower(value)
	case PrefAppIcon:
		if !lo.Contains(AppIcons, strings.ToLower(value)) {
			return fmt.Errorf("icon must be one of %s", strings.Join(AppIcons, ", "))
		}
		p.AppIcon = strings.ToLower(value)
	case PrefHaptics, PrefNotifications:
		on, err := parseSwitch(value)
		if err != nil {
			return err
		}
		if name == PrefHaptics {
			p.HapticsEnabled = on
		} else {
			p.NotificationsEnabled = on
		}
	case PrefReminderTime:
		if !utils.IsClock(value) {
			return fmt.Errorf("reminder time must be HH:MM")
		}
		p.DailyReminderTime = value
	case PrefProvider:
		if !llm.IsProvider(value) {
			return fmt.Errorf("provider must be %s or %s", llm.ProviderOpenAI, llm.ProviderAnthropic)
		}
		p.LLMProvider = strings.ToLower(value)
	case PrefOpenAIKey:
		p.OpenAIAPIKey = value
	case PrefAnthropicKey:
		p.AnthropicAPIKey = value
	default:
		return fmt.Errorf("unknown setting %q", name)
	}

	ps.saveLocked(name)
	return nil
}

// Reset restores name to its default and removes the stored value.
func (ps *PreferencesService) Reset(name string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	dst, ok := ps.fields()[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	def := preferenceFields(&ps.defaults)[name]
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(def).Elem())

	if err := ps.kv.Delete(database.PrefPrefix + name); err != nil {
		log.Printf("⚠️ Failed to reset preference %s: %v", name, err)
	}
	return nil
}

func (ps *PreferencesService) saveLocked(name string) {
	dst := ps.fields()[name]
	if err := database.SetJSON(ps.kv, database.PrefPrefix+name, dst); err != nil {
		log.Printf("⚠️ Failed to save preference %s: %v", name, err)
	}
}

// APIKey returns the stored key for provider, if any.
func (ps *PreferencesService) APIKey(provider string) string {
	p := ps.Get()
	switch strings.ToLower(provider) {
	case llm.ProviderOpenAI:
		return p.OpenAIAPIKey
	case llm.ProviderAnthropic:
		return p.AnthropicAPIKey
	}
	return ""
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
	return on, nil
}
