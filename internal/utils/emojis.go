package utils

import "strings"

var accentColors = map[string]string{
	"sunflower": "#F4B400",
	"coral":     "#FF6F61",
	"sage":      "#87A96B",
	"ocean":     "#2E86AB",
	"lavender":  "#9B89B3",
	"rose":      "#E8798C",
	"graphite":  "#4A4A4A",
}

// AccentColorHex returns the hex value of a named accent color.
func AccentColorHex(name string) (string, bool) {
	hex, ok := accentColors[strings.ToLower(name)]
	return hex, ok
}

func AccentColorNames() []string {
	return []string{"sunflower", "coral", "sage", "ocean", "lavender", "rose", "graphite"}
}

func GetMoodEmoji(mood string) string {
	switch strings.ToLower(mood) {
	case "joyful", "happy", "excited":
		return "😄"
	case "grateful", "thankful":
		return "🙏"
	case "calm", "peaceful", "relaxed":
		return "😌"
	case "proud", "accomplished":
		return "💪"
	case "loved", "connected":
		return "💛"
	case "hopeful", "optimistic":
		return "🌱"
	case "reflective", "thoughtful":
		return "💭"
	default:
		return "✨"
	}
}

func GetPeriodEmoji(period string) string {
	switch period {
	case "weekly":
		return "🗓"
	case "monthly":
		return "📅"
	case "yearly":
		return "🎆"
	default:
		return "📌"
	}
}
