package advisor

import "strings"

const bulletCutset = "-•* \t\r"

// ParseLines splits a free-text response into list items: one per non-blank
// line, with bullet markers and whitespace trimmed from both ends.
func ParseLines(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		item := strings.Trim(line, bulletCutset)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func truncate(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
