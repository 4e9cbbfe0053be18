package skills

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"career-booster/internal/ner"
	"career-booster/internal/shared/telemetry"
)

// DefaultChunkRunes bounds each recognizer input. Token-classification
// models truncate long inputs, so the text is sent in pieces.
const DefaultChunkRunes = 1500

// Extractor turns resume text into a set of skill strings.
type Extractor struct {
	recognizer ner.Recognizer
	chunkRunes int
}

// NewExtractor builds an Extractor on top of recognizer.
func NewExtractor(recognizer ner.Recognizer) *Extractor {
	if recognizer == nil {
		recognizer = ner.PlaceholderRecognizer{}
	}
	return &Extractor{recognizer: recognizer, chunkRunes: DefaultChunkRunes}
}

// Extract returns the deduplicated MISC entities in text. Order is not meaningful.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	seen := make(map[string]struct{})
	for i, chunk := range Chunk(text, e.chunkRunes) {
		entities, err := e.recognizer.Recognize(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("recognize chunk %d: %w", i, err)
		}
		for _, ent := range entities {
			if ent.Group != ner.GroupMisc {
				continue
			}
			word := normalize(ent.Word)
			if word == "" {
				continue
			}
			seen[word] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for word := range seen {
		out = append(out, word)
	}
	telemetry.Debug("skills.extracted", map[string]any{
		"count": len(out),
	})
	return out, nil
}

// Sorted returns a sorted copy of set.
func Sorted(set []string) []string {
	out := append([]string(nil), set...)
	sort.Strings(out)
	return out
}

func normalize(word string) string {
	word = strings.TrimSpace(word)
	word = strings.TrimPrefix(word, "##")
	return strings.TrimSpace(word)
}

// Chunk splits text on line boundaries into pieces of at most limit runes.
// A single line longer than limit is split at the rune limit.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkRunes
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0
	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentRunes = 0
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		sep := 0
		if currentRunes > 0 {
			sep = 1
		}
		if currentRunes+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentRunes += sep + n
	}
	flush()
	return chunks
}
