package ner

import (
	"context"
	"errors"
)

// GroupMisc is the entity group the skill extractor keeps.
const GroupMisc = "MISC"

// Entity is one recognized span.
type Entity struct {
	Word  string  `json:"word"`
	Group string  `json:"entity_group"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Recognizer labels spans of text with semantic categories.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// ErrNotConfigured is returned by the placeholder recognizer.
var ErrNotConfigured = errors.New("entity recognizer not configured")

// PlaceholderRecognizer is used when no recognition backend is configured.
type PlaceholderRecognizer struct{}

// Recognize returns ErrNotConfigured.
func (PlaceholderRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	_ = ctx
	_ = text
	return nil, ErrNotConfigured
}
