package advisor

import (
	"context"
	"errors"
	"sort"
	"strings"

	"career-booster/internal/llm"
	"career-booster/internal/shared/telemetry"
)

// Advisor asks a generative service for career guidance.
type Advisor struct {
	gen llm.Generator
}

// New builds an Advisor. A nil generator falls back to the placeholder client.
func New(gen llm.Generator) *Advisor {
	if gen == nil {
		gen = llm.PlaceholderClient{}
	}
	return &Advisor{gen: gen}
}

// SuggestRoles returns up to five job roles for skills. An empty response yields no roles.
func (a *Advisor) SuggestRoles(ctx context.Context, skills []string) Result {
	return a.list(ctx, "suggest_roles", rolesPrompt(sortedCopy(skills)), maxRoles, nil)
}

// FindMissingSkills returns the skills the candidate lacks for role.
// It never returns an empty list.
func (a *Advisor) FindMissingSkills(ctx context.Context, role string, skills []string) Result {
	return a.list(ctx, "missing_skills", missingSkillsPrompt(role, sortedCopy(skills)), 0, []string{NoMissingSkills})
}

// GenerateQuestions returns up to five interview questions of roundType for role.
func (a *Advisor) GenerateQuestions(ctx context.Context, role, roundType string) Result {
	if strings.TrimSpace(roundType) == "" {
		roundType = DefaultRoundType
	}
	return a.list(ctx, "questions", questionsPrompt(role, roundType), maxQuestions, []string{NoQuestions})
}

func (a *Advisor) list(ctx context.Context, op, prompt string, limit int, fallback []string) Result {
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		logFailure(op, err)
		return Result{Status: StatusServiceError, Items: fallbackItems(fallback), Err: err}
	}
	items := truncate(ParseLines(text), limit)
	if len(items) == 0 {
		return Result{Status: StatusEmpty, Items: fallbackItems(fallback)}
	}
	return Result{Status: StatusOK, Items: items}
}

func fallbackItems(fallback []string) []string {
	return append([]string{}, fallback...)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func logFailure(op string, err error) {
	telemetry.Warn("advisor.service_error", map[string]any{
		"operation": op,
		"error":     telemetry.TruncateForLog(err.Error(), 200),
	})
}
