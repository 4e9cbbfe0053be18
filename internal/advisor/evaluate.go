package advisor

import (
	"context"
	"errors"
	"strings"

	"career-booster/internal/llm"
)

// EvaluateAnswers asks for feedback on question and answer pairs, zipped to the shorter list.
// The response text is returned as is.
func (a *Advisor) EvaluateAnswers(ctx context.Context, questions, answers []string) Result {
	text, err := a.gen.Generate(ctx, evaluationPrompt(questions, answers))
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		logFailure("evaluate", err)
		return Result{Status: StatusServiceError, Text: NoFeedback, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Result{Status: StatusEmpty, Text: NoFeedback}
	}
	return Result{Status: StatusOK, Text: text}
}
