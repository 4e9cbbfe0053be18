package workflow

import (
	"context"
	"strings"
	"sync"

	"career-booster/internal/advisor"
)

type fakeSkills struct {
	mu    sync.Mutex
	calls int
	out   []string
	err   error
}

func (f *fakeSkills) Extract(ctx context.Context, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	return append([]string(nil), f.out...), nil
}

type evaluateCall struct {
	questions []string
	answers   []string
}

type fakeAdvisor struct {
	mu            sync.Mutex
	roles         advisor.Result
	missing       map[string]advisor.Result
	questions     advisor.Result
	feedback      advisor.Result
	questionCalls []string
	missingCalls  []string
	evaluateCalls []evaluateCall
	rolesCalls    [][]string
}

func newFakeAdvisor() *fakeAdvisor {
	return &fakeAdvisor{
		roles:     advisor.Result{Status: advisor.StatusOK, Items: []string{"Data Analyst", "ML Engineer", "Data Engineer"}},
		missing:   map[string]advisor.Result{},
		questions: advisor.Result{Status: advisor.StatusOK, Items: []string{"Q1", "Q2", "Q3", "Q4", "Q5"}},
		feedback:  advisor.Result{Status: advisor.StatusOK, Text: "Good effort."},
	}
}

func (f *fakeAdvisor) SuggestRoles(ctx context.Context, skills []string) advisor.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rolesCalls = append(f.rolesCalls, append([]string(nil), skills...))
	if len(skills) == 0 {
		return advisor.Result{Status: advisor.StatusEmpty, Items: []string{}}
	}
	return f.roles
}

func (f *fakeAdvisor) FindMissingSkills(ctx context.Context, role string, skills []string) advisor.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missingCalls = append(f.missingCalls, role)
	if res, ok := f.missing[role]; ok {
		return res
	}
	return advisor.Result{Status: advisor.StatusEmpty, Items: []string{advisor.NoMissingSkills}}
}

func (f *fakeAdvisor) GenerateQuestions(ctx context.Context, role, roundType string) advisor.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questionCalls = append(f.questionCalls, role+"|"+roundType)
	return f.questions
}

func (f *fakeAdvisor) EvaluateAnswers(ctx context.Context, questions, answers []string) advisor.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluateCalls = append(f.evaluateCalls, evaluateCall{
		questions: append([]string(nil), questions...),
		answers:   append([]string(nil), answers...),
	})
	return f.feedback
}
