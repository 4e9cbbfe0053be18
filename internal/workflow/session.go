package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"career-booster/internal/advisor"
)

// Page is one of the three navigable screens.
type Page string

const (
	PageHome      Page = "home"
	PageInterview Page = "interview"
	PageFeedback  Page = "feedback"
)

// NumAnswers is the fixed number of answer slots and the cap on questions.
const NumAnswers = 5

const maxJobRoles = 5

// Operation names used as keys in Session.Outcomes.
const (
	OpExtractSkills = "extract_skills"
	OpSuggestRoles  = "suggest_roles"
	OpMissingSkills = "missing_skills"
	OpQuestions     = "questions"
	OpEvaluate      = "evaluate"
)

// ParsePage maps user input onto a Page. Matching is case-insensitive.
func ParsePage(raw string) (Page, error) {
	switch p := Page(strings.ToLower(strings.TrimSpace(raw))); p {
	case PageHome, PageInterview, PageFeedback:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPage, raw)
	}
}

// Session is the state of one visit. Nil slices and pointers mean "not produced yet".
type Session struct {
	ID                 string                    `json:"id"`
	Page               Page                      `json:"page"`
	ResumeFileName     string                    `json:"resumeFileName,omitempty"`
	ResumeText         *string                   `json:"resumeText"`
	ExtractedSkills    []string                  `json:"extractedSkills"`
	JobRoles           []string                  `json:"jobRoles"`
	SelectedJobRole    string                    `json:"selectedJobRole,omitempty"`
	MissingSkills      []string                  `json:"missingSkills"`
	MissingSkillsRole  string                    `json:"missingSkillsRole,omitempty"`
	InterviewQuestions []string                  `json:"interviewQuestions"`
	QuestionsRole      string                    `json:"questionsRole,omitempty"`
	RoundType          string                    `json:"roundType,omitempty"`
	UserAnswers        [NumAnswers]string        `json:"userAnswers"`
	Feedback           *string                   `json:"feedback"`
	Notices            []string                  `json:"notices"`
	Outcomes           map[string]advisor.Status `json:"outcomes"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	ExpiresAt          time.Time                 `json:"expiresAt"`
}

// NewSession returns a session on the home page with every field at its initial value.
func NewSession(now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:                 uuid.NewString(),
		Page:               PageHome,
		InterviewQuestions: []string{},
		Notices:            []string{},
		Outcomes:           map[string]advisor.Status{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Answers returns the answer slots as a slice.
func (s *Session) Answers() []string {
	return append([]string(nil), s.UserAnswers[:]...)
}

// HasJobRole reports whether role is one of the suggested roles.
func (s *Session) HasJobRole(role string) bool {
	for _, r := range s.JobRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Session) notice(msg string) {
	s.Notices = append(s.Notices, msg)
}

func (s *Session) record(op string, status advisor.Status) {
	if s.Outcomes == nil {
		s.Outcomes = map[string]advisor.Status{}
	}
	s.Outcomes[op] = status
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.InterviewQuestions == nil {
		s.InterviewQuestions = []string{}
	}
	if s.Notices == nil {
		s.Notices = []string{}
	}
	if s.Outcomes == nil {
		s.Outcomes = map[string]advisor.Status{}
	}
	if s.Page == "" {
		s.Page = PageHome
	}
	return &s, nil
}
