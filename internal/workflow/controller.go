package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"career-booster/internal/advisor"
	"career-booster/internal/extract"
	"career-booster/internal/shared/metrics"
	"career-booster/internal/shared/telemetry"
	"career-booster/internal/shared/util"
)

// User-visible notices.
const (
	NoticeNoText             = "No text could be extracted from the resume."
	NoticeNoSkills           = "No skills were found in the resume."
	NoticeNoRoles            = "No job roles could be suggested."
	NoticeSkillsUnavailable  = "Skill extraction is unavailable right now."
	NoticeAdvisorUnavailable = "The career advisor is unavailable right now."
	NoticeNotPDF             = "Please upload a PDF file."
)

// TextExtractor turns document bytes into plain text.
type TextExtractor func(ctx context.Context, data []byte) (string, error)

// SkillExtractor finds skills in resume text.
type SkillExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// CareerAdvisor produces guidance from a generative service.
type CareerAdvisor interface {
	SuggestRoles(ctx context.Context, skills []string) advisor.Result
	FindMissingSkills(ctx context.Context, role string, skills []string) advisor.Result
	GenerateQuestions(ctx context.Context, role, roundType string) advisor.Result
	EvaluateAnswers(ctx context.Context, questions, answers []string) advisor.Result
}

// Controller applies user actions to a Session. It holds no per-session state.
type Controller struct {
	extractText TextExtractor
	skills      SkillExtractor
	advisor     CareerAdvisor
	now         func() time.Time
}

func NewController(extractText TextExtractor, skills SkillExtractor, adv CareerAdvisor) *Controller {
	if extractText == nil {
		extractText = extract.ExtractPDF
	}
	return &Controller{
		extractText: extractText,
		skills:      skills,
		advisor:     adv,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSession starts a visit.
func (c *Controller) NewSession() *Session {
	metrics.IncSessionsCreated()
	return NewSession(c.now())
}

// Upload processes a resume: text, then skills, then role suggestions, then
// moves to the interview page. Empty results still move the page; a file that
// is not a readable PDF leaves the page where it is.
func (c *Controller) Upload(ctx context.Context, s *Session, fileName string, data []byte) error {
	c.begin(s)
	fileName, err := util.SanitizeFileName(fileName)
	if err != nil || !extract.IsPDFName(fileName) {
		s.notice(NoticeNotPDF)
		return ErrNotPDF
	}

	text, err := c.extractText(ctx, data)
	if err != nil {
		if extract.IsExtractionError(err) {
			s.notice(fmt.Sprintf("The resume could not be read: %s", extractionReason(err)))
		}
		return err
	}
	metrics.IncResumeUploads()

	s.ResumeFileName = fileName
	s.ResumeText = &text
	if text == "" {
		s.notice(NoticeNoText)
	}

	found, err := c.extractSkills(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		telemetry.Warn("workflow.skills.failed", map[string]any{
			"session_id": s.ID,
			"error":      err,
		})
		s.record(OpExtractSkills, advisor.StatusServiceError)
		s.notice(NoticeSkillsUnavailable)
		found = []string{}
	} else if len(found) == 0 {
		s.record(OpExtractSkills, advisor.StatusEmpty)
		if text != "" {
			s.notice(NoticeNoSkills)
		}
	} else {
		s.record(OpExtractSkills, advisor.StatusOK)
	}
	s.ExtractedSkills = sortedSet(found)

	roles := c.advisor.SuggestRoles(ctx, s.ExtractedSkills)
	s.record(OpSuggestRoles, roles.Status)
	s.JobRoles = capped(roles.Items, maxJobRoles)
	switch roles.Status {
	case advisor.StatusServiceError:
		s.notice(NoticeAdvisorUnavailable)
	case advisor.StatusEmpty:
		s.notice(NoticeNoRoles)
	}

	// A new resume invalidates a role picked from the previous suggestions.
	if s.SelectedJobRole != "" && !s.HasJobRole(s.SelectedJobRole) {
		s.SelectedJobRole = ""
	}

	s.Page = PageInterview
	telemetry.Info("workflow.upload", map[string]any{
		"session_id": s.ID,
		"file_name":  fileName,
		"text_len":   len(text),
		"skills":     len(s.ExtractedSkills),
		"roles":      len(s.JobRoles),
	})
	return nil
}

// Navigate jumps to page. State is never cleared. Entering the feedback page
// evaluates the current answers.
func (c *Controller) Navigate(ctx context.Context, s *Session, page Page) error {
	parsed, err := ParsePage(string(page))
	if err != nil {
		return err
	}
	c.begin(s)
	s.Page = parsed
	if parsed == PageFeedback {
		c.enterFeedback(ctx, s)
	}
	return nil
}

// SelectRole picks one of the suggested roles. Previously fetched missing
// skills and questions are kept and stay tagged with the role they were fetched for.
func (c *Controller) SelectRole(s *Session, role string) error {
	c.begin(s)
	if len(s.JobRoles) == 0 {
		return ErrNoJobRoles
	}
	role = strings.TrimSpace(role)
	if !s.HasJobRole(role) {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	s.SelectedJobRole = role
	return nil
}

// FindMissingSkills fetches the skill gap for the selected role.
func (c *Controller) FindMissingSkills(ctx context.Context, s *Session) error {
	c.begin(s)
	if s.SelectedJobRole == "" {
		return ErrNoRoleSelected
	}
	res := c.advisor.FindMissingSkills(ctx, s.SelectedJobRole, s.ExtractedSkills)
	s.record(OpMissingSkills, res.Status)
	if res.Failed() {
		s.notice(NoticeAdvisorUnavailable)
	}
	s.MissingSkills = nonNil(res.Items)
	s.MissingSkillsRole = s.SelectedJobRole
	return nil
}

// GenerateQuestions fetches up to five questions for the selected role.
// Answers already typed are kept in their slots.
func (c *Controller) GenerateQuestions(ctx context.Context, s *Session, roundType string) error {
	c.begin(s)
	if s.SelectedJobRole == "" {
		return ErrNoRoleSelected
	}
	roundType = strings.TrimSpace(roundType)
	if roundType == "" {
		roundType = advisor.DefaultRoundType
	}
	res := c.advisor.GenerateQuestions(ctx, s.SelectedJobRole, roundType)
	s.record(OpQuestions, res.Status)
	if res.Failed() {
		s.notice(NoticeAdvisorUnavailable)
	}
	s.InterviewQuestions = capped(res.Items, NumAnswers)
	s.QuestionsRole = s.SelectedJobRole
	s.RoundType = roundType
	return nil
}

// SetAnswers replaces the answer slots. Missing trailing answers become empty.
func (c *Controller) SetAnswers(s *Session, answers []string) error {
	if len(answers) > NumAnswers {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyAnswers, len(answers), NumAnswers)
	}
	c.begin(s)
	var slots [NumAnswers]string
	copy(slots[:], answers)
	s.UserAnswers = slots
	return nil
}

// SetAnswer writes one answer slot.
func (c *Controller) SetAnswer(s *Session, index int, answer string) error {
	if index < 0 || index >= NumAnswers {
		return fmt.Errorf("%w: %d", ErrAnswerIndex, index)
	}
	c.begin(s)
	s.UserAnswers[index] = answer
	return nil
}

// SubmitAnswers moves to the feedback page and evaluates the answers as they are.
func (c *Controller) SubmitAnswers(ctx context.Context, s *Session) error {
	return c.Navigate(ctx, s, PageFeedback)
}

// enterFeedback re-evaluates on every entry, even if nothing changed.
func (c *Controller) enterFeedback(ctx context.Context, s *Session) {
	answers := s.Answers()
	if len(answers) == 0 {
		return
	}
	res := c.advisor.EvaluateAnswers(ctx, s.InterviewQuestions, answers)
	s.record(OpEvaluate, res.Status)
	if res.Failed() {
		s.notice(NoticeAdvisorUnavailable)
	}
	text := res.Text
	s.Feedback = &text
}

func (c *Controller) begin(s *Session) {
	s.Notices = []string{}
	s.UpdatedAt = c.now()
}

func (c *Controller) extractSkills(ctx context.Context, text string) ([]string, error) {
	if c.skills == nil {
		return []string{}, nil
	}
	found, err := c.skills.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	return nonNil(found), nil
}

func extractionReason(err error) string {
	var extractErr *extract.ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.Reason
	}
	return err.Error()
}

func sortedSet(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func capped(items []string, limit int) []string {
	out := nonNil(items)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return append([]string{}, items...)
}
