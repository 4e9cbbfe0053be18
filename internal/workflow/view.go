package workflow

import "career-booster/internal/skills"

const (
	titleHome      = "Upload Your Resume"
	titleInterview = "Interview Preparation"
	titleFeedback  = "Feedback on Your Answers"

	messageNoRoles    = "Upload a resume to get job role suggestions."
	messageChooseRole = "Choose a job role."
	messageNoFeedback = "No feedback yet."
)

// PageView is the render model of the current page. Exactly one of Home,
// Interview and Feedback is set.
type PageView struct {
	Page      Page           `json:"page"`
	Title     string         `json:"title"`
	Message   string         `json:"message,omitempty"`
	Notices   []string       `json:"notices"`
	Home      *HomeView      `json:"home,omitempty"`
	Interview *InterviewView `json:"interview,omitempty"`
	Feedback  *FeedbackView  `json:"feedback,omitempty"`
}

type HomeView struct {
	Accept         string `json:"accept"`
	ResumeFileName string `json:"resumeFileName,omitempty"`
}

// InterviewView is reduced to a message when there are no roles to pick from.
type InterviewView struct {
	JobRoles           []string       `json:"jobRoles"`
	SelectedJobRole    string         `json:"selectedJobRole,omitempty"`
	ExtractedSkills    []string       `json:"extractedSkills"`
	MissingSkills      []string       `json:"missingSkills,omitempty"`
	MissingSkillsRole  string         `json:"missingSkillsRole,omitempty"`
	MissingSkillsStale bool           `json:"missingSkillsStale,omitempty"`
	Questions          []QuestionView `json:"questions,omitempty"`
	QuestionsRole      string         `json:"questionsRole,omitempty"`
	QuestionsStale     bool           `json:"questionsStale,omitempty"`
	RoundType          string         `json:"roundType,omitempty"`
}

type QuestionView struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FeedbackView struct {
	Feedback string `json:"feedback"`
}

// View renders s.
func (c *Controller) View(s *Session) PageView {
	return RenderView(s)
}

// RenderView renders the current page of s.
func RenderView(s *Session) PageView {
	view := PageView{Page: s.Page, Notices: append([]string{}, s.Notices...)}
	switch s.Page {
	case PageInterview:
		view.Title = titleInterview
		view.Interview = interviewView(s, &view)
	case PageFeedback:
		view.Title = titleFeedback
		fb := messageNoFeedback
		if s.Feedback != nil && *s.Feedback != "" {
			fb = *s.Feedback
		}
		view.Feedback = &FeedbackView{Feedback: fb}
	default:
		view.Page = PageHome
		view.Title = titleHome
		view.Home = &HomeView{Accept: ".pdf", ResumeFileName: s.ResumeFileName}
	}
	return view
}

func interviewView(s *Session, view *PageView) *InterviewView {
	if len(s.JobRoles) == 0 {
		view.Message = messageNoRoles
		return nil
	}
	iv := &InterviewView{
		JobRoles:        append([]string{}, s.JobRoles...),
		SelectedJobRole: s.SelectedJobRole,
		ExtractedSkills: skills.Sorted(s.ExtractedSkills),
	}
	if s.SelectedJobRole == "" {
		view.Message = messageChooseRole
		return iv
	}

	if len(s.MissingSkills) > 0 {
		iv.MissingSkills = append([]string{}, s.MissingSkills...)
		iv.MissingSkillsRole = s.MissingSkillsRole
		iv.MissingSkillsStale = s.MissingSkillsRole != s.SelectedJobRole
	}
	for i, q := range s.InterviewQuestions {
		if i >= NumAnswers {
			break
		}
		iv.Questions = append(iv.Questions, QuestionView{Index: i, Question: q, Answer: s.UserAnswers[i]})
	}
	if len(iv.Questions) > 0 {
		iv.QuestionsRole = s.QuestionsRole
		iv.QuestionsStale = s.QuestionsRole != s.SelectedJobRole
		iv.RoundType = s.RoundType
	}
	return iv
}
