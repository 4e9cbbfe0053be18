package advisor

// Status separates a successful answer from "nothing found" and "service failed".
type Status string

const (
	StatusOK           Status = "ok"
	StatusEmpty        Status = "empty"
	StatusServiceError Status = "service_error"
)

const (
	NoMissingSkills = "No missing skills found."
	NoQuestions     = "No questions generated."
	NoFeedback      = "No feedback available."
)

// Result is the outcome of one advisor call. Items holds list answers and Text
// holds free-text answers. On StatusEmpty and StatusServiceError they carry the
// degraded fallback, so callers can always render them.
type Result struct {
	Status Status
	Items  []string
	Text   string
	Err    error
}

// Failed reports whether the generative service could not be reached or answered an error.
func (r Result) Failed() bool {
	return r.Status == StatusServiceError
}
