package workflow

import "errors"

var (
	ErrNotPDF         = errors.New("only PDF files are accepted")
	ErrUnknownPage    = errors.New("unknown page")
	ErrNoJobRoles     = errors.New("no job roles available")
	ErrUnknownRole    = errors.New("job role is not one of the suggested roles")
	ErrNoRoleSelected = errors.New("no job role selected")
	ErrAnswerIndex    = errors.New("answer index out of range")
	ErrTooManyAnswers = errors.New("too many answers")
)
