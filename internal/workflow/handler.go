package workflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"career-booster/internal/extract"
	"career-booster/internal/shared/server/middleware"
	"career-booster/internal/shared/server/respond"
	"career-booster/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the controller.
type Handler struct {
	Ctrl *Controller
	Repo *Repo
}

// NewHandler constructs a Handler.
func NewHandler(ctrl *Controller, repo *Repo) *Handler {
	return &Handler{Ctrl: ctrl, Repo: repo}
}

// RegisterRoutes attaches session creation to public and every
// session-scoped route to scoped, which must run middleware.RequireSession.
func (h *Handler) RegisterRoutes(public, scoped *gin.RouterGroup) {
	public.POST("/sessions", h.create)

	scoped.DELETE("/sessions/current", h.end)
	scoped.GET("/session", h.get)
	scoped.POST("/session/navigate", h.navigate)
	scoped.POST("/session/resume", h.upload)
	scoped.PUT("/session/role", h.selectRole)
	scoped.POST("/session/missing-skills", h.missingSkills)
	scoped.POST("/session/questions", h.questions)
	scoped.PUT("/session/answers", h.setAnswers)
	scoped.PUT("/session/answers/:index", h.setAnswer)
	scoped.POST("/session/answers/submit", h.submit)
}

// LLMRoutes lists the routes that call the generative service, for rate limiting.
var LLMRoutes = map[string]struct{}{
	http.MethodPost + " /api/v1/session/resume":         {},
	http.MethodPost + " /api/v1/session/navigate":       {},
	http.MethodPost + " /api/v1/session/missing-skills": {},
	http.MethodPost + " /api/v1/session/questions":      {},
	http.MethodPost + " /api/v1/session/answers/submit": {},
}

type sessionResponse struct {
	Session *Session `json:"session"`
	View    PageView `json:"view"`
}

func (h *Handler) create(c *gin.Context) {
	s := h.Ctrl.NewSession()
	if err := h.Repo.Create(c.Request.Context(), s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}
	middleware.SetSessionID(c, s.ID)
	middleware.SetPage(c, string(s.Page))
	telemetry.Info("session.created", map[string]any{"session_id": s.ID})

	c.Header(middleware.SessionHeader, s.ID)
	respond.JSON(c, http.StatusCreated, sessionResponse{Session: s, View: h.Ctrl.View(s)})
}

func (h *Handler) end(c *gin.Context) {
	id := middleware.SessionIDFromContext(c)
	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to end session", nil)
		return
	}
	telemetry.Info("session.ended", map[string]any{"session_id": id})
	c.Status(http.StatusNoContent)
}

func (h *Handler) get(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, s *Session) error { return nil })
}

type navigateRequest struct {
	Page string `json:"page"`
}

func (h *Handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	page, err := ParsePage(req.Page)
	if err != nil {
		writeError(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.Navigate(ctx, s, page)
	})
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.Upload(ctx, s, fileHeader.Filename, data)
	})
}

type roleRequest struct {
	JobRole string `json:"jobRole"`
}

func (h *Handler) selectRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.SelectRole(s, req.JobRole)
	})
}

func (h *Handler) missingSkills(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.FindMissingSkills(ctx, s)
	})
}

type questionsRequest struct {
	RoundType string `json:"roundType"`
}

func (h *Handler) questions(c *gin.Context) {
	var req questionsRequest
	// An empty body means the default round.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.GenerateQuestions(ctx, s, req.RoundType)
	})
}

type answersRequest struct {
	Answers []string `json:"answers"`
}

func (h *Handler) setAnswers(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.SetAnswers(s, req.Answers)
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) setAnswer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, ErrAnswerIndex)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.SetAnswer(s, index, req.Answer)
	})
}

func (h *Handler) submit(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, s *Session) error {
		return h.Ctrl.SubmitAnswers(ctx, s)
	})
}

// withSession loads the caller's session, applies fn and saves the result.
// The session is saved even when fn fails, so notices reach the client.
func (h *Handler) withSession(c *gin.Context, fn func(ctx context.Context, s *Session) error) {
	ctx := c.Request.Context()
	id := middleware.SessionIDFromContext(c)

	s, err := h.Repo.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		return
	}

	opErr := fn(ctx, s)
	middleware.SetPage(c, string(s.Page))

	if err := h.Repo.Save(ctx, s); err != nil {
		if IsNotFound(err) {
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save session", nil)
		return
	}

	if opErr != nil {
		writeError(c, opErr)
		return
	}
	respond.OK(c, sessionResponse{Session: s, View: h.Ctrl.View(s)})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotPDF):
		respond.Error(c, http.StatusBadRequest, "invalid_file_type", err.Error(), nil)
	case extract.IsExtractionError(err):
		respond.Error(c, http.StatusBadRequest, "invalid_pdf", err.Error(), nil)
	case errors.Is(err, ErrUnknownPage):
		respond.Error(c, http.StatusBadRequest, "unknown_page", err.Error(), nil)
	case errors.Is(err, ErrUnknownRole):
		respond.Error(c, http.StatusBadRequest, "unknown_role", err.Error(), nil)
	case errors.Is(err, ErrAnswerIndex):
		respond.Error(c, http.StatusBadRequest, "answer_index_out_of_range", err.Error(), nil)
	case errors.Is(err, ErrTooManyAnswers):
		respond.Error(c, http.StatusBadRequest, "too_many_answers", err.Error(), nil)
	case errors.Is(err, ErrNoJobRoles):
		respond.Error(c, http.StatusConflict, "no_job_roles", err.Error(), nil)
	case errors.Is(err, ErrNoRoleSelected):
		respond.Error(c, http.StatusConflict, "no_role_selected", err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "request timed out", nil)
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusRequestTimeout, "canceled", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
