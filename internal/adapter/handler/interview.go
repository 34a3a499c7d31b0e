package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/errors"
	interviewDTO "github.com/johnquangdev/interview-coach/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-coach/internal/adapter/presenter"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/domain/repositories"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
	"github.com/johnquangdev/interview-coach/pkg/jobcontext"
)

// Completer runs the post-call pipeline
type Completer interface {
	Complete(ctx context.Context, sc entities.SessionContext, utterances []entities.Utterance, duration time.Duration) (*interview.Result, error)
}

// ResumeLocator resolves staged resume paths in object storage
type ResumeLocator interface {
	PublicURL(path string) string
	Exists(ctx context.Context, path string) (bool, error)
}

// Interview handles interview-related HTTP requests
type Interview struct {
	service  Completer
	repo     repositories.InterviewRepository
	contexts *interview.ContextStore
	resumes  ResumeLocator
	logger   *zap.Logger
}

// NewInterviewHandler creates a new interview handler. resumes may be nil.
func NewInterviewHandler(service Completer, repo repositories.InterviewRepository, contexts *interview.ContextStore, resumes ResumeLocator, logger *zap.Logger) *Interview {
	return &Interview{
		service:  service,
		repo:     repo,
		contexts: contexts,
		resumes:  resumes,
		logger:   logger,
	}
}

// Complete handles POST /v1/interviews/complete
func (h *Interview) Complete(c echo.Context) error {
	var req interviewDTO.CompleteInterviewRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	sc, err := h.contexts.Resolve(ctx, req.SessionContext())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobCtx, cancel := jobcontext.Begin(ctx, sc.InterviewID, jobcontext.KindBatch, jobcontext.DefaultTimeout)
	defer cancel()

	var result *interview.Result
	err = jobcontext.Run(jobCtx, func(jobCtx context.Context) error {
		var runErr error
		result, runErr = h.service.Complete(jobCtx, sc, req.ToUtterances(), req.Duration())
		return runErr
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if h.logger != nil {
		md := jobcontext.GetJobMetadata(jobCtx)
		h.logger.Info("batch completion finished",
			zap.String("interview_id", md.JobID),
			zap.String("job_kind", md.Kind),
			zap.Duration("elapsed", jobcontext.Elapsed(jobCtx)))
	}
	if result.Persisted() {
		if err := h.contexts.Discard(ctx, sc.InterviewID); err != nil && h.logger != nil {
			h.logger.Warn("failed to discard staged context", zap.String("interview_id", sc.InterviewID), zap.Error(err))
		}
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisResponse(result))
}

// GetInterview handles GET /v1/interviews/:id
func (h *Interview) GetInterview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid interview id"))
	}

	record, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find interview", err))
	}
	if record == nil {
		return HandleError(h.logger, c, errors.ErrInterviewNotFound(id.String()))
	}

	return HandleSuccess(h.logger, c, presenter.ToInterviewResponse(record))
}

// StageContext handles PUT /v1/interviews/:id/context
func (h *Interview) StageContext(c echo.Context) error {
	interviewID := c.Param("id")
	if interviewID == "" || len(interviewID) > 64 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid interview id"))
	}

	var req interviewDTO.StageContextRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	resp := interviewDTO.StagedContextResponse{
		InterviewID:    interviewID,
		CandidateEmail: entities.NormalizeIdentity(req.CandidateEmail),
		CandidateName:  req.CandidateName,
	}

	if req.ResumePath != "" && h.resumes != nil {
		exists, err := h.resumes.Exists(ctx, req.ResumePath)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrStorageFailed("stat resume", err))
		}
		if !exists {
			return HandleError(h.logger, c, errors.ErrNotFound("resume").WithDetail("resume_path", req.ResumePath))
		}
		resp.ResumeURL = h.resumes.PublicURL(req.ResumePath)
	}

	if err := h.contexts.Stage(ctx, req.SessionContext(interviewID)); err != nil {
		return HandleError(h.logger, c, err)
	}
	resp.ExpiresAt = time.Now().Add(h.contexts.TTL()).UTC()

	if h.logger != nil {
		h.logger.Info("session context staged",
			zap.String("interview_id", interviewID),
			zap.Bool("has_resume", req.ResumePath != ""),
		)
	}
	return c.JSON(http.StatusOK, success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "staged",
		Data:    resp,
	})
}
