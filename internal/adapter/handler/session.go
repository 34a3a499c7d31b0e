package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/errors"
	interviewDTO "github.com/johnquangdev/interview-coach/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-coach/internal/adapter/transport"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
	"github.com/johnquangdev/interview-coach/internal/usecase/session"
)

const eventBuffer = 64

// Session handles live interview sessions over websocket
type Session struct {
	upgrader *websocket.Upgrader
	analyzer session.Analyzer
	contexts *interview.ContextStore
	opts     session.Options
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// Hijacked connections outlive echo's Shutdown, so live sessions are tracked here
	mu       sync.Mutex
	closing  bool
	active   sync.WaitGroup
	stopping context.Context
	stopAll  context.CancelFunc
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(upgrader *websocket.Upgrader, analyzer session.Analyzer, contexts *interview.ContextStore, opts session.Options, m *metrics.Metrics, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	stopping, stopAll := context.WithCancel(context.Background())
	return &Session{
		stopping: stopping,
		stopAll:  stopAll,
		upgrader: upgrader,
		analyzer: analyzer,
		contexts: contexts,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

// Connect handles GET /v1/sessions/ws
func (h *Session) Connect(c echo.Context) error {
	var q interviewDTO.SessionQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	sc, err := h.contexts.Resolve(ctx, q.SessionContext())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if sc.IdentityKey() == "" {
		if sc.InterviewID != "" {
			return HandleError(h.logger, c, errors.ErrSessionContextMissing(sc.InterviewID))
		}
		return HandleError(h.logger, c, errors.ErrInvalidIdentity(q.CandidateEmail))
	}

	if !h.begin() {
		return HandleError(h.logger, c, errors.ErrSessionShuttingDown())
	}
	defer h.active.Done()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopWatch := context.AfterFunc(h.stopping, cancel)
	defer stopWatch()

	conn := transport.NewConn(ws, h.logger)
	defer conn.Close()

	h.metrics.SessionStarted()
	defer h.metrics.SessionEnded()

	bus := session.NewBus(eventBuffer)
	go func() {
		if err := conn.ReadLoop(bus); err != nil {
			h.logger.Debug("session read loop ended", zap.Error(err))
		}
	}()
	go conn.KeepAlive(sessionCtx)

	opts := h.opts
	opts.Assistant = assistantFor(opts.Assistant, sc)

	conductor := session.NewConductor(sc, bus, conn, h.analyzer, opts, h.logger)
	result, err := conductor.Run(sessionCtx)
	if err != nil {
		h.logger.Warn("live session ended with error",
			zap.String("interview_id", sc.InterviewID),
			zap.Error(errors.ErrSessionTransportFailed(err)),
		)
		return nil
	}
	if result.Persisted() {
		if err := h.contexts.Discard(ctx, sc.InterviewID); err != nil {
			h.logger.Warn("failed to discard staged context", zap.String("interview_id", sc.InterviewID), zap.Error(err))
		}
	}
	return nil
}

// Shutdown cancels every live session and waits for their teardown or ctx.
// Sessions torn down this way are not analyzed.
func (h *Session) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.stopAll()

	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Session) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.active.Add(1)
	return true
}

// assistantFor personalizes the configured assistant for one candidate
func assistantFor(base session.AssistantConfig, sc entities.SessionContext) session.AssistantConfig {
	a := base
	if sc.Language != "" {
		a.Language = sc.Language
	}
	if sc.CandidateName != "" {
		a.SystemPrompt = fmt.Sprintf("%s\nThe candidate's name is %s.", a.SystemPrompt, sc.CandidateName)
	}
	a.Metadata = map[string]string{"candidate_email": sc.IdentityKey()}
	if sc.InterviewID != "" {
		a.Metadata["interview_id"] = sc.InterviewID
	}
	return a
}
