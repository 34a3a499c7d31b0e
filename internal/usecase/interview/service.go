package interview

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/interview-coach/errors"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/messaging"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/interview-coach/internal/usecase/analysis"
	"github.com/johnquangdev/interview-coach/internal/usecase/recorder"
	"github.com/johnquangdev/interview-coach/pkg/logger"
)

// ToneClassifier classifies the respondent's tone
type ToneClassifier interface {
	Classify(ctx context.Context, utterances []entities.Utterance) entities.Payload
}

// FeedbackGenerator produces rubric feedback for a transcript
type FeedbackGenerator interface {
	Generate(ctx context.Context, utterances []entities.Utterance) entities.Payload
}

// Recorder persists the completed interview
type Recorder interface {
	Record(ctx context.Context, in recorder.Input) (*entities.SessionRecord, error)
}

// PersistFailure is the store's rejection as shown to the client
type PersistFailure struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Result is the outcome of one analysis run
type Result struct {
	InterviewID    string                  `json:"interview_id,omitempty"`
	Pauses         []entities.AnswerPauses `json:"pauses"`
	Tone           entities.Payload        `json:"tone"`
	Feedback       entities.Payload        `json:"feedback"`
	Duration       int                     `json:"duration"`
	Record         *entities.SessionRecord `json:"record,omitempty"`
	PersistError   error                   `json:"-"`
	PersistFailure *PersistFailure         `json:"persist_failure,omitempty"`
}

// Persisted reports whether the record was written
func (r *Result) Persisted() bool {
	return r != nil && r.Record != nil && r.PersistError == nil
}

// CompletedEvent is published after a record has been written
type CompletedEvent struct {
	InterviewID string           `json:"interview_id"`
	RecordID    string           `json:"record_id"`
	Email       string           `json:"email"`
	Duration    int              `json:"duration"`
	PauseCount  int              `json:"pause_count"`
	Tone        entities.Payload `json:"tone"`
	CompletedAt time.Time        `json:"completed_at"`
}

// Service runs the post-call pipeline: pauses, tone, feedback, then persistence
type Service struct {
	tone           ToneClassifier
	feedback       FeedbackGenerator
	recorder       Recorder
	publisher      messaging.Publisher
	metrics        *metrics.Metrics
	logger         *zap.Logger
	pauseThreshold float64
}

// NewService creates the pipeline. publisher, metrics and logger may be nil.
func NewService(tone ToneClassifier, feedback FeedbackGenerator, rec Recorder, publisher messaging.Publisher, m *metrics.Metrics, pauseThreshold float64, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		tone:           tone,
		feedback:       feedback,
		recorder:       rec,
		publisher:      publisher,
		metrics:        m,
		logger:         logger.OrNop(log),
		pauseThreshold: pauseThreshold,
	}
}

// Complete analyzes a finished session and persists it exactly once.
// Collaborator failures degrade to sentinel payloads; a persistence failure is
// reported on the Result, not as an error.
func (s *Service) Complete(ctx context.Context, sc entities.SessionContext, utterances []entities.Utterance, duration time.Duration) (*Result, error) {
	if sc.IdentityKey() == "" {
		return nil, apperrors.ErrInvalidIdentity(sc.CandidateEmail)
	}

	started := time.Now()
	log := s.logger.With(
		zap.String(logger.FieldInterviewID, sc.InterviewID),
		zap.String(logger.FieldIdentity, sc.IdentityKey()),
	)

	pauses := analysis.AnalyzePauses(utterances, s.pauseThreshold)
	pauseCount := analysis.CountPauses(pauses)
	s.metrics.AddPauses(pauseCount)

	tone := s.tone.Classify(ctx, utterances)
	feedback := s.feedback.Generate(ctx, utterances)

	result := &Result{
		InterviewID: sc.InterviewID,
		Pauses:      pauses,
		Tone:        tone,
		Feedback:    feedback,
	}

	record, err := s.recorder.Record(ctx, recorder.Input{
		Context:    sc,
		Transcript: analysis.RenderTranscript(utterances),
		Feedback:   feedback,
		Tone:       tone,
		Duration:   duration,
	})
	if err != nil {
		log.Error("failed to persist interview", zap.Error(err))
		result.PersistError = err
		result.PersistFailure = persistFailure(err)
	} else {
		result.Record = record
		result.Duration = record.Duration
		s.publish(ctx, log, CompletedEvent{
			InterviewID: sc.InterviewID,
			RecordID:    record.ID.String(),
			Email:       record.Email,
			Duration:    record.Duration,
			PauseCount:  pauseCount,
			Tone:        tone,
			CompletedAt: time.Now().UTC(),
		})
	}

	s.metrics.ObserveAnalysis(time.Since(started).Seconds())
	log.Info("interview analysis completed",
		zap.Int("utterances", len(utterances)),
		zap.Int("pauses", pauseCount),
		zap.String("tone_kind", tone.Kind.String()),
		zap.Bool("persisted", result.Persisted()),
	)
	return result, nil
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, event CompletedEvent) {
	if err := s.publisher.Publish(ctx, messaging.RoutingKeyCompleted, event); err != nil {
		s.metrics.ObservePublish(metrics.OutcomeFailed)
		log.Warn("failed to publish completion event", zap.Error(err))
		return
	}
	s.metrics.ObservePublish(metrics.OutcomeOK)
}

func persistFailure(err error) *PersistFailure {
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		return &PersistFailure{Body: err.Error()}
	}
	status, _ := strconv.Atoi(appErr.Details["status"])
	body, ok := appErr.Details["body"]
	if !ok {
		body = appErr.Message
	}
	if status == 0 {
		status = appErr.HTTPCode
	}
	return &PersistFailure{Status: status, Body: body}
}
