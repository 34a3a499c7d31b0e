package analysis

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
)

// FeedbackEndpoint posts the transcript to the LLM feedback service and returns its feedback field
type FeedbackEndpoint interface {
	GenerateFeedback(ctx context.Context, transcript string) (json.RawMessage, error)
}

// FeedbackGenerator wraps the feedback endpoint with transcript rendering and reply normalization
type FeedbackGenerator struct {
	endpoint FeedbackEndpoint
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewFeedbackGenerator creates a generator. metrics and logger may be nil.
func NewFeedbackGenerator(endpoint FeedbackEndpoint, m *metrics.Metrics, logger *zap.Logger) *FeedbackGenerator {
	return &FeedbackGenerator{endpoint: endpoint, metrics: m, logger: logger}
}

// Generate always returns a structured payload. The transcript is truncated to
// MaxTranscriptChars before it is sent.
func (g *FeedbackGenerator) Generate(ctx context.Context, utterances []entities.Utterance) entities.Payload {
	transcript := Truncate(RenderTranscript(utterances), MaxTranscriptChars)

	raw, err := g.endpoint.GenerateFeedback(ctx, transcript)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("feedback generation failed", zap.Error(err))
		}
		g.metrics.ObserveCollaborator("feedback", metrics.OutcomeFailed)
		return FeedbackFailed()
	}

	feedback := NormalizeFeedback(raw)
	outcome := metrics.OutcomeOK
	if _, isRaw := feedback.Object["raw"]; isRaw {
		outcome = metrics.OutcomeFallback
	}
	g.metrics.ObserveCollaborator("feedback", outcome)
	return feedback
}
