package analysis

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
)

// ToneEndpoint posts respondent text to the classifier and returns its tone field
type ToneEndpoint interface {
	ClassifyTone(ctx context.Context, text string) (json.RawMessage, error)
}

// ToneClassifier wraps the classifier endpoint with reply normalization
type ToneClassifier struct {
	endpoint ToneEndpoint
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewToneClassifier creates a classifier. metrics and logger may be nil.
func NewToneClassifier(endpoint ToneEndpoint, m *metrics.Metrics, logger *zap.Logger) *ToneClassifier {
	return &ToneClassifier{endpoint: endpoint, metrics: m, logger: logger}
}

// Classify never fails: a transport or status error yields ToneFailedSentinel
func (c *ToneClassifier) Classify(ctx context.Context, utterances []entities.Utterance) entities.Payload {
	raw, err := c.endpoint.ClassifyTone(ctx, RespondentText(utterances))
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("tone classification failed", zap.Error(err))
		}
		c.metrics.ObserveCollaborator("tone", metrics.OutcomeFailed)
		return entities.Sentinel(ToneFailedSentinel)
	}

	tone := NormalizeTone(raw)
	outcome := metrics.OutcomeOK
	if !tone.IsStructured() {
		outcome = metrics.OutcomeFallback
	}
	c.metrics.ObserveCollaborator("tone", outcome)
	return tone
}
