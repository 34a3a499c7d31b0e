package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPError is a non-2xx reply from an external service
type HTTPError struct {
	Service string
	Status  int
	Body    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
}

// CollaboratorClient calls the tone classifier and feedback endpoints.
// It returns the raw reply field and leaves normalization to the caller.
type CollaboratorClient struct {
	toneURL     string
	feedbackURL string
	client      *http.Client
}

// NewCollaboratorClient creates a client for the two analysis endpoints
func NewCollaboratorClient(toneURL, feedbackURL string, timeout time.Duration) *CollaboratorClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CollaboratorClient{
		toneURL:     toneURL,
		feedbackURL: feedbackURL,
		client:      &http.Client{Timeout: timeout},
	}
}

type toneRequest struct {
	Text string `json:"text"`
}

type toneResponse struct {
	Tone json.RawMessage `json:"tone"`
}

type feedbackRequest struct {
	Transcript string `json:"transcript"`
}

type feedbackResponse struct {
	Feedback json.RawMessage `json:"feedback"`
}

// ClassifyTone posts {text} and returns the reply's tone field, nil when absent
func (c *CollaboratorClient) ClassifyTone(ctx context.Context, text string) (json.RawMessage, error) {
	var out toneResponse
	if err := c.post(ctx, "tone-classifier", c.toneURL, toneRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Tone, nil
}

// GenerateFeedback posts {transcript} and returns the reply's feedback field, nil when absent
func (c *CollaboratorClient) GenerateFeedback(ctx context.Context, transcript string) (json.RawMessage, error) {
	var out feedbackResponse
	if err := c.post(ctx, "feedback-generator", c.feedbackURL, feedbackRequest{Transcript: transcript}, &out); err != nil {
		return nil, err
	}
	return out.Feedback, nil
}

func (c *CollaboratorClient) post(ctx context.Context, service, endpoint string, in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{Service: service, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}
