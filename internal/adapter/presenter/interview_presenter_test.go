package presenter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
)

func TestToInterviewResponse(t *testing.T) {
	rec := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	skills := "python, sql,,go"
	rec.Skills = &skills
	require.NoError(t, entities.CompletionFields{
		Transcript: "user: hi",
		Feedback:   entities.Structured(map[string]any{"communication": "clear", "final_assessment": "hire"}),
		Tone:       entities.Sentinel("Tone analysis failed"),
		Duration:   42,
	}.Apply(rec))

	resp := ToInterviewResponse(rec)
	require.NotNil(t, resp)
	assert.Equal(t, []string{"python", "sql", "go"}, resp.Skills)
	assert.Equal(t, "clear", resp.Feedback.Communication)
	assert.Equal(t, "hire", resp.Feedback.FinalAssessment)
	assert.Equal(t, entities.PayloadRawText, resp.Tone.Kind, "stored sentinels decode as text")
	assert.Equal(t, "Tone analysis failed", resp.Tone.Text)
	assert.True(t, resp.Conducted)
	assert.Empty(t, resp.ResumeURL)

	assert.Nil(t, ToInterviewResponse(nil))
}

func TestToAnalysisResponse_PersistFailure(t *testing.T) {
	resp := ToAnalysisResponse(&interview.Result{
		Feedback:       entities.Structured(map[string]any{"raw": "Could not generate feedback."}),
		PersistFailure: &interview.PersistFailure{Status: 403, Body: "denied"},
	})
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Pauses)
	assert.Equal(t, "Could not generate feedback.", resp.Feedback.Raw)
	require.NotNil(t, resp.PersistFailure)
	assert.Equal(t, 403, resp.PersistFailure.Status)
	assert.Nil(t, resp.Interview)
}
