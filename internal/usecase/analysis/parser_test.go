package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

func jsonString(t *testing.T, s string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return b
}

func TestNormalizeTone_Object(t *testing.T) {
	p := NormalizeTone(json.RawMessage(`{"tone":"confident","confidence":0.82}`))
	require.True(t, p.IsStructured())

	tr, ok := p.ToneResult()
	require.True(t, ok)
	assert.Equal(t, "confident", tr.Tone)
	require.NotNil(t, tr.Confidence)
	assert.InDelta(t, 0.82, *tr.Confidence, 1e-9)
}

func TestNormalizeTone_FencedString(t *testing.T) {
	p := NormalizeTone(jsonString(t, "```json\n{\"tone\":\"calm\"}\n```"))
	require.True(t, p.IsStructured())
	assert.Equal(t, map[string]any{"tone": "calm"}, p.Object)
}

func TestNormalizeTone_UntaggedFenceAndBarePrefix(t *testing.T) {
	p := NormalizeTone(jsonString(t, "```\n{\"energy\":\"high\"}\n```"))
	assert.Equal(t, map[string]any{"energy": "high"}, p.Object)

	p = NormalizeTone(jsonString(t, "json {\"tone\":\"warm\"}"))
	assert.Equal(t, map[string]any{"tone": "warm"}, p.Object)
}

func TestNormalizeTone_ProseFallsBackToCleanedText(t *testing.T) {
	p := NormalizeTone(jsonString(t, "```\nThe candidate sounded nervous\n```"))
	assert.Equal(t, entities.PayloadRawText, p.Kind)
	assert.Equal(t, "The candidate sounded nervous", p.Text)
}

func TestNormalizeTone_BareLabelOnProse(t *testing.T) {
	p := NormalizeTone(jsonString(t, "json calm and steady"))
	assert.Equal(t, entities.PayloadRawText, p.Kind)
	assert.Equal(t, "calm and steady", p.Text)
}

func TestNormalizeTone_OtherShapes(t *testing.T) {
	for _, raw := range []string{``, `null`, `42`, `[1,2]`, `true`} {
		p := NormalizeTone(json.RawMessage(raw))
		assert.Equal(t, entities.PayloadSentinel, p.Kind, raw)
		assert.Equal(t, NoToneSentinel, p.Text, raw)
	}
}

func TestNormalizeTone_Idempotent(t *testing.T) {
	inputs := []json.RawMessage{
		json.RawMessage(`{"tone":"calm","energy":"low"}`),
		jsonString(t, "```json\n{\"tone\":\"calm\"}\n```"),
		jsonString(t, "plain words"),
		jsonString(t, "json json calm"),
		json.RawMessage(`7`),
	}
	for _, in := range inputs {
		once := NormalizeTone(in)
		assert.Equal(t, once, Renormalize(once), string(in))
	}
}

func TestNormalizeFeedback_StringFallback(t *testing.T) {
	p := NormalizeFeedback(jsonString(t, "Great job!"))
	require.True(t, p.IsStructured())
	assert.Equal(t, map[string]any{"raw": "Great job!"}, p.Object)
	assert.Equal(t, "Great job!", p.FeedbackResult().Raw)
}

func TestNormalizeFeedback_EncodedObject(t *testing.T) {
	p := NormalizeFeedback(json.RawMessage(`"{\"communication\":\"clear\"}"`))
	assert.Equal(t, map[string]any{"communication": "clear"}, p.Object)
	assert.Equal(t, "clear", p.FeedbackResult().Communication)
}

func TestNormalizeFeedback_ObjectAndMissing(t *testing.T) {
	p := NormalizeFeedback(json.RawMessage(`{"leadership":"strong","final_assessment":"hire"}`))
	fr := p.FeedbackResult()
	assert.Equal(t, "strong", fr.Leadership)
	assert.Equal(t, "hire", fr.FinalAssessment)

	assert.Equal(t, FeedbackFailed(), NormalizeFeedback(nil))
	assert.Equal(t, FeedbackFailed(), NormalizeFeedback(json.RawMessage(`null`)))
	assert.Equal(t, map[string]any{"raw": "[1,2]"}, NormalizeFeedback(json.RawMessage(`[1,2]`)).Object)
}

func TestNormalizeFeedback_Idempotent(t *testing.T) {
	inputs := []json.RawMessage{
		json.RawMessage(`{"communication":"clear"}`),
		jsonString(t, "Great job!"),
		jsonString(t, "```json\n{\"motivation\":\"high\"}\n```"),
	}
	for _, in := range inputs {
		once := NormalizeFeedback(in)
		b, err := json.Marshal(once)
		require.NoError(t, err)
		assert.Equal(t, once, NormalizeFeedback(b), string(in))
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON("  json\n{\"a\":1}"))
	assert.Equal(t, "jsonify this", extractJSON("jsonify this"))
	assert.Equal(t, "calm and steady", extractJSON("json calm and steady"))
	assert.Equal(t, "", extractJSON("json"))
}
