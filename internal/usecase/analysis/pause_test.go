package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

func w(word string, start, end float64) entities.WordTimestamp {
	return entities.WordTimestamp{Word: word, Start: start, End: end}
}

func TestDetectPauses_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, DetectPauses(nil, 1.5))
	assert.Empty(t, DetectPauses([]entities.WordTimestamp{w("hi", 0, 0.4)}, 1.5))
}

func TestDetectPauses_OnlyGapsAboveThreshold(t *testing.T) {
	words := []entities.WordTimestamp{
		w("so", 0.0, 0.3),
		w("I", 2.4, 2.5),    // 2.1 gap
		w("think", 4.0, 4.4), // exactly 1.5: not a pause
		w("that", 4.5, 4.7),
		w("maybe", 7.0, 7.3), // 2.3 gap
	}

	pauses := DetectPauses(words, 1.5)
	require.Len(t, pauses, 2)

	assert.Equal(t, "so", pauses[0].FromToken)
	assert.Equal(t, "I", pauses[0].ToToken)
	assert.InDelta(t, 2.1, pauses[0].GapSeconds, 1e-9)

	assert.Equal(t, "that", pauses[1].FromToken)
	assert.Equal(t, "maybe", pauses[1].ToToken)
	assert.InDelta(t, 2.3, pauses[1].GapSeconds, 1e-9)
}

func TestDetectPauses_MatchesGapDefinition(t *testing.T) {
	words := []entities.WordTimestamp{
		w("a", 0, 1), w("b", 1.2, 1.4), w("c", 5, 6), w("d", 6, 6.5), w("e", 9, 9.1),
	}
	for _, threshold := range []float64{0.1, 1.0, 2.4, 3.6, 10} {
		var want []float64
		for i := 1; i < len(words); i++ {
			if g := words[i].Start - words[i-1].End; g > threshold {
				want = append(want, g)
			}
		}
		got := DetectPauses(words, threshold)
		require.Len(t, got, len(want), "threshold %v", threshold)
		for i := range got {
			assert.InDelta(t, want[i], got[i].GapSeconds, 1e-9)
		}
	}
}

func TestDetectPauses_DefaultThreshold(t *testing.T) {
	words := []entities.WordTimestamp{w("a", 0, 1), w("b", 2.6, 3)}
	assert.Len(t, DetectPauses(words, 0), 1)

	words[1].Start = 2.4
	assert.Empty(t, DetectPauses(words, 0))
}

func TestAnalyzePauses_NumbersQualifyingRespondentAnswers(t *testing.T) {
	utterances := []entities.Utterance{
		{Role: entities.RoleInterviewer, Text: "Tell me about yourself", Words: []entities.WordTimestamp{w("Tell", 0, 1), w("me", 5, 6)}},
		{Role: entities.RoleRespondent, Text: "ok", Words: []entities.WordTimestamp{w("ok", 0, 1)}},
		{Role: entities.RoleRespondent, Text: "well I", Words: []entities.WordTimestamp{w("well", 0, 0.5), w("I", 2.6, 2.8)}},
		{Role: entities.RoleRespondent, Text: "no timing"},
		{Role: entities.RoleRespondent, Text: "fine then", Words: []entities.WordTimestamp{w("fine", 0, 0.5), w("then", 0.6, 0.9)}},
	}

	got := AnalyzePauses(utterances, 1.5)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].AnswerIndex)
	require.Len(t, got[0].Pauses, 1)
	assert.InDelta(t, 2.1, got[0].Pauses[0].GapSeconds, 1e-9)

	assert.Equal(t, 2, got[1].AnswerIndex)
	assert.Empty(t, got[1].Pauses)

	assert.Equal(t, 1, CountPauses(got))
}
