package analysis

import "github.com/johnquangdev/interview-coach/internal/domain/entities"

// DetectPauses returns the silences between consecutive words that exceed threshold,
// in word order. A non-positive threshold uses entities.DefaultPauseThreshold.
func DetectPauses(words []entities.WordTimestamp, threshold float64) []entities.PauseRecord {
	if threshold <= 0 {
		threshold = entities.DefaultPauseThreshold
	}
	pauses := make([]entities.PauseRecord, 0)
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		if gap > threshold {
			pauses = append(pauses, entities.PauseRecord{
				FromToken:  words[i-1].Word,
				ToToken:    words[i].Word,
				GapSeconds: gap,
			})
		}
	}
	return pauses
}

// AnalyzePauses runs DetectPauses over every respondent answer that has at least
// two timed words. Answers are numbered from 1 in session order among those
// qualifying utterances; answers without pauses are still listed.
func AnalyzePauses(utterances []entities.Utterance, threshold float64) []entities.AnswerPauses {
	out := make([]entities.AnswerPauses, 0)
	index := 0
	for _, u := range utterances {
		if !u.IsRespondent() || !u.HasTiming(2) {
			continue
		}
		index++
		out = append(out, entities.AnswerPauses{
			AnswerIndex: index,
			Pauses:      DetectPauses(u.Words, threshold),
		})
	}
	return out
}

// CountPauses sums the pauses across answers
func CountPauses(answers []entities.AnswerPauses) int {
	n := 0
	for _, a := range answers {
		n += len(a.Pauses)
	}
	return n
}
