package entities

// DefaultPauseThreshold is the minimum silence, in seconds, reported as a pause
const DefaultPauseThreshold = 1.5

// PauseRecord is one detected silence between two words of an answer
type PauseRecord struct {
	FromToken  string  `json:"from_token"`
	ToToken    string  `json:"to_token"`
	GapSeconds float64 `json:"gap_seconds"`
}

// AnswerPauses groups the pauses of one respondent answer.
// AnswerIndex is 1-based among respondent answers that carry timing.
type AnswerPauses struct {
	AnswerIndex int           `json:"answer_index"`
	Pauses      []PauseRecord `json:"pauses"`
}
