package entities

import (
	"sort"
	"time"
)

// Role tags who spoke an utterance. Values match the voice provider's wire format.
type Role string

const (
	RoleRespondent  Role = "user"
	RoleInterviewer Role = "assistant"
	RoleSystem      Role = "system"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleRespondent, RoleInterviewer, RoleSystem:
		return true
	}
	return false
}

// WordTimestamp represents a single word with timing in seconds
type WordTimestamp struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Utterance is one transcribed turn of a session
type Utterance struct {
	Role       Role            `json:"role"`
	Text       string          `json:"text"`
	Words      []WordTimestamp `json:"words,omitempty"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

// NewUtterance copies the given words and orders them by start time.
func NewUtterance(role Role, text string, words []WordTimestamp) Utterance {
	u := Utterance{Role: role, Text: text}
	if len(words) > 0 {
		u.Words = make([]WordTimestamp, len(words))
		copy(u.Words, words)
		sort.SliceStable(u.Words, func(i, j int) bool {
			return u.Words[i].Start < u.Words[j].Start
		})
	}
	return u
}

// IsRespondent reports whether the utterance was spoken by the candidate
func (u Utterance) IsRespondent() bool {
	return u.Role == RoleRespondent
}

// HasTiming reports whether the utterance carries at least n timed words
func (u Utterance) HasTiming(n int) bool {
	return len(u.Words) >= n
}
