package analysis

import (
	"strings"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// MaxTranscriptChars bounds the transcript sent to the feedback endpoint
const MaxTranscriptChars = 8000

// RenderTranscript renders "{role}: {text}" per utterance joined by newlines
func RenderTranscript(utterances []entities.Utterance) string {
	lines := make([]string, 0, len(utterances))
	for _, u := range utterances {
		lines = append(lines, string(u.Role)+": "+u.Text)
	}
	return strings.Join(lines, "\n")
}

// RespondentText joins the respondent utterance texts by newlines in session order
func RespondentText(utterances []entities.Utterance) string {
	lines := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if u.IsRespondent() {
			lines = append(lines, u.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// Truncate cuts s to at most max characters
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
