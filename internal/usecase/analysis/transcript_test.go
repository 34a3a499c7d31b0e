package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

func TestRenderTranscript(t *testing.T) {
	got := RenderTranscript([]entities.Utterance{
		{Role: entities.RoleInterviewer, Text: "Why this role?"},
		{Role: entities.RoleRespondent, Text: "I like data."},
	})
	assert.Equal(t, "assistant: Why this role?\nuser: I like data.", got)
}

func TestRespondentText(t *testing.T) {
	got := RespondentText([]entities.Utterance{
		{Role: entities.RoleRespondent, Text: "one"},
		{Role: entities.RoleInterviewer, Text: "skip"},
		{Role: entities.RoleSystem, Text: "skip"},
		{Role: entities.RoleRespondent, Text: "two"},
	})
	assert.Equal(t, "one\ntwo", got)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", MaxTranscriptChars+500)
	assert.Len(t, Truncate(long, MaxTranscriptChars), MaxTranscriptChars)

	short := "short"
	assert.Equal(t, short, Truncate(short, MaxTranscriptChars))

	multi := strings.Repeat("é", 10)
	assert.Equal(t, 4, utf8.RuneCountInString(Truncate(multi, 4)))
}
