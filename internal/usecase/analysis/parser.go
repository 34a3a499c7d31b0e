package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// Fixed placeholders for failed or indeterminate collaborator calls
const (
	ToneFailedSentinel    = "Tone analysis failed"
	NoToneSentinel        = "No tone detected"
	FeedbackFailedMessage = "Could not generate feedback."
)

// NormalizeTone turns the classifier's tone field into a Payload. It never fails:
// objects pass through, strings are unfenced and parsed (falling back to the
// cleaned text), and anything else becomes the no-tone sentinel.
func NormalizeTone(raw json.RawMessage) entities.Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return entities.Sentinel(NoToneSentinel)
	}

	switch raw[0] {
	case '{':
		if obj, ok := decodeObject(raw); ok {
			return entities.Structured(obj)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return entities.Sentinel(NoToneSentinel)
		}
		cleaned := extractJSON(s)
		if obj, ok := decodeObject([]byte(cleaned)); ok {
			return entities.Structured(obj)
		}
		return entities.RawText(cleaned)
	}
	return entities.Sentinel(NoToneSentinel)
}

// NormalizeFeedback turns the generator's feedback field into a structured Payload.
// Unparseable text is wrapped as {raw: text}; a missing field counts as a failed call.
func NormalizeFeedback(raw json.RawMessage) entities.Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return FeedbackFailed()
	}

	switch raw[0] {
	case '{':
		if obj, ok := decodeObject(raw); ok {
			return entities.Structured(obj)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if obj, ok := decodeObject([]byte(extractJSON(s))); ok {
				return entities.Structured(obj)
			}
			return rawFeedback(s)
		}
	}
	return rawFeedback(string(raw))
}

// FeedbackFailed is the feedback recorded when the generator could not be reached
func FeedbackFailed() entities.Payload {
	return rawFeedback(FeedbackFailedMessage)
}

func rawFeedback(text string) entities.Payload {
	return entities.Structured(map[string]any{"raw": text})
}

// Renormalize feeds an already-normalized tone payload back through NormalizeTone.
// Sentinels are returned unchanged.
func Renormalize(p entities.Payload) entities.Payload {
	if p.Kind == entities.PayloadSentinel {
		return p
	}
	b, err := json.Marshal(p)
	if err != nil {
		return p
	}
	return NormalizeTone(b)
}

func decodeObject(b []byte) (map[string]any, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimPrefix(content, "json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	// Some models answer with a bare "json" label in front of the reply.
	// Words that merely start with json, like "jsonify", are kept.
	for hasJSONLabel(content) {
		content = strings.TrimSpace(strings.TrimPrefix(content, "json"))
	}

	return strings.TrimSpace(content)
}

func hasJSONLabel(s string) bool {
	if !strings.HasPrefix(s, "json") {
		return false
	}
	rest := s[len("json"):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
