package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// PayloadKind tags how a collaborator reply was normalized
type PayloadKind int

const (
	// PayloadStructured holds a parsed JSON object
	PayloadStructured PayloadKind = iota
	// PayloadRawText holds text that could not be parsed
	PayloadRawText
	// PayloadSentinel holds a fixed placeholder for a failed call
	PayloadSentinel
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadStructured:
		return "structured"
	case PayloadRawText:
		return "raw"
	case PayloadSentinel:
		return "sentinel"
	}
	return "unknown"
}

// Payload is the normalized form of a loosely-typed tone or feedback reply.
// Structured payloads encode as a JSON object, the other kinds as a JSON string.
type Payload struct {
	Kind   PayloadKind
	Object map[string]any
	Text   string
}

// Structured builds a structured payload
func Structured(obj map[string]any) Payload {
	if obj == nil {
		obj = map[string]any{}
	}
	return Payload{Kind: PayloadStructured, Object: obj}
}

// RawText builds a raw-text payload
func RawText(text string) Payload {
	return Payload{Kind: PayloadRawText, Text: text}
}

// Sentinel builds a sentinel payload
func Sentinel(text string) Payload {
	return Payload{Kind: PayloadSentinel, Text: text}
}

// IsStructured reports whether p holds an object
func (p Payload) IsStructured() bool {
	return p.Kind == PayloadStructured
}

// MarshalJSON implements json.Marshaler
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Kind == PayloadStructured {
		if p.Object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(p.Object)
	}
	return json.Marshal(p.Text)
}

// UnmarshalJSON implements json.Unmarshaler. Objects become structured,
// strings become raw text.
func (p *Payload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Payload{}
		return nil
	}
	switch data[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*p = Structured(obj)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = RawText(s)
	default:
		return fmt.Errorf("payload must be an object or a string, got %q", string(data))
	}
	return nil
}

// ToneResult is the typed view over a structured tone payload
type ToneResult struct {
	Confidence *float64 `json:"confidence,omitempty"`
	Tone       string   `json:"tone,omitempty"`
	Energy     string   `json:"energy,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

// ToneResult decodes the known tone fields. ok is false for non-structured payloads.
func (p Payload) ToneResult() (ToneResult, bool) {
	if !p.IsStructured() {
		return ToneResult{}, false
	}
	res := ToneResult{
		Tone:    textField(p.Object, "tone"),
		Energy:  textField(p.Object, "energy"),
		Summary: textField(p.Object, "summary"),
	}
	if v, ok := p.Object["confidence"].(float64); ok {
		res.Confidence = &v
	}
	return res, true
}

// FeedbackResult is the typed view over a structured feedback payload
type FeedbackResult struct {
	Communication         string `json:"communication,omitempty"`
	AnalyticalThinking    string `json:"analytical_thinking,omitempty"`
	TechnicalDepth        string `json:"technical_depth,omitempty"`
	Adaptability          string `json:"adaptability,omitempty"`
	Motivation            string `json:"motivation,omitempty"`
	Confidence            string `json:"confidence,omitempty"`
	Collaboration         string `json:"collaboration,omitempty"`
	Accountability        string `json:"accountability,omitempty"`
	CulturalFit           string `json:"cultural_fit,omitempty"`
	Leadership            string `json:"leadership,omitempty"`
	DecisionMaking        string `json:"decision_making,omitempty"`
	TimeManagement        string `json:"time_management,omitempty"`
	EmotionalIntelligence string `json:"emotional_intelligence,omitempty"`
	FinalAssessment       string `json:"final_assessment,omitempty"`
	Raw                   string `json:"raw,omitempty"`
}

// FeedbackResult decodes the rubric fields, stringifying non-text values
func (p Payload) FeedbackResult() FeedbackResult {
	if !p.IsStructured() {
		return FeedbackResult{Raw: p.Text}
	}
	o := p.Object
	return FeedbackResult{
		Communication:         textField(o, "communication"),
		AnalyticalThinking:    textField(o, "analytical_thinking"),
		TechnicalDepth:        textField(o, "technical_depth"),
		Adaptability:          textField(o, "adaptability"),
		Motivation:            textField(o, "motivation"),
		Confidence:            textField(o, "confidence"),
		Collaboration:         textField(o, "collaboration"),
		Accountability:        textField(o, "accountability"),
		CulturalFit:           textField(o, "cultural_fit"),
		Leadership:            textField(o, "leadership"),
		DecisionMaking:        textField(o, "decision_making"),
		TimeManagement:        textField(o, "time_management"),
		EmotionalIntelligence: textField(o, "emotional_intelligence"),
		FinalAssessment:       textField(o, "final_assessment"),
		Raw:                   textField(o, "raw"),
	}
}

// Keys returns the object keys in sorted order
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p.Object))
	for k := range p.Object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func textField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
