package session

import (
	"strings"
	"sync"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// EventType names a lifecycle event relayed from the voice SDK
type EventType string

const (
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventTranscript  EventType = "transcript"
	EventError       EventType = "error"
)

// TranscriptFinal marks a transcript fragment that will not be revised
const TranscriptFinal = "final"

// Event is one message from the client
type Event struct {
	Type           EventType                `json:"type"`
	Role           entities.Role            `json:"role,omitempty"`
	TranscriptType string                   `json:"transcriptType,omitempty"`
	Transcript     string                   `json:"transcript,omitempty"`
	Words          []entities.WordTimestamp `json:"words,omitempty"`
	Error          *ErrorInfo               `json:"error,omitempty"`
}

// ErrorInfo is the SDK error shape forwarded by the client
type ErrorInfo struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// IsFinalTranscript reports whether e carries a final transcript fragment
func (e Event) IsFinalTranscript() bool {
	return e.Type == EventTranscript && e.TranscriptType == TranscriptFinal
}

// CommandType names a message sent to the client
type CommandType string

const (
	CommandBeginSession CommandType = "begin-session"
	CommandEndSession   CommandType = "end-session"
	CommandState        CommandType = "state"
	CommandAnalysis     CommandType = "analysis"
)

// State is the session status shown to the user
type State string

const (
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateSpeaking   State = "speaking"
	StateListening  State = "listening"
	StateEnded      State = "ended"
	StateNoAudio    State = "no-audio"
	StateInactive   State = "inactive"
	StateAnalyzing  State = "analyzing"
)

// AssistantConfig is handed to the voice SDK with begin-session
type AssistantConfig struct {
	FirstMessage       string            `json:"firstMessage"`
	SystemPrompt       string            `json:"systemPrompt"`
	Voice              string            `json:"voice,omitempty"`
	Language           string            `json:"language,omitempty"`
	MaxDurationSeconds int               `json:"maxDurationSeconds"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// Command is one message to the client
type Command struct {
	Type      CommandType      `json:"type"`
	Assistant *AssistantConfig `json:"assistant,omitempty"`
	State     State            `json:"state,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Analysis  interface{}      `json:"analysis,omitempty"`
}

// ClassifyError maps a transport error to a session state. Only the shapes the
// SDK is known to emit are recognized; anything else is inactive.
func ClassifyError(info *ErrorInfo) State {
	if info == nil {
		return StateInactive
	}
	text := strings.ToLower(info.Type + " " + info.Message)
	switch {
	case strings.Contains(text, "meeting has ended"),
		strings.Contains(text, "ended normally"),
		strings.Contains(text, "ejected"):
		return StateEnded
	case strings.Contains(text, "audio not detected"),
		strings.Contains(text, "no audio"),
		strings.Contains(text, "microphone"):
		return StateNoAudio
	}
	return StateInactive
}

// Bus delivers client events to a single subscriber
type Bus struct {
	mu         sync.Mutex
	subMu      sync.Mutex
	ch         chan Event
	done       chan struct{}
	once       sync.Once
	hangup     chan struct{}
	hangupOnce sync.Once
	subscribed bool
	closed     bool
}

// NewBus creates a bus with the given buffer
func NewBus(buffer int) *Bus {
	if buffer < 0 {
		buffer = 0
	}
	return &Bus{ch: make(chan Event, buffer), done: make(chan struct{}), hangup: make(chan struct{})}
}

// Subscribe returns the event stream and its unsubscribe func.
// A bus accepts one subscription; later calls fail with ErrSubscriptionUsed.
func (b *Bus) Subscribe() (<-chan Event, func(), error) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if b.subscribed {
		return nil, nil, entities.ErrSubscriptionUsed
	}
	b.subscribed = true
	return b.ch, b.unsubscribe, nil
}

// unsubscribe stops delivery, drops buffered events and closes the stream
func (b *Bus) unsubscribe() {
	b.once.Do(func() {
		close(b.done)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		for {
			select {
			case <-b.ch:
			default:
				close(b.ch)
				return
			}
		}
	})
}

// Publish delivers e, blocking while the buffer is full. It returns false once
// the subscriber is gone.
func (b *Bus) Publish(e Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	select {
	case b.ch <- e:
		return true
	case <-b.done:
		return false
	}
}

// Done is closed after unsubscribe
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Hangup tells the subscriber the producer is gone. Events already published stay readable.
func (b *Bus) Hangup() {
	b.hangupOnce.Do(func() { close(b.hangup) })
}

// HungUp is closed after Hangup
func (b *Bus) HungUp() <-chan struct{} {
	return b.hangup
}
