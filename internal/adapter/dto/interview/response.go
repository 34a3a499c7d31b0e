package interview

import (
	"time"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// InterviewResponse represents a persisted interview record
type InterviewResponse struct {
	ID            string                  `json:"id"`
	Email         string                  `json:"email"`
	CandidateName string                  `json:"candidate_name,omitempty"`
	Language      string                  `json:"language,omitempty"`
	Transcript    string                  `json:"transcript"`
	Duration      int                     `json:"duration"`
	Conducted     bool                    `json:"conducted"`
	ResumeURL     string                  `json:"resume_url,omitempty"`
	Skills        []string                `json:"skills,omitempty"`
	Tone          entities.Payload        `json:"tone"`
	Feedback      entities.FeedbackResult `json:"feedback"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// PersistFailureResponse is the store rejection of a completion
type PersistFailureResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// AnalysisResponse represents the outcome of one completion
type AnalysisResponse struct {
	InterviewID    string                  `json:"interview_id,omitempty"`
	Pauses         []entities.AnswerPauses `json:"pauses"`
	PauseCount     int                     `json:"pause_count"`
	Tone           entities.Payload        `json:"tone"`
	Feedback       entities.FeedbackResult `json:"feedback"`
	Duration       int                     `json:"duration"`
	Interview      *InterviewResponse      `json:"interview,omitempty"`
	PersistFailure *PersistFailureResponse `json:"persist_failure,omitempty"`
}

// StagedContextResponse echoes a staged session context
type StagedContextResponse struct {
	InterviewID    string    `json:"interview_id"`
	CandidateEmail string    `json:"candidate_email"`
	CandidateName  string    `json:"candidate_name,omitempty"`
	ResumeURL      string    `json:"resume_url,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}
