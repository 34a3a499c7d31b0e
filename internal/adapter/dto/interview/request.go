package interview

import (
	"time"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// WordRequest is one timed word of an utterance
type WordRequest struct {
	Word       string  `json:"word" validate:"required"`
	Start      float64 `json:"start" validate:"gte=0"`
	End        float64 `json:"end" validate:"gtefield=Start"`
	Confidence float64 `json:"confidence,omitempty" validate:"gte=0,lte=1"`
}

// UtteranceRequest is one transcribed turn
type UtteranceRequest struct {
	Role  string        `json:"role" validate:"required,utterance_role"`
	Text  string        `json:"text"`
	Words []WordRequest `json:"words,omitempty" validate:"omitempty,dive"`
}

// CompleteInterviewRequest runs the post-call pipeline over a full transcript
type CompleteInterviewRequest struct {
	InterviewID     string             `json:"interview_id,omitempty" validate:"omitempty,max=64"`
	CandidateEmail  string             `json:"candidate_email,omitempty" validate:"omitempty,email"`
	CandidateName   string             `json:"candidate_name,omitempty" validate:"omitempty,max=255"`
	Language        string             `json:"language,omitempty" validate:"omitempty,max=20"`
	ResumePath      string             `json:"resume_path,omitempty" validate:"omitempty,max=1024"`
	ResumeText      string             `json:"resume_text,omitempty"`
	DurationSeconds float64            `json:"duration_seconds" validate:"gte=0"`
	Utterances      []UtteranceRequest `json:"utterances" validate:"required,min=1,dive"`
}

// SessionContext returns the caller-supplied part of the session context
func (r *CompleteInterviewRequest) SessionContext() entities.SessionContext {
	return entities.SessionContext{
		InterviewID:    r.InterviewID,
		CandidateEmail: r.CandidateEmail,
		CandidateName:  r.CandidateName,
		Language:       r.Language,
		ResumePath:     r.ResumePath,
		ResumeText:     r.ResumeText,
	}
}

// Duration converts DurationSeconds
func (r *CompleteInterviewRequest) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}

// ToUtterances converts the request into domain utterances in request order
func (r *CompleteInterviewRequest) ToUtterances() []entities.Utterance {
	out := make([]entities.Utterance, 0, len(r.Utterances))
	for _, u := range r.Utterances {
		words := make([]entities.WordTimestamp, 0, len(u.Words))
		for _, w := range u.Words {
			words = append(words, entities.WordTimestamp{
				Word:       w.Word,
				Start:      w.Start,
				End:        w.End,
				Confidence: w.Confidence,
			})
		}
		out = append(out, entities.NewUtterance(entities.Role(u.Role), u.Text, words))
	}
	return out
}

// StageContextRequest stages candidate data before the live session starts
type StageContextRequest struct {
	CandidateEmail string `json:"candidate_email" validate:"required,email"`
	CandidateName  string `json:"candidate_name,omitempty" validate:"omitempty,max=255"`
	Language       string `json:"language,omitempty" validate:"omitempty,max=20"`
	ResumePath     string `json:"resume_path,omitempty" validate:"omitempty,max=1024"`
	ResumeText     string `json:"resume_text,omitempty"`
}

// SessionContext builds the staged context for interviewID
func (r *StageContextRequest) SessionContext(interviewID string) entities.SessionContext {
	return entities.SessionContext{
		InterviewID:    interviewID,
		CandidateEmail: r.CandidateEmail,
		CandidateName:  r.CandidateName,
		Language:       r.Language,
		ResumePath:     r.ResumePath,
		ResumeText:     r.ResumeText,
	}
}

// SessionQuery identifies the candidate of a live session
type SessionQuery struct {
	InterviewID    string `query:"interview_id" validate:"omitempty,max=64"`
	CandidateEmail string `query:"email" validate:"omitempty,email"`
	CandidateName  string `query:"name" validate:"omitempty,max=255"`
	Language       string `query:"language" validate:"omitempty,max=20"`
}

// SessionContext returns the query as a partial session context
func (q *SessionQuery) SessionContext() entities.SessionContext {
	return entities.SessionContext{
		InterviewID:    q.InterviewID,
		CandidateEmail: q.CandidateEmail,
		CandidateName:  q.CandidateName,
		Language:       q.Language,
	}
}
