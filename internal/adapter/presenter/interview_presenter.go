package presenter

import (
	"strings"

	interviewDTO "github.com/johnquangdev/interview-coach/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/usecase/analysis"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
)

// ToInterviewResponse converts a SessionRecord entity to InterviewResponse DTO
func ToInterviewResponse(r *entities.SessionRecord) *interviewDTO.InterviewResponse {
	if r == nil {
		return nil
	}

	response := &interviewDTO.InterviewResponse{
		ID:            r.ID.String(),
		Email:         r.Email,
		CandidateName: r.CandidateName,
		Language:      r.Language,
		Transcript:    r.Transcript,
		Duration:      r.Duration,
		Conducted:     r.Conducted,
		Tone:          r.TonePayload(),
		Feedback:      r.FeedbackPayload().FeedbackResult(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	// Set optional fields
	if r.ResumeURL != nil {
		response.ResumeURL = *r.ResumeURL
	}
	if r.Skills != nil {
		response.Skills = SplitSkills(*r.Skills)
	}

	return response
}

// ToAnalysisResponse converts a pipeline Result to AnalysisResponse DTO
func ToAnalysisResponse(res *interview.Result) *interviewDTO.AnalysisResponse {
	if res == nil {
		return nil
	}

	response := &interviewDTO.AnalysisResponse{
		InterviewID: res.InterviewID,
		Pauses:      res.Pauses,
		PauseCount:  analysis.CountPauses(res.Pauses),
		Tone:        res.Tone,
		Feedback:    res.Feedback.FeedbackResult(),
		Duration:    res.Duration,
		Interview:   ToInterviewResponse(res.Record),
	}
	if response.Pauses == nil {
		response.Pauses = []entities.AnswerPauses{}
	}
	if res.PersistFailure != nil {
		response.PersistFailure = &interviewDTO.PersistFailureResponse{
			Status: res.PersistFailure.Status,
			Body:   res.PersistFailure.Body,
		}
	}

	return response
}

// SplitSkills splits the stored comma-joined skill list
func SplitSkills(skills string) []string {
	var out []string
	for _, s := range strings.Split(skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
