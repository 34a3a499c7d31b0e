package entities

import "strings"

// SessionContext carries what the client knew before the call started:
// interview identity, candidate identity and the staged resume attachment.
type SessionContext struct {
	InterviewID    string `json:"interview_id,omitempty"`
	CandidateEmail string `json:"candidate_email"`
	CandidateName  string `json:"candidate_name,omitempty"`
	Language       string `json:"language,omitempty"`
	ResumePath     string `json:"resume_path,omitempty"`
	ResumeText     string `json:"resume_text,omitempty"`
}

// IdentityKey is the normalized candidate identity used for lookups and locking
func (c SessionContext) IdentityKey() string {
	return NormalizeIdentity(c.CandidateEmail)
}

// Merge fills empty fields of c from staged, keeping values c already has
func (c SessionContext) Merge(staged SessionContext) SessionContext {
	if c.InterviewID == "" {
		c.InterviewID = staged.InterviewID
	}
	if c.CandidateEmail == "" {
		c.CandidateEmail = staged.CandidateEmail
	}
	if c.CandidateName == "" {
		c.CandidateName = staged.CandidateName
	}
	if c.Language == "" {
		c.Language = staged.Language
	}
	if c.ResumePath == "" {
		c.ResumePath = staged.ResumePath
	}
	if c.ResumeText == "" {
		c.ResumeText = staged.ResumeText
	}
	return c
}

// NormalizeIdentity lowercases and trims an email-like identity
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
