package entities

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Column names of the interviews table. The hosted store's schema fixes them.
const (
	ColumnID            = "id"
	ColumnTranscript    = "transcript"
	ColumnFeedback      = "feedback"
	ColumnTone          = "tone"
	ColumnDuration      = "duration"
	ColumnLanguage      = "language"
	ColumnEmail         = "email"
	ColumnCandidateName = "candidate_name"
	ColumnConducted     = "conducted"
	ColumnResumeURL     = "resume_url"
	ColumnSkills        = "skills"
	ColumnCreatedAt     = "created_at"
	ColumnUpdatedAt     = "updated_at"
)

// SessionRecord is the persisted outcome of an interview, one per candidate identity.
// ResumeURL and Skills are written once at creation and never touched afterwards.
type SessionRecord struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Transcript    string         `json:"transcript" gorm:"type:text"`
	Feedback      datatypes.JSON `json:"feedback,omitempty" gorm:"type:jsonb"`
	Tone          datatypes.JSON `json:"tone,omitempty" gorm:"type:jsonb"`
	Duration      int            `json:"duration"` // seconds
	Language      string         `json:"language,omitempty" gorm:"type:varchar(20)"`
	Email         string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CandidateName string         `json:"candidate_name,omitempty" gorm:"type:varchar(255)"`
	Conducted     bool           `json:"conducted" gorm:"default:false"`
	ResumeURL     *string        `json:"resume_url,omitempty" gorm:"type:text"`
	Skills        *string        `json:"skills,omitempty" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SessionRecord) TableName() string {
	return "interviews"
}

// NewSessionRecord creates a record for the given identity
func NewSessionRecord(id uuid.UUID, email string) *SessionRecord {
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now()
	return &SessionRecord{
		ID:        id,
		Email:     NormalizeIdentity(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FeedbackPayload decodes the stored feedback column
func (r *SessionRecord) FeedbackPayload() Payload {
	return decodePayload(r.Feedback)
}

// TonePayload decodes the stored tone column
func (r *SessionRecord) TonePayload() Payload {
	return decodePayload(r.Tone)
}

// CompletionFields are the only columns a later completion may change
type CompletionFields struct {
	Transcript string
	Feedback   Payload
	Tone       Payload
	Duration   int
	Language   string
}

// CompletionOf extracts the completion columns of a new record
func CompletionOf(r *SessionRecord) CompletionFields {
	return CompletionFields{
		Transcript: r.Transcript,
		Feedback:   r.FeedbackPayload(),
		Tone:       r.TonePayload(),
		Duration:   r.Duration,
		Language:   r.Language,
	}
}

// Apply writes the completion onto r and marks it conducted
func (c CompletionFields) Apply(r *SessionRecord) error {
	feedback, err := json.Marshal(c.Feedback)
	if err != nil {
		return err
	}
	tone, err := json.Marshal(c.Tone)
	if err != nil {
		return err
	}
	r.Transcript = c.Transcript
	r.Feedback = datatypes.JSON(feedback)
	r.Tone = datatypes.JSON(tone)
	r.Duration = c.Duration
	if c.Language != "" {
		r.Language = c.Language
	}
	r.Conducted = true
	return nil
}

// Updates renders the completion as a partial-update column map.
// The map never carries id, resume_url or skills.
func (c CompletionFields) Updates() (map[string]interface{}, error) {
	feedback, err := json.Marshal(c.Feedback)
	if err != nil {
		return nil, err
	}
	tone, err := json.Marshal(c.Tone)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		ColumnTranscript: c.Transcript,
		ColumnFeedback:   datatypes.JSON(feedback),
		ColumnTone:       datatypes.JSON(tone),
		ColumnDuration:   c.Duration,
		ColumnConducted:  true,
		ColumnUpdatedAt:  time.Now().UTC(),
	}
	if c.Language != "" {
		updates[ColumnLanguage] = c.Language
	}
	return updates, nil
}

// UpdateColumns lists the columns Updates writes, sorted
func (c CompletionFields) UpdateColumns() []string {
	cols := []string{ColumnTranscript, ColumnFeedback, ColumnTone, ColumnDuration, ColumnConducted, ColumnUpdatedAt}
	if c.Language != "" {
		cols = append(cols, ColumnLanguage)
	}
	sort.Strings(cols)
	return cols
}

func decodePayload(raw datatypes.JSON) Payload {
	if len(raw) == 0 {
		return Payload{}
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return RawText(string(raw))
	}
	return p
}
