package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// InterviewRepository defines persistence of SessionRecords
type InterviewRepository interface {
	// FindByID returns the record or nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.SessionRecord, error)

	// FindLatestByEmail returns the most recent record for the identity, skipping excludeID
	FindLatestByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (*entities.SessionRecord, error)

	// UpdateCompletion partially updates the completion columns of the record with id
	UpdateCompletion(ctx context.Context, id uuid.UUID, fields entities.CompletionFields) error

	// Create inserts the record. When a record for the same email already exists the
	// completion columns are merged into it instead; resume_url and skills are left as stored.
	// The stored row is returned.
	Create(ctx context.Context, record *entities.SessionRecord) (*entities.SessionRecord, error)
}

// StoreError is a write or read rejected by the backing store
type StoreError struct {
	Status int
	Body   string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store returned status %d: %s: %v", e.Status, e.Body, e.Err)
	}
	return fmt.Sprintf("store returned status %d: %s", e.Status, e.Body)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
