package repository

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	domainrepo "github.com/johnquangdev/interview-coach/internal/domain/repositories"
)

// InterviewRepository handles interview record operations through GORM
type InterviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

var _ domainrepo.InterviewRepository = (*InterviewRepository)(nil)

// FindByID retrieves a record by its primary id
func (r *InterviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.SessionRecord, error) {
	var record entities.SessionRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return &record, nil
}

// FindLatestByEmail retrieves the most recent record for a candidate identity
func (r *InterviewRepository) FindLatestByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (*entities.SessionRecord, error) {
	query := r.db.WithContext(ctx).Where("email = ?", entities.NormalizeIdentity(email))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var record entities.SessionRecord
	if err := query.Order("created_at DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return &record, nil
}

// UpdateCompletion writes the completion columns of a record
func (r *InterviewRepository) UpdateCompletion(ctx context.Context, id uuid.UUID, fields entities.CompletionFields) error {
	updates, err := fields.Updates()
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&entities.SessionRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &domainrepo.StoreError{Status: http.StatusNotFound, Body: "no interview with id " + id.String(), Err: entities.ErrInterviewNotFound}
	}
	return nil
}

// Create upserts on the unique email column. On conflict only the completion
// columns are overwritten.
func (r *InterviewRepository) Create(ctx context.Context, record *entities.SessionRecord) (*entities.SessionRecord, error) {
	if record == nil {
		return nil, errors.New("record cannot be nil")
	}

	err := r.db.WithContext(ctx).
		Clauses(upsertOnEmail(record)).
		Create(record).Error
	if err != nil {
		return nil, storeError(err)
	}

	// The row id differs from record.ID when the insert hit an existing identity
	stored, err := r.FindLatestByEmail(ctx, record.Email, nil)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return record, nil
	}
	return stored, nil
}

// upsertOnEmail overwrites the same columns a completion update would write,
// so an empty language keeps the stored one
func upsertOnEmail(record *entities.SessionRecord) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: entities.ColumnEmail}},
		DoUpdates: clause.AssignmentColumns(entities.CompletionOf(record).UpdateColumns()),
	}
}

func storeError(err error) error {
	return &domainrepo.StoreError{Status: http.StatusInternalServerError, Body: err.Error(), Err: err}
}
