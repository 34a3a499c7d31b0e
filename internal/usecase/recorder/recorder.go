package recorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/interview-coach/errors"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	domainrepo "github.com/johnquangdev/interview-coach/internal/domain/repositories"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/interview-coach/pkg/ai"
	"github.com/johnquangdev/interview-coach/pkg/logger"
)

const (
	pathCreate = "create"
	pathUpdate = "update"

	lockPrefix = "interview-lock:"
)

var errNotResolved = errors.New("record not resolved")

// URLBuilder turns a stored resume path into a public retrieval URL
type URLBuilder interface {
	PublicURL(path string) string
}

// Input is everything one completion persists
type Input struct {
	Context    entities.SessionContext
	Transcript string
	Feedback   entities.Payload
	Tone       entities.Payload
	Duration   time.Duration
}

// Recorder persists one SessionRecord per candidate identity
type Recorder struct {
	repo       domainrepo.InterviewRepository
	locker     cache.Locker
	skills     ai.SkillExtractor
	urls       URLBuilder
	metrics    *metrics.Metrics
	logger     *zap.Logger
	retryDelay time.Duration
}

// New creates a recorder. skills and urls may be nil.
func New(repo domainrepo.InterviewRepository, locker cache.Locker, skills ai.SkillExtractor, urls URLBuilder, m *metrics.Metrics, log *zap.Logger) *Recorder {
	if locker == nil {
		locker = cache.NewMemoryLocker()
	}
	return &Recorder{
		repo:       repo,
		locker:     locker,
		skills:     skills,
		urls:       urls,
		metrics:    m,
		logger:     logger.OrNop(log),
		retryDelay: 200 * time.Millisecond,
	}
}

// Record resolves the candidate's existing record and updates it, or creates a new one.
// Completions for the same identity are serialized.
func (r *Recorder) Record(ctx context.Context, in Input) (*entities.SessionRecord, error) {
	identity := in.Context.IdentityKey()
	if identity == "" {
		return nil, apperrors.ErrInvalidIdentity(in.Context.CandidateEmail)
	}

	unlock, err := r.locker.Lock(ctx, lockPrefix+identity)
	if err != nil {
		return nil, apperrors.ErrLockFailed(lockPrefix+identity, err)
	}
	defer unlock()

	log := r.logger.With(
		zap.String(logger.FieldInterviewID, in.Context.InterviewID),
		zap.String(logger.FieldIdentity, identity),
	)

	existing, err := r.resolve(ctx, in.Context)
	if err != nil {
		r.metrics.ObservePersistence("resolve", metrics.OutcomeFailed)
		return nil, persistFailure(err)
	}

	fields := entities.CompletionFields{
		Transcript: in.Transcript,
		Feedback:   in.Feedback,
		Tone:       in.Tone,
		Duration:   durationSeconds(in.Duration),
		Language:   in.Context.Language,
	}

	if existing != nil {
		if err := r.repo.UpdateCompletion(ctx, existing.ID, fields); err != nil {
			r.metrics.ObservePersistence(pathUpdate, metrics.OutcomeFailed)
			log.Error("failed to update interview", zap.String("record_id", existing.ID.String()), zap.Error(err))
			return nil, persistFailure(err)
		}
		if err := fields.Apply(existing); err != nil {
			return nil, persistFailure(err)
		}
		r.metrics.ObservePersistence(pathUpdate, metrics.OutcomeOK)
		log.Info("interview updated", zap.String("record_id", existing.ID.String()))
		return existing, nil
	}

	record := entities.NewSessionRecord(primaryID(in.Context.InterviewID), identity)
	record.CandidateName = in.Context.CandidateName
	record.Language = in.Context.Language
	if err := fields.Apply(record); err != nil {
		return nil, persistFailure(err)
	}
	record.Skills = r.extractSkills(ctx, in.Context.ResumeText, log)
	if in.Context.ResumePath != "" && r.urls != nil {
		if u := r.urls.PublicURL(in.Context.ResumePath); u != "" {
			record.ResumeURL = &u
		}
	}

	stored, err := r.repo.Create(ctx, record)
	if err != nil {
		r.metrics.ObservePersistence(pathCreate, metrics.OutcomeFailed)
		log.Error("failed to create interview", zap.Error(err))
		return nil, persistFailure(err)
	}
	r.metrics.ObservePersistence(pathCreate, metrics.OutcomeOK)
	log.Info("interview created", zap.String("record_id", stored.ID.String()))
	return stored, nil
}

// resolve finds the record to update. A well-formed primary id that matches nothing
// is re-resolved once before the caller falls back to create.
func (r *Recorder) resolve(ctx context.Context, sc entities.SessionContext) (*entities.SessionRecord, error) {
	id, hasID := parseID(sc.InterviewID)

	var found *entities.SessionRecord
	attempt := func() error {
		rec, err := r.find(ctx, id, hasID, sc.IdentityKey())
		if err != nil {
			return backoff.Permanent(err)
		}
		if rec == nil && hasID {
			return errNotResolved
		}
		found = rec
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.retryDelay), 1), ctx)
	err := backoff.Retry(attempt, policy)
	if errors.Is(err, errNotResolved) {
		return nil, nil
	}
	return found, err
}

func (r *Recorder) find(ctx context.Context, id uuid.UUID, hasID bool, email string) (*entities.SessionRecord, error) {
	if hasID {
		rec, err := r.repo.FindByID(ctx, id)
		if err != nil || rec != nil {
			return rec, err
		}
		return r.repo.FindLatestByEmail(ctx, email, &id)
	}
	return r.repo.FindLatestByEmail(ctx, email, nil)
}

func (r *Recorder) extractSkills(ctx context.Context, resume string, log *zap.Logger) *string {
	if resume == "" || r.skills == nil {
		return nil
	}
	skills, err := r.skills.ExtractSkills(ctx, resume)
	if err != nil {
		r.metrics.ObserveCollaborator(r.skills.Name(), metrics.OutcomeFailed)
		log.Warn("skill extraction failed, creating record without skills",
			zap.String(logger.FieldProvider, r.skills.Name()),
			zap.Error(err),
		)
		return nil
	}
	r.metrics.ObserveCollaborator(r.skills.Name(), metrics.OutcomeOK)
	if skills == "" {
		return nil
	}
	return &skills
}

func parseID(s string) (uuid.UUID, bool) {
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func primaryID(s string) uuid.UUID {
	id, _ := parseID(s)
	return id
}

func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds()))
}

// persistFailure maps a store error to an AppError carrying its status and body
func persistFailure(err error) error {
	var storeErr *domainrepo.StoreError
	if errors.As(err, &storeErr) {
		return apperrors.ErrInterviewPersistFailed(storeErr.Status, storeErr.Body, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrInterviewPersistFailed(http.StatusGatewayTimeout, err.Error(), err)
	}
	return apperrors.ErrInterviewPersistFailed(http.StatusInternalServerError, fmt.Sprint(err), err)
}
