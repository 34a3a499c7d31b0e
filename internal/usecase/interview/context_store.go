package interview

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/johnquangdev/interview-coach/errors"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/cache"
)

const contextKeyPrefix = "session-context:"

// ContextStore keeps session contexts staged before a call, keyed by interview id
type ContextStore struct {
	store cache.Store
	ttl   time.Duration
}

// NewContextStore creates a context store whose entries expire after ttl
func NewContextStore(store cache.Store, ttl time.Duration) *ContextStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &ContextStore{store: store, ttl: ttl}
}

// TTL returns how long staged contexts are kept
func (s *ContextStore) TTL() time.Duration {
	return s.ttl
}

// Stage saves sc under its interview id, replacing any earlier staging
func (s *ContextStore) Stage(ctx context.Context, sc entities.SessionContext) error {
	if sc.InterviewID == "" {
		return apperrors.ErrInvalidArgument("interview id is required")
	}
	sc.CandidateEmail = sc.IdentityKey()

	data, err := json.Marshal(sc)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if err := s.store.Set(ctx, contextKeyPrefix+sc.InterviewID, data, s.ttl); err != nil {
		return apperrors.ErrCacheFailed("stage session context", err)
	}
	return nil
}

// Load returns the staged context for interviewID
func (s *ContextStore) Load(ctx context.Context, interviewID string) (entities.SessionContext, bool, error) {
	if interviewID == "" {
		return entities.SessionContext{}, false, nil
	}
	data, ok, err := s.store.Get(ctx, contextKeyPrefix+interviewID)
	if err != nil {
		return entities.SessionContext{}, false, apperrors.ErrCacheFailed("load session context", err)
	}
	if !ok {
		return entities.SessionContext{}, false, nil
	}

	var sc entities.SessionContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return entities.SessionContext{}, false, apperrors.ErrCacheFailed("decode session context", err)
	}
	return sc, true, nil
}

// Resolve fills the gaps of partial from the context staged under its interview id
func (s *ContextStore) Resolve(ctx context.Context, partial entities.SessionContext) (entities.SessionContext, error) {
	staged, ok, err := s.Load(ctx, partial.InterviewID)
	if err != nil {
		return partial, err
	}
	if !ok {
		return partial, nil
	}
	return partial.Merge(staged), nil
}

// Discard drops the staged context once a session completed
func (s *ContextStore) Discard(ctx context.Context, interviewID string) error {
	if interviewID == "" {
		return nil
	}
	return s.store.Delete(ctx, contextKeyPrefix+interviewID)
}
