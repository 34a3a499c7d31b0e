package session

import (
	"sync"
	"time"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// Store accumulates the utterances of one live session. One writer appends while
// readers may take snapshots concurrently.
type Store struct {
	mu     sync.RWMutex
	items  []entities.Utterance
	closed bool
	now    func() time.Time
}

// NewStore creates an empty, open store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Append copies u into the store. Words are ordered by start time.
func (s *Store) Append(u entities.Utterance) error {
	if !u.Role.IsValid() {
		return entities.ErrInvalidRole
	}

	item := entities.NewUtterance(u.Role, u.Text, u.Words)
	if u.RecordedAt != nil {
		at := *u.RecordedAt
		item.RecordedAt = &at
	} else {
		at := s.now().UTC()
		item.RecordedAt = &at
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entities.ErrStoreClosed
	}
	s.items = append(s.items, item)
	return nil
}

// Snapshot returns a deep copy of the utterances in append order
func (s *Store) Snapshot() []entities.Utterance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Utterance, len(s.items))
	for i, u := range s.items {
		out[i] = entities.NewUtterance(u.Role, u.Text, u.Words)
		if u.RecordedAt != nil {
			at := *u.RecordedAt
			out[i].RecordedAt = &at
		}
	}
	return out
}

// Len returns the number of utterances
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close marks the session ended. Later appends fail with ErrStoreClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
