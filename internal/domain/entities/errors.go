package entities

import "errors"

// Domain errors
var (
	// Session errors
	ErrStoreClosed      = errors.New("utterance store is closed")
	ErrInvalidRole      = errors.New("invalid utterance role")
	ErrSessionEnded     = errors.New("session already ended")
	ErrSubscriptionUsed = errors.New("event stream already has a subscriber")

	// Interview errors
	ErrInterviewNotFound = errors.New("interview not found")
	ErrMissingIdentity   = errors.New("candidate identity is required")

	// Context errors
	ErrContextNotStaged = errors.New("session context not staged")
)
