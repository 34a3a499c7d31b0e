package jobcontext

import (
	"context"
	"fmt"
	"time"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobKind      KeyContext = "job_kind"
	keyJobStartTime KeyContext = "job_start_time"
)

// Job kinds
const (
	KindLiveSession = "live-session"
	KindBatch       = "batch-completion"
)

// DefaultTimeout bounds an analysis run when the caller gives none
const DefaultTimeout = 3 * time.Minute

// JobMetadata holds metadata for an analysis run
type JobMetadata struct {
	JobID     string
	Kind      string
	StartTime time.Time
}

// Begin derives a context with timeout and run metadata
func Begin(parentCtx context.Context, jobID string, kind string, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Create context with timeout to prevent infinite hanging
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobKind, kind)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// Run executes fn once, converting a panic into an error
func Run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	// Check if context was cancelled before execution
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	return fn(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (string, bool) {
	jobID, ok := ctx.Value(keyJobID).(string)
	return jobID, ok
}

// GetKind extracts the job kind from context
func GetKind(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(keyJobKind).(string)
	return kind, ok
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// Elapsed returns the time since Begin, or zero outside a job context
func Elapsed(ctx context.Context) time.Duration {
	start, ok := GetJobStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	kind, _ := GetKind(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:     jobID,
		Kind:      kind,
		StartTime: startTime,
	}
}
