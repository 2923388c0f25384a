// Package jobcontext bounds one analysis job's execution: a derived context
// carrying job metadata, panic recovery, and retry of transient failures.
package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const (
	jobIDKey ctxKey = iota
	workerIDKey
	attemptKey
)

const (
	maxAttempts    = 3
	defaultTimeout = 30 * time.Minute
)

// Overridable in tests; production retries wait seconds, not milliseconds.
var baseRetryDelay = 5 * time.Second

// JobBegin derives a bounded context for one analysis job. A recording can
// take minutes to analyze, so the timeout comes from worker configuration;
// timeout <= 0 falls back to 30 minutes.
func JobBegin(parent context.Context, jobID uuid.UUID, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	ctx = context.WithValue(ctx, jobIDKey, jobID)
	ctx = context.WithValue(ctx, workerIDKey, workerID)
	return ctx, cancel
}

// JobEnd runs fn under the job context with panic recovery. Transient
// failures are retried with exponential backoff until the attempt budget or
// the context deadline runs out; anything else fails the job immediately.
func JobEnd(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return fmt.Errorf("job abandoned after %d attempts: %w", attempt, err)
			}
			return fmt.Errorf("job context closed before execution: %w", ctxErr)
		}

		err = runAttempt(context.WithValue(ctx, attemptKey, attempt), fn)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("job context closed during retry wait: %w", err)
		case <-time.After(baseRetryDelay << uint(attempt)):
		}
	}
	return fmt.Errorf("job failed after %d attempts: %w", maxAttempts, err)
}

func runAttempt(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx)
}

// GetJobID extracts the job ID set by JobBegin
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(jobIDKey).(uuid.UUID)
	return jobID, ok
}

// GetWorkerID returns the claiming worker's ID, or -1 outside a job context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(workerIDKey).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt returns the zero-based attempt number within JobEnd
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(attemptKey).(int)
	if !ok {
		return 0
	}
	return attempt
}

// IsRetryableError reports whether an error is worth another attempt: API
// throttling and server-side failures from the inference and diarization
// providers, transport errors reaching them or MinIO, Postgres lock
// conflicts, and timeouts.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Timeouts from per-call deadlines inside the job
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Transport failures
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") {
		return true
	}

	// Postgres lock conflicts
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// Provider throttling
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Provider-side failures
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	return false
}
