package cache

import (
	"context"
	"time"
)

// StatusCache is the fast-path store for job status lookups, so polling
// clients do not hit Postgres on every request. Misses fall back to the DB.
type StatusCache interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// JobStatusKey builds the cache key for one analysis job
func JobStatusKey(jobID string) string {
	return "analysis:status:" + jobID
}
