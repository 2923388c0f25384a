package pipeline

import (
	"sync/atomic"
	"time"
)

// MetricsRecorder mirrors tracker updates to an external metrics system.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	ObserveWindow(duration time.Duration, ok bool)
	AddTokens(inputTokens, outputTokens int64)
}

// UsageSnapshot is a point-in-time copy of the accumulated counters
type UsageSnapshot struct {
	ChunkCalls      int64
	FailedChunks    int64
	SynthesisCalls  int64
	InputTokens     int64
	OutputTokens    int64
	TotalDurationMs int64
}

// UsageTracker accumulates token usage and timing for one pipeline run.
// Increment-only, safe for concurrent updates. Reset at run start.
type UsageTracker struct {
	chunkCalls      atomic.Int64
	failedChunks    atomic.Int64
	synthesisCalls  atomic.Int64
	inputTokens     atomic.Int64
	outputTokens    atomic.Int64
	totalDurationMs atomic.Int64

	recorder MetricsRecorder
}

// NewUsageTracker creates a tracker. recorder may be nil.
func NewUsageTracker(recorder MetricsRecorder) *UsageTracker {
	return &UsageTracker{recorder: recorder}
}

// Reset clears all counters for a new run
func (t *UsageTracker) Reset() {
	t.chunkCalls.Store(0)
	t.failedChunks.Store(0)
	t.synthesisCalls.Store(0)
	t.inputTokens.Store(0)
	t.outputTokens.Store(0)
	t.totalDurationMs.Store(0)
}

// AddChunk records one per-window analysis call
func (t *UsageTracker) AddChunk(usage *Usage, elapsed time.Duration, ok bool) {
	t.chunkCalls.Add(1)
	if !ok {
		t.failedChunks.Add(1)
	}
	t.addUsage(usage)
	t.totalDurationMs.Add(elapsed.Milliseconds())
	if t.recorder != nil {
		t.recorder.ObserveWindow(elapsed, ok)
	}
}

// AddSynthesis records the merge-phase call
func (t *UsageTracker) AddSynthesis(usage *Usage, elapsed time.Duration) {
	t.synthesisCalls.Add(1)
	t.addUsage(usage)
	t.totalDurationMs.Add(elapsed.Milliseconds())
}

func (t *UsageTracker) addUsage(usage *Usage) {
	if usage == nil {
		return
	}
	t.inputTokens.Add(int64(usage.InputTokens))
	t.outputTokens.Add(int64(usage.OutputTokens))
	if t.recorder != nil {
		t.recorder.AddTokens(int64(usage.InputTokens), int64(usage.OutputTokens))
	}
}

// Snapshot returns a copy of the current counters
func (t *UsageTracker) Snapshot() UsageSnapshot {
	return UsageSnapshot{
		ChunkCalls:      t.chunkCalls.Load(),
		FailedChunks:    t.failedChunks.Load(),
		SynthesisCalls:  t.synthesisCalls.Load(),
		InputTokens:     t.inputTokens.Load(),
		OutputTokens:    t.outputTokens.Load(),
		TotalDurationMs: t.totalDurationMs.Load(),
	}
}
