package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/meetingnotes-team/meeting-notes/errors"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

type fakeClip struct {
	path     string
	released *[]string
}

func (c *fakeClip) Path() string { return c.path }

func (c *fakeClip) Release() error {
	*c.released = append(*c.released, c.path)
	return nil
}

type fakeSource struct {
	duration   float64
	extractErr map[int]error // window index -> error
	extracted  int
	released   []string
}

func (s *fakeSource) Duration(_ context.Context) (float64, error) {
	return s.duration, nil
}

func (s *fakeSource) ExtractRange(_ context.Context, start, end float64) (AudioClip, error) {
	idx := s.extracted
	s.extracted++
	if err, ok := s.extractErr[idx]; ok {
		return nil, err
	}
	return &fakeClip{path: clipName(idx), released: &s.released}, nil
}

func clipName(idx int) string {
	return "/tmp/window-" + string(rune('0'+idx)) + ".wav"
}

func newTestOrchestrator(inference Inference) (*Orchestrator, *UsageTracker) {
	tracker := NewUsageTracker(nil)
	analyzer := NewChunkAnalyzer(inference, tracker, nil, 0)
	synth := NewReportSynthesizer(inference, tracker, nil, 0)
	return NewOrchestrator(analyzer, synth, tracker, nil), tracker
}

func TestRun_SingleWindow(t *testing.T) {
	inference := &fakeInference{results: []InferResult{{Text: "whole meeting"}}}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 600}

	result, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err)
	require.Equal(t, 1, result.WindowCount)
	require.Equal(t, "whole meeting", result.Report.Text)
	require.Len(t, inference.requests, 1, "no synthesis call for a single window")
}

func TestRun_MultiWindowOrderAndSynthesis(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "part one"}, {Text: "part two"}, {Text: "final summary"}},
	}
	orchestrator, _ := newTestOrchestrator(inference)
	// 1790s splits into exactly two 900s windows
	source := &fakeSource{duration: 1790}

	result, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err)
	require.Equal(t, 2, result.WindowCount)
	require.Len(t, inference.requests, 3)
	// chunk calls carry audio, the merge call does not
	require.NotEmpty(t, inference.requests[0].AudioPath)
	require.NotEmpty(t, inference.requests[1].AudioPath)
	require.Empty(t, inference.requests[2].AudioPath)
	require.Contains(t, result.Report.Text, "final summary")
	require.Contains(t, result.Report.Text, "part one")
	require.Contains(t, result.Report.Text, "part two")
}

func TestRun_NoDataLossOnChunkFailure(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "part one"}, {}, {Text: "merged"}},
		errs:    []error{nil, errors.New("inference exploded"), nil},
	}
	orchestrator, tracker := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1790}

	result, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err, "a failed window must not abort the run")
	require.Equal(t, 2, result.WindowCount)
	require.Equal(t, 1, result.FailedWindows)
	require.Contains(t, result.Report.Text, "inference exploded")
	require.Equal(t, int64(1), tracker.Snapshot().FailedChunks)
}

func TestRun_CleanupAlwaysRuns(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "one"}, {}, {Text: "merged"}},
		errs:    []error{nil, errors.New("boom"), nil},
	}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1790}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err)
	require.Equal(t, []string{clipName(0), clipName(1)}, source.released,
		"every extracted clip is released, failed analysis included")
}

func TestRun_ExtractionFailureIsMarkedNotFatal(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "part two"}, {Text: "merged"}},
	}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1790, extractErr: map[int]error{0: errors.New("ffmpeg failed")}}

	result, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err)
	require.Equal(t, 1, result.FailedWindows)
	require.Contains(t, result.Report.Text, "ffmpeg failed")
	require.Equal(t, []string{clipName(1)}, source.released)
}

func TestRun_ZeroDurationIsInvalidConfiguration(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(&fakeInference{})
	source := &fakeSource{duration: 0}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.Error(t, err)
	appErr, ok := err.(apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrorCode_PIPELINE_INVALID_CONFIGURATION, appErr.Code)
}

func TestRun_NoSectionsIsInvalidConfiguration(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(&fakeInference{})
	source := &fakeSource{duration: 600}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{})
	require.Error(t, err)
}

func TestRun_HonorsCancellationBetweenWindows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inference := &fakeInference{results: []InferResult{{Text: "one"}}}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1800}

	cancel()
	_, err := orchestrator.Run(ctx, source, RunOptions{Sections: testSections()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_SpeakerContextReachesPrompt(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "one"}, {Text: "two"}, {Text: "merged"}},
	}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1790}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{
		Sections:         testSections(),
		SpeakerIntervals: []entities.SpeakerInterval{{Speaker: "A", Start: 850, End: 950}},
		Overlap:          10,
	})
	require.NoError(t, err)
	// window 1 (0-900): clipped to 850-900; window 2 (890-1790): re-zeroed 0-60
	require.Contains(t, inference.requests[0].Prompt, "A: 850.0s-900.0s")
	require.Contains(t, inference.requests[1].Prompt, "A: 0.0s-60.0s")
}

func TestRun_ZeroOverlapIsHonored(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{{Text: "one"}, {Text: "two"}, {Text: "merged"}},
	}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 1790}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{
		Sections:         testSections(),
		SpeakerIntervals: []entities.SpeakerInterval{{Speaker: "B", Start: 850, End: 950}},
		Overlap:          0,
	})
	require.NoError(t, err)
	// contiguous windows (0-900) and (900-1790); the interval re-zeroes to 0-50
	require.Contains(t, inference.requests[0].Prompt, "B: 850.0s-900.0s")
	require.Contains(t, inference.requests[1].Prompt, "B: 0.0s-50.0s")
}

func TestRun_ZeroMinIntervalKeepsSlivers(t *testing.T) {
	inference := &fakeInference{results: []InferResult{{Text: "whole"}}}
	orchestrator, _ := newTestOrchestrator(inference)
	source := &fakeSource{duration: 600}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{
		Sections:         testSections(),
		SpeakerIntervals: []entities.SpeakerInterval{{Speaker: "C", Start: 100.0, End: 100.04}},
		MinInterval:      0,
	})
	require.NoError(t, err)
	require.Contains(t, inference.requests[0].Prompt, "C: 100.0s-100.0s",
		"a sub-default interval survives when the minimum is explicitly zero")
}

func TestRun_WarnsWhenWindowCapTruncates(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	inference := &fakeInference{}
	tracker := NewUsageTracker(nil)
	analyzer := NewChunkAnalyzer(inference, tracker, nil, 0)
	synth := NewReportSynthesizer(inference, tracker, nil, 0)
	orchestrator := NewOrchestrator(analyzer, synth, tracker, zap.New(core))
	source := &fakeSource{duration: 1_000_000}

	result, err := orchestrator.Run(context.Background(), source, RunOptions{
		Sections:     testSections(),
		WindowLength: 20,
		Overlap:      10,
	})
	require.NoError(t, err)
	require.Equal(t, MaxWindows, result.WindowCount)

	entries := logs.FilterMessageSnippet("Window cap").All()
	require.Len(t, entries, 1, "truncation is surfaced in the log")
	fields := entries[0].ContextMap()
	require.Equal(t, int64(MaxWindows), fields["windows"])
	require.Less(t, fields["covered_until"].(float64), source.duration)
}

func TestRun_TrackerResetsBetweenRuns(t *testing.T) {
	inference := &fakeInference{
		results: []InferResult{
			{Text: "a", Usage: &Usage{InputTokens: 10, OutputTokens: 5}},
			{Text: "b", Usage: &Usage{InputTokens: 10, OutputTokens: 5}},
		},
	}
	orchestrator, tracker := newTestOrchestrator(inference)
	source := &fakeSource{duration: 600}

	_, err := orchestrator.Run(context.Background(), source, RunOptions{Sections: testSections()})
	require.NoError(t, err)

	source2 := &fakeSource{duration: 600}
	_, err = orchestrator.Run(context.Background(), source2, RunOptions{Sections: testSections()})
	require.NoError(t, err)

	usage := tracker.Snapshot()
	require.Equal(t, int64(1), usage.ChunkCalls, "counters reset at run start")
	require.Equal(t, int64(10), usage.InputTokens)
}
