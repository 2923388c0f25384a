package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/errors"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// AudioClip is a temporary extracted slice of the source recording. It must
// be released by the iteration that created it.
type AudioClip interface {
	Path() string
	Release() error
}

// AudioSource abstracts the recording being analyzed
type AudioSource interface {
	Duration(ctx context.Context) (float64, error)
	ExtractRange(ctx context.Context, start, end float64) (AudioClip, error)
}

// RunOptions configures one pipeline run
type RunOptions struct {
	Sections         []entities.AnalysisSection
	SpeakerIntervals []entities.SpeakerInterval // global time, optional
	WindowLength     float64                    // seconds, <= 0 means DefaultWindowLength
	Overlap          float64                    // seconds, negative means DefaultOverlap, zero disables overlap
	MinInterval      float64                    // seconds, negative means DefaultMinIntervalDuration, zero keeps every interval
}

// RunResult is the report plus the run's observable accounting
type RunResult struct {
	Report        entities.MeetingReport
	WindowCount   int
	FailedWindows int
	Usage         UsageSnapshot
	Elapsed       time.Duration
}

// Orchestrator composes windowing, alignment, per-window analysis and
// synthesis into one run. Windows are processed sequentially in temporal
// order; a failed window never aborts the run.
type Orchestrator struct {
	analyzer    *ChunkAnalyzer
	synthesizer *ReportSynthesizer
	tracker     *UsageTracker
	logger      *zap.Logger
}

// NewOrchestrator creates a pipeline orchestrator. tracker and logger may be
// nil; the analyzer and synthesizer should share the same tracker.
func NewOrchestrator(analyzer *ChunkAnalyzer, synthesizer *ReportSynthesizer, tracker *UsageTracker, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		analyzer:    analyzer,
		synthesizer: synthesizer,
		tracker:     tracker,
		logger:      logger,
	}
}

// Run analyzes one recording end to end. Only configuration errors and
// context cancellation propagate; inference failures surface as marked text
// in the report.
func (o *Orchestrator) Run(ctx context.Context, source AudioSource, opts RunOptions) (*RunResult, error) {
	started := time.Now()
	if o.tracker != nil {
		o.tracker.Reset()
	}

	windowLength := opts.WindowLength
	if windowLength <= 0 {
		windowLength = DefaultWindowLength
	}
	overlap := opts.Overlap
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	minInterval := opts.MinInterval
	if minInterval < 0 {
		minInterval = DefaultMinIntervalDuration
	}
	if len(opts.Sections) == 0 {
		return nil, errors.ErrInvalidConfiguration("at least one report section is required")
	}

	totalDuration, err := source.Duration(ctx)
	if err != nil {
		return nil, errors.ErrInvalidConfiguration("could not determine audio duration").WithDetail("cause", err.Error())
	}

	windows, err := ComputeWindows(totalDuration, windowLength, overlap)
	if err != nil {
		return nil, err
	}

	if last := windows[len(windows)-1]; len(windows) == MaxWindows && last.End < totalDuration {
		if o.logger != nil {
			o.logger.Warn("⚠️ Window cap reached, trailing audio will not be analyzed",
				zap.Int("windows", len(windows)),
				zap.Float64("covered_until", last.End),
				zap.Float64("total_duration", totalDuration))
		}
	}

	if o.logger != nil {
		o.logger.Info("🔄 Starting chunked analysis",
			zap.Float64("total_duration", totalDuration),
			zap.Int("windows", len(windows)))
	}

	results := make([]entities.ChunkResult, 0, len(windows))
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, o.analyzeWindow(ctx, source, w, len(windows), opts, minInterval))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := o.synthesizer.Synthesize(ctx, results, opts.Sections)

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	elapsed := time.Since(started)
	if o.logger != nil {
		o.logger.Info("✅ Analysis run complete",
			zap.Int("windows", len(windows)),
			zap.Int("failed_windows", failed),
			zap.Duration("elapsed", elapsed))
	}

	result := &RunResult{
		Report:        report,
		WindowCount:   len(windows),
		FailedWindows: failed,
		Elapsed:       elapsed,
	}
	if o.tracker != nil {
		result.Usage = o.tracker.Snapshot()
	}
	return result, nil
}

// analyzeWindow extracts one window's audio, analyzes it and always releases
// the extracted clip. Extraction failure yields a marked failed result.
func (o *Orchestrator) analyzeWindow(ctx context.Context, source AudioSource, w entities.TimeWindow, windowCount int, opts RunOptions, minInterval float64) entities.ChunkResult {
	clip, err := source.ExtractRange(ctx, w.Start, w.End)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Failed to extract window audio",
				zap.Int("window_index", w.Index),
				zap.Error(err))
		}
		return entities.ChunkResult{
			Window: w,
			Text:   "[audio extraction failed for this segment: " + err.Error() + "]",
			OK:     false,
		}
	}
	defer func() {
		if releaseErr := clip.Release(); releaseErr != nil && o.logger != nil {
			o.logger.Warn("⚠️ Failed to release window audio",
				zap.Int("window_index", w.Index),
				zap.Error(errors.ErrCleanupFailed(clip.Path(), releaseErr)))
		}
	}()

	var speakers []entities.SpeakerInterval
	if len(opts.SpeakerIntervals) > 0 {
		speakers = AlignIntervals(opts.SpeakerIntervals, w, minInterval)
	}

	return o.analyzer.Analyze(ctx, clip.Path(), ChunkPromptInput{
		Sections:    opts.Sections,
		Speakers:    speakers,
		WindowIndex: w.Index,
		WindowCount: windowCount,
		Window:      w,
	})
}
