package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// DefaultSynthesisMaxTokens bounds the merge-phase model response
const DefaultSynthesisMaxTokens = 8000

// ReportSynthesizer merges ordered per-window results into the final report.
// A single result passes through unchanged. A failed merge call degrades to
// an error banner plus the untouched per-segment text; the per-window work
// is never discarded.
type ReportSynthesizer struct {
	inference Inference
	tracker   *UsageTracker
	logger    *zap.Logger
	maxTokens int
}

// NewReportSynthesizer creates a synthesizer. tracker and logger may be nil.
func NewReportSynthesizer(inference Inference, tracker *UsageTracker, logger *zap.Logger, maxTokens int) *ReportSynthesizer {
	if maxTokens <= 0 {
		maxTokens = DefaultSynthesisMaxTokens
	}
	return &ReportSynthesizer{
		inference: inference,
		tracker:   tracker,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Synthesize produces the final report text from ordered chunk results.
// results must be non-empty and ordered by window index.
func (s *ReportSynthesizer) Synthesize(ctx context.Context, results []entities.ChunkResult, sections []entities.AnalysisSection) entities.MeetingReport {
	if len(results) == 1 {
		return entities.MeetingReport{Text: results[0].Text}
	}

	combined := CombineResults(results)
	prompt := BuildSynthesisPrompt(sections, combined)

	start := time.Now()
	result, err := s.inference.Infer(ctx, InferRequest{
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	elapsed := time.Since(start)

	synthesis := ""
	if err == nil {
		synthesis = strings.TrimSpace(result.Text)
	}
	if err != nil || synthesis == "" {
		if s.logger != nil {
			s.logger.Error("❌ Report synthesis failed, falling back to raw segments",
				zap.Int("segments", len(results)),
				zap.Error(err))
		}
		if s.tracker != nil && err == nil {
			s.tracker.AddSynthesis(result.Usage, elapsed)
		}
		return entities.MeetingReport{
			Text: "⚠️ Automatic synthesis failed. Raw per-segment analyses follow.\n\n" + combined,
		}
	}

	if s.logger != nil {
		s.logger.Info("✅ Report synthesized",
			zap.Int("segments", len(results)),
			zap.Duration("elapsed", elapsed))
	}
	if s.tracker != nil {
		s.tracker.AddSynthesis(result.Usage, elapsed)
	}

	// The per-segment detail is kept verbatim as an appendix so
	// summarization never destroys information.
	return entities.MeetingReport{
		Text: fmt.Sprintf("# Meeting Summary\n\n%s\n\n---\n\n## Segment Details\n\n%s", synthesis, combined),
	}
}

// CombineResults concatenates all chunk texts under per-segment headings,
// failed segments included
func CombineResults(results []entities.ChunkResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		heading := fmt.Sprintf("## Segment %d (%s)", r.Window.Index+1, r.Window.Range())
		if !r.OK {
			heading += " [FAILED]"
		}
		parts = append(parts, heading+"\n\n"+r.Text)
	}
	return strings.Join(parts, "\n\n")
}
