package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// DefaultChunkMaxTokens bounds one per-window model response
const DefaultChunkMaxTokens = 4000

// ChunkAnalyzer runs the per-window analysis call. It never returns an
// error: every failure becomes a marked ChunkResult so no window is lost.
type ChunkAnalyzer struct {
	inference Inference
	tracker   *UsageTracker
	logger    *zap.Logger
	maxTokens int
}

// NewChunkAnalyzer creates a chunk analyzer. tracker and logger may be nil.
func NewChunkAnalyzer(inference Inference, tracker *UsageTracker, logger *zap.Logger, maxTokens int) *ChunkAnalyzer {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkMaxTokens
	}
	return &ChunkAnalyzer{
		inference: inference,
		tracker:   tracker,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Analyze runs one window's audio through the model with the structured
// prompt and classifies the outcome. The caller always gets exactly one
// ChunkResult for the window it submitted.
func (a *ChunkAnalyzer) Analyze(ctx context.Context, audioPath string, in ChunkPromptInput) entities.ChunkResult {
	prompt := BuildChunkPrompt(in)
	start := time.Now()

	result, err := a.inference.Infer(ctx, InferRequest{
		AudioPath: audioPath,
		Prompt:    prompt,
		MaxTokens: a.maxTokens,
	})
	elapsed := time.Since(start)

	if err != nil {
		if a.logger != nil {
			a.logger.Error("❌ Chunk analysis failed",
				zap.Int("window_index", in.WindowIndex),
				zap.String("window_range", in.Window.Range()),
				zap.Error(err))
		}
		a.track(nil, elapsed, false)
		return entities.ChunkResult{
			Window: in.Window,
			Text:   fmt.Sprintf("[analysis failed for this segment: %v]", err),
			OK:     false,
		}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		if a.logger != nil {
			a.logger.Warn("⚠️ Chunk analysis returned empty output",
				zap.Int("window_index", in.WindowIndex))
		}
		a.track(result.Usage, elapsed, false)
		return entities.ChunkResult{
			Window: in.Window,
			Text:   "[analysis returned no content for this segment]",
			OK:     false,
		}
	}

	if a.logger != nil {
		a.logger.Info("✅ Chunk analyzed",
			zap.Int("window_index", in.WindowIndex),
			zap.String("window_range", in.Window.Range()),
			zap.Duration("elapsed", elapsed))
	}
	a.track(result.Usage, elapsed, true)
	return entities.ChunkResult{Window: in.Window, Text: text, OK: true}
}

func (a *ChunkAnalyzer) track(usage *Usage, elapsed time.Duration, ok bool) {
	if a.tracker != nil {
		a.tracker.AddChunk(usage, elapsed, ok)
	}
}
