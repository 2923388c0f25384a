package ai

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// Diarizer produces speaker-labelled time intervals for a recording, in
// global time. Implementations may take minutes per call.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string, expectedSpeakers int) ([]entities.SpeakerInterval, error)
}

// AssemblyAIDiarizer runs speaker diarization through the AssemblyAI SDK:
// upload the file, transcribe with speaker labels, map utterances to
// intervals.
type AssemblyAIDiarizer struct {
	client *aai.Client
	logger *zap.Logger
}

// NewAssemblyAIDiarizer creates a diarizer backed by the official SDK
func NewAssemblyAIDiarizer(apiKey string, logger *zap.Logger) *AssemblyAIDiarizer {
	return &AssemblyAIDiarizer{
		client: aai.NewClient(apiKey),
		logger: logger,
	}
}

// Diarize uploads the audio file and blocks until the transcript with
// speaker labels is ready. expectedSpeakers <= 0 lets the model decide.
func (d *AssemblyAIDiarizer) Diarize(ctx context.Context, audioPath string, expectedSpeakers int) ([]entities.SpeakerInterval, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if expectedSpeakers > 0 {
		params.SpeakersExpected = aai.Int64(int64(expectedSpeakers))
	}

	if d.logger != nil {
		d.logger.Info("🎙️ Starting diarization",
			zap.String("audio_path", audioPath),
			zap.Int("expected_speakers", expectedSpeakers),
		)
	}

	transcript, err := d.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "assemblyai reported error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription: %s", msg)
	}

	intervals := make([]entities.SpeakerInterval, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		if u.Speaker == nil || u.Start == nil || u.End == nil {
			continue
		}
		intervals = append(intervals, entities.SpeakerInterval{
			Speaker: "Speaker " + *u.Speaker,
			Start:   float64(*u.Start) / 1000, // utterance times are milliseconds
			End:     float64(*u.End) / 1000,
		})
	}

	if d.logger != nil {
		d.logger.Info("✅ Diarization complete",
			zap.Int("utterances", len(intervals)),
		)
	}
	return intervals, nil
}

// NoopDiarizer skips diarization entirely
type NoopDiarizer struct{}

// Diarize returns no intervals
func (NoopDiarizer) Diarize(context.Context, string, int) ([]entities.SpeakerInterval, error) {
	return nil, nil
}
