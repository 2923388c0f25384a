package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/pipeline"
	pkgai "github.com/meetingnotes-team/meeting-notes/pkg/ai"
	"github.com/meetingnotes-team/meeting-notes/pkg/audio"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
)

var (
	flagSections         []string
	flagMeetingType      string
	flagWindowMinutes    float64
	flagOverlapSeconds   float64
	flagDiarize          bool
	flagExpectedSpeakers int
	flagOutput           string
	flagVerbose          bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetingnotes",
		Short: "Analyze long meeting recordings into structured reports",
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Run the analysis pipeline on a local audio file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringSliceVar(&flagSections, "sections", nil, "report section keys (default depends on meeting type)")
	analyzeCmd.Flags().StringVar(&flagMeetingType, "meeting-type", "action", "meeting type: action or information")
	analyzeCmd.Flags().Float64Var(&flagWindowMinutes, "window-minutes", 15, "analysis window length in minutes")
	analyzeCmd.Flags().Float64Var(&flagOverlapSeconds, "overlap-seconds", 10, "overlap between adjacent windows in seconds")
	analyzeCmd.Flags().BoolVar(&flagDiarize, "diarize", false, "run speaker diarization before analysis")
	analyzeCmd.Flags().IntVar(&flagExpectedSpeakers, "expected-speakers", 0, "expected number of speakers (0 = auto)")
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	sectionsCmd := &cobra.Command{
		Use:   "sections",
		Short: "List available report sections",
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range entities.SectionCatalog() {
				fmt.Printf("%-24s %s\n", s.Key, s.Title)
			}
		},
	}

	rootCmd.AddCommand(analyzeCmd, sectionsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	audioPath := args[0]
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file not accessible: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Mistral.APIKey == "" {
		return fmt.Errorf("MISTRAL_API_KEY is required")
	}

	logger, err := newLogger(flagVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	meetingType := entities.MeetingType(flagMeetingType)
	if meetingType != entities.MeetingTypeAction && meetingType != entities.MeetingTypeInformation {
		return fmt.Errorf("unknown meeting type %q", flagMeetingType)
	}

	sectionKeys := flagSections
	if len(sectionKeys) == 0 {
		sectionKeys = entities.DefaultSectionKeys(meetingType)
	}
	sections := entities.ResolveSections(sectionKeys)
	if len(sections) != len(sectionKeys) {
		return fmt.Errorf("unknown section in %s (run 'meetingnotes sections' for the catalog)", strings.Join(sectionKeys, ","))
	}

	ctx := cmd.Context()

	source := audio.NewFile(audioPath, cfg.Pipeline.TempDir)

	var intervals []entities.SpeakerInterval
	if flagDiarize {
		if cfg.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required for --diarize")
		}
		logger.Info("🗣️ Running speaker diarization")
		diarizer := pkgai.NewAssemblyAIDiarizer(cfg.Assembly.APIKey, logger)
		intervals, err = diarizer.Diarize(ctx, audioPath, flagExpectedSpeakers)
		if err != nil {
			logger.Warn("⚠️ Diarization failed, continuing without speaker context", zap.Error(err))
			intervals = nil
		}
	}

	inference := pkgai.NewVoxtralClient(&cfg.Mistral)
	tracker := pipeline.NewUsageTracker(nil)
	analyzer := pipeline.NewChunkAnalyzer(inference, tracker, logger, cfg.Pipeline.ChunkMaxTokens)
	synthesizer := pipeline.NewReportSynthesizer(inference, tracker, logger, cfg.Pipeline.SynthesisMaxTokens)
	orchestrator := pipeline.NewOrchestrator(analyzer, synthesizer, tracker, logger)

	started := time.Now()
	result, err := orchestrator.Run(ctx, source, pipeline.RunOptions{
		Sections:         sections,
		SpeakerIntervals: intervals,
		WindowLength:     flagWindowMinutes * 60,
		Overlap:          flagOverlapSeconds,
		MinInterval:      cfg.Pipeline.MinIntervalSeconds,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	logger.Info("✅ Analysis complete",
		zap.Int("windows", result.WindowCount),
		zap.Int("failed_windows", result.FailedWindows),
		zap.Int64("input_tokens", result.Usage.InputTokens),
		zap.Int64("output_tokens", result.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(started)))

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(result.Report.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", flagOutput)
		return nil
	}

	fmt.Println(result.Report.Text)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
