package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/internal/adapter/repository"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/cache"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/metrics"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/storage"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/errors"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/pipeline"
	pkgai "github.com/meetingnotes-team/meeting-notes/pkg/ai"
	"github.com/meetingnotes-team/meeting-notes/pkg/audio"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
	"github.com/meetingnotes-team/meeting-notes/pkg/jobcontext"
)

// SubmitRequest carries everything needed to queue one analysis
type SubmitRequest struct {
	RecordingURL     string
	SectionKeys      []string
	MeetingType      entities.MeetingType
	Diarization      bool
	ExpectedSpeakers int
	SpeakerNames     map[string]string
}

// Service defines meeting analysis orchestration methods
type Service interface {
	StartAnalysis(ctx context.Context, req SubmitRequest) (*entities.AnalysisJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*entities.AnalysisJob, error)
	GetJobStatus(ctx context.Context, jobID uuid.UUID) (entities.AnalysisJobStatus, error)
	GetReport(ctx context.Context, jobID uuid.UUID) (*entities.Report, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type analysisService struct {
	jobRepo    *repository.AnalysisJobRepository
	reportRepo *repository.ReportRepository
	status     cache.StatusCache
	minio      *storage.MinIOClient
	diarizer   pkgai.Diarizer
	inference  pipeline.Inference
	metrics    *metrics.Metrics
	cfg        *config.Config
	logger     *zap.Logger

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the analysis service. diarizer, minio and metrics
// may be nil; status falls back to an in-memory store when nil.
func NewService(
	jobRepo *repository.AnalysisJobRepository,
	reportRepo *repository.ReportRepository,
	status cache.StatusCache,
	minio *storage.MinIOClient,
	diarizer pkgai.Diarizer,
	inference pipeline.Inference,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	if status == nil {
		status = cache.NewMemoryStore()
	}
	if diarizer == nil {
		diarizer = pkgai.NoopDiarizer{}
	}
	return &analysisService{
		jobRepo:    jobRepo,
		reportRepo: reportRepo,
		status:     status,
		minio:      minio,
		diarizer:   diarizer,
		inference:  inference,
		metrics:    m,
		cfg:        cfg,
		logger:     logger,
	}
}

// StartAnalysis validates the request and queues a job for the worker pool
func (s *analysisService) StartAnalysis(ctx context.Context, req SubmitRequest) (*entities.AnalysisJob, error) {
	if req.RecordingURL == "" {
		return nil, errors.ErrMissingRecording
	}
	seen := make(map[string]bool, len(req.SectionKeys))
	for _, key := range req.SectionKeys {
		if _, ok := entities.LookupSection(key); !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSection, key)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", errors.ErrDuplicateSection, key)
		}
		seen[key] = true
	}

	job := entities.NewAnalysisJob(req.RecordingURL, req.SectionKeys, req.MeetingType)
	job.DiarizationOn = req.Diarization
	job.ExpectedSpeakers = req.ExpectedSpeakers
	if len(req.SpeakerNames) > 0 {
		if raw, err := json.Marshal(req.SpeakerNames); err == nil {
			job.SpeakerNames = raw
		}
	}

	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create analysis job: %w", err)
	}
	s.cacheStatus(ctx, job.ID, job.Status)

	if s.logger != nil {
		s.logger.Info("📋 Analysis job queued",
			zap.String("job_id", job.ID.String()),
			zap.Bool("diarization", job.DiarizationOn),
		)
	}
	return job, nil
}

// GetJob retrieves a job by ID
func (s *analysisService) GetJob(ctx context.Context, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.ErrJobNotFound
	}
	return job, nil
}

// GetJobStatus returns the job status, hitting the cache before the DB
func (s *analysisService) GetJobStatus(ctx context.Context, jobID uuid.UUID) (entities.AnalysisJobStatus, error) {
	if value, ok, err := s.status.Get(ctx, cache.JobStatusKey(jobID.String())); err == nil && ok {
		return entities.AnalysisJobStatus(value), nil
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// GetReport returns the persisted report for a completed job
func (s *analysisService) GetReport(ctx context.Context, jobID uuid.UUID) (*entities.Report, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entities.AnalysisJobStatusCompleted {
		return nil, errors.ErrJobNotCompleted
	}
	report, err := s.reportRepo.GetReportByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.ErrReportNotFound
	}
	return report, nil
}

// StartWorkerPool starts background workers that claim and process jobs
func (s *analysisService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting analysis worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.analysisWorker(ctx, i)
	}

	// Recover jobs stuck by crashed workers
	s.workerWg.Add(1)
	go s.zombieJobWorker(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *analysisService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping analysis worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Analysis worker pool stopped")
	}

	return nil
}

// analysisWorker polls for claimable jobs and runs them one at a time
func (s *analysisService) analysisWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.cfg.Worker.PollInterval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-ticker.C:
			job, err := s.jobRepo.ClaimNextJob(parentCtx)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to claim job",
						zap.Int("worker_id", workerID),
						zap.Error(err),
					)
				}
				continue
			}
			if job == nil {
				continue
			}

			if s.logger != nil {
				s.logger.Info("👷 Worker claimed job",
					zap.Int("worker_id", workerID),
					zap.String("job_id", job.ID.String()),
				)
			}
			s.cacheStatus(parentCtx, job.ID, job.Status)

			jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, workerID, s.cfg.Worker.JobTimeout)
			err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
				return s.processJob(ctx, job)
			})
			cancel()

			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Job failed after retries",
						zap.String("job_id", job.ID.String()),
						zap.Error(err),
					)
				}
				s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, err.Error())
				s.cacheStatus(parentCtx, job.ID, entities.AnalysisJobStatusFailed)
				if s.metrics != nil {
					s.metrics.JobFinished(string(entities.AnalysisJobStatusFailed))
				}
			} else {
				if s.logger != nil {
					s.logger.Info("✅ Job completed successfully",
						zap.String("job_id", job.ID.String()),
					)
				}
				s.cacheStatus(parentCtx, job.ID, entities.AnalysisJobStatusCompleted)
				if s.metrics != nil {
					s.metrics.JobFinished(string(entities.AnalysisJobStatusCompleted))
				}
			}
		}
	}
}

// processJob runs one job end to end: fetch audio, normalize, diarize,
// chunked analysis, persist the report
func (s *analysisService) processJob(ctx context.Context, job *entities.AnalysisJob) error {
	if s.logger != nil {
		jobID, _ := jobcontext.GetJobID(ctx)
		s.logger.Info("🎬 Processing analysis job",
			zap.String("job_id", jobID.String()),
			zap.Int("worker_id", jobcontext.GetWorkerID(ctx)),
			zap.Int("attempt", jobcontext.GetRetryAttempt(ctx)),
		)
	}

	workDir, err := os.MkdirTemp(s.cfg.Pipeline.TempDir, "analysis-"+job.ID.String())
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	rawPath, err := s.fetchRecording(ctx, job.RecordingURL, workDir)
	if err != nil {
		return fmt.Errorf("failed to fetch recording: %w", err)
	}

	source, err := audio.NewFile(rawPath, workDir).ConvertToWAV(ctx, filepath.Join(workDir, "normalized.wav"))
	if err != nil {
		return fmt.Errorf("failed to normalize audio: %w", err)
	}

	var intervals []entities.SpeakerInterval
	if job.DiarizationOn {
		s.setStatus(ctx, job.ID, entities.AnalysisJobStatusDiarizing)
		intervals, err = s.diarizer.Diarize(ctx, source.Path(), job.ExpectedSpeakers)
		if err != nil {
			// Diarization is optional context, not a reason to lose the analysis
			if s.logger != nil {
				s.logger.Warn("⚠️ Diarization failed, continuing without speaker context",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
			intervals = nil
		}
		if mapping := job.SpeakerRenaming(); mapping != nil {
			intervals = entities.ApplyRenaming(intervals, mapping)
		}
	}

	s.setStatus(ctx, job.ID, entities.AnalysisJobStatusAnalyzing)

	// Counters are per run, so parallel workers never share state
	tracker := pipeline.NewUsageTracker(s.metrics)
	analyzer := pipeline.NewChunkAnalyzer(s.inference, tracker, s.logger, s.cfg.Pipeline.ChunkMaxTokens)
	synthesizer := pipeline.NewReportSynthesizer(s.inference, tracker, s.logger, s.cfg.Pipeline.SynthesisMaxTokens)
	orchestrator := pipeline.NewOrchestrator(analyzer, synthesizer, tracker, s.logger)

	result, err := orchestrator.Run(ctx, source, pipeline.RunOptions{
		Sections:         entities.ResolveSections(job.SectionKeys()),
		SpeakerIntervals: intervals,
		WindowLength:     s.cfg.Pipeline.WindowLengthSeconds,
		Overlap:          s.cfg.Pipeline.OverlapSeconds,
		MinInterval:      s.cfg.Pipeline.MinIntervalSeconds,
	})
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	duration, _ := source.Duration(ctx)
	report := entities.NewReport(job.ID, result.Report.Text)
	report.WindowCount = result.WindowCount
	report.FailedWindows = result.FailedWindows
	report.InputTokens = result.Usage.InputTokens
	report.OutputTokens = result.Usage.OutputTokens
	report.ProcessingTimeMs = result.Elapsed.Milliseconds()
	// A retried job can leave a report row from a partially completed
	// attempt; clear it so the unique job_id index accepts the new one
	if err := s.reportRepo.DeleteReportByJobID(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to clear stale report: %w", err)
	}
	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return fmt.Errorf("failed to persist report: %w", err)
	}

	return s.jobRepo.MarkJobAsCompleted(ctx, job.ID, entities.AnalysisJobMetadata{
		DurationSeconds:  duration,
		WindowCount:      result.WindowCount,
		FailedWindows:    result.FailedWindows,
		SpeakerCount:     countSpeakers(intervals),
		InputTokens:      result.Usage.InputTokens,
		OutputTokens:     result.Usage.OutputTokens,
		ProcessingTimeMs: result.Elapsed.Milliseconds(),
	})
}

// fetchRecording resolves the job's recording reference to a local file.
// HTTP(S) URLs are downloaded directly; anything else is treated as a MinIO
// object key.
func (s *analysisService) fetchRecording(ctx context.Context, recordingURL, workDir string) (string, error) {
	dest := filepath.Join(workDir, "recording"+recordingExt(recordingURL))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if strings.HasPrefix(recordingURL, "http://") || strings.HasPrefix(recordingURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, "GET", recordingURL, nil)
		if err != nil {
			return "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("recording download returned status %d", resp.StatusCode)
		}
		if _, err := io.Copy(out, resp.Body); err != nil {
			return "", err
		}
		return dest, nil
	}

	if s.minio == nil {
		return "", errors.ErrRecordingNotFound
	}
	if _, err := s.minio.DownloadRecording(ctx, recordingURL, out); err != nil {
		return "", err
	}
	return dest, nil
}

// recordingExt derives the local file extension for a recording reference.
// Presigned URLs carry query strings, so the extension comes from the parsed
// URL path rather than the raw string.
func recordingExt(recordingURL string) string {
	if strings.HasPrefix(recordingURL, "http://") || strings.HasPrefix(recordingURL, "https://") {
		u, err := url.Parse(recordingURL)
		if err != nil {
			return ""
		}
		return filepath.Ext(u.Path)
	}
	return filepath.Ext(recordingURL)
}

// zombieJobWorker resets jobs stuck mid-processing for longer than twice the
// job timeout, typically after a worker crash
func (s *analysisService) zombieJobWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-2 * s.cfg.Worker.JobTimeout)
			jobs, err := s.jobRepo.GetStuckJobs(parentCtx, cutoff, 10)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll stuck jobs", zap.Error(err))
				}
				continue
			}
			for _, job := range jobs {
				if s.logger != nil {
					s.logger.Warn("🧟 Resetting zombie job",
						zap.String("job_id", job.ID.String()),
						zap.Time("last_update", job.UpdatedAt),
					)
				}
				if err := s.jobRepo.IncrementRetryCount(parentCtx, job.ID, "worker lost mid-processing"); err != nil {
					if s.logger != nil {
						s.logger.Error("❌ Failed to reset zombie job",
							zap.String("job_id", job.ID.String()),
							zap.Error(err),
						)
					}
					continue
				}
				s.cacheStatus(parentCtx, job.ID, entities.AnalysisJobStatusRetrying)
			}
		}
	}
}

// setStatus updates the DB status and mirrors it to the cache
func (s *analysisService) setStatus(ctx context.Context, jobID uuid.UUID, status entities.AnalysisJobStatus) {
	if err := s.jobRepo.UpdateJobStatus(ctx, jobID, status); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to update job status",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
	s.cacheStatus(ctx, jobID, status)
}

func (s *analysisService) cacheStatus(ctx context.Context, jobID uuid.UUID, status entities.AnalysisJobStatus) {
	if err := s.status.Set(ctx, cache.JobStatusKey(jobID.String()), string(status), time.Hour); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to cache job status",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
}

func countSpeakers(intervals []entities.SpeakerInterval) int {
	speakers := make(map[string]bool, 4)
	for _, in := range intervals {
		speakers[in.Speaker] = true
	}
	return len(speakers)
}
