package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// AnalysisJobRepository handles analysis job data operations
type AnalysisJobRepository struct {
	db *gorm.DB
}

// NewAnalysisJobRepository creates a new analysis job repository
func NewAnalysisJobRepository(db *gorm.DB) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: db}
}

// CreateJob creates a new analysis job
func (r *AnalysisJobRepository) CreateJob(ctx context.Context, job *entities.AnalysisJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves an analysis job by ID
func (r *AnalysisJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ClaimNextJob atomically claims the oldest pending or retrying job via a
// conditional UPDATE, so concurrent workers never pick up the same job.
// Returns nil when nothing is claimable.
func (r *AnalysisJobRepository) ClaimNextJob(ctx context.Context) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status IN ?", []entities.AnalysisJobStatus{
				entities.AnalysisJobStatusPending,
				entities.AnalysisJobStatusRetrying,
			}).
			Order("created_at ASC").
			First(&job).Error; err != nil {
			return err
		}

		result := tx.Model(&entities.AnalysisJob{}).
			Where("id = ? AND status = ?", job.ID, job.Status).
			Updates(map[string]interface{}{
				"status":     entities.AnalysisJobStatusClaimed,
				"started_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Another worker won the race
			return gorm.ErrRecordNotFound
		}
		job.MarkAsClaimed()
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// UpdateJobStatus updates the status of an analysis job
func (r *AnalysisJobRepository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.AnalysisJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// MarkJobAsCompleted marks a job as completed and stores run metadata
func (r *AnalysisJobRepository) MarkJobAsCompleted(ctx context.Context, jobID uuid.UUID, metadata entities.AnalysisJobMetadata) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.AnalysisJobStatusCompleted,
			"metadata":     metadata,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *AnalysisJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.AnalysisJobStatusFailed,
			"last_error": errMsg,
			"updated_at": now,
		}).Error
}

// IncrementRetryCount increments the retry count and marks for retry
func (r *AnalysisJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      entities.AnalysisJobStatusRetrying,
			"last_error":  errMsg,
			"updated_at":  now,
		}).Error
}

// GetStuckJobs retrieves claimed or running jobs not updated within cutoff,
// typically left behind by a crashed worker
func (r *AnalysisJobRepository) GetStuckJobs(ctx context.Context, cutoff time.Time, limit int) ([]entities.AnalysisJob, error) {
	var jobs []entities.AnalysisJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []entities.AnalysisJobStatus{
			entities.AnalysisJobStatusClaimed,
			entities.AnalysisJobStatusDiarizing,
			entities.AnalysisJobStatusAnalyzing,
		}, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
