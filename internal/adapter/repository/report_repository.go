package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// ReportRepository handles meeting report data operations
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateReport persists the report for a completed job
func (r *ReportRepository) CreateReport(ctx context.Context, report *entities.Report) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	return r.db.WithContext(ctx).Create(report).Error
}

// GetReportByJobID retrieves the report produced by a job
func (r *ReportRepository) GetReportByJobID(ctx context.Context, jobID uuid.UUID) (*entities.Report, error) {
	var report entities.Report
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// DeleteReportByJobID removes a job's report
func (r *ReportRepository) DeleteReportByJobID(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&entities.Report{}).Error
}
