package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisJobStatus represents the status of a meeting analysis job
type AnalysisJobStatus string

const (
	AnalysisJobStatusPending   AnalysisJobStatus = "pending"   // Waiting to be picked up by a worker
	AnalysisJobStatusClaimed   AnalysisJobStatus = "claimed"   // Claimed by a worker, fetching audio
	AnalysisJobStatusDiarizing AnalysisJobStatus = "diarizing" // Speaker diarization in progress
	AnalysisJobStatusAnalyzing AnalysisJobStatus = "analyzing" // Chunked analysis and synthesis running
	AnalysisJobStatusCompleted AnalysisJobStatus = "completed" // Report persisted
	AnalysisJobStatusFailed    AnalysisJobStatus = "failed"    // Processing failed
	AnalysisJobStatusRetrying  AnalysisJobStatus = "retrying"  // Retrying after failure
	AnalysisJobStatusCancelled AnalysisJobStatus = "cancelled" // Job was cancelled
)

// AnalysisJob represents one meeting analysis request processed asynchronously
type AnalysisJob struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Status       AnalysisJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	RecordingURL string            `json:"recording_url" gorm:"type:text;not null"`

	// Analysis options
	RequestedSections datatypes.JSON `json:"requested_sections" gorm:"type:jsonb"`
	MeetingType       MeetingType    `json:"meeting_type" gorm:"type:varchar(32);default:'action'"`
	DiarizationOn     bool           `json:"diarization_on" gorm:"type:boolean;default:false"`
	ExpectedSpeakers  int            `json:"expected_speakers" gorm:"type:integer;default:0"`
	SpeakerNames      datatypes.JSON `json:"speaker_names,omitempty" gorm:"type:jsonb"`

	// Processing details
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	// Metadata
	Metadata AnalysisJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AnalysisJobMetadata stores additional metadata for analysis jobs
type AnalysisJobMetadata struct {
	DurationSeconds  float64                `json:"duration_seconds,omitempty"`
	WindowCount      int                    `json:"window_count,omitempty"`
	FailedWindows    int                    `json:"failed_windows,omitempty"`
	SpeakerCount     int                    `json:"speaker_count,omitempty"`
	InputTokens      int64                  `json:"input_tokens,omitempty"`
	OutputTokens     int64                  `json:"output_tokens,omitempty"`
	ProcessingTimeMs int64                  `json:"processing_time_ms,omitempty"`
	ErrorDetails     map[string]interface{} `json:"error_details,omitempty"`
}

// Scan implements sql.Scanner interface for GORM
func (m *AnalysisJobMetadata) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &m)
}

// Value implements driver.Valuer interface for GORM
func (m AnalysisJobMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NewAnalysisJob creates a new analysis job
func NewAnalysisJob(recordingURL string, sectionKeys []string, meetingType MeetingType) *AnalysisJob {
	if len(sectionKeys) == 0 {
		sectionKeys = DefaultSectionKeys(meetingType)
	}
	rawSections, _ := json.Marshal(sectionKeys)
	return &AnalysisJob{
		ID:                uuid.New(),
		Status:            AnalysisJobStatusPending,
		RecordingURL:      recordingURL,
		RequestedSections: rawSections,
		MeetingType:       meetingType,
		RetryCount:        0,
		MaxRetries:        3,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// SectionKeys decodes the requested section keys
func (j *AnalysisJob) SectionKeys() []string {
	var keys []string
	if len(j.RequestedSections) > 0 {
		_ = json.Unmarshal(j.RequestedSections, &keys)
	}
	if len(keys) == 0 {
		keys = DefaultSectionKeys(j.MeetingType)
	}
	return keys
}

// SpeakerRenaming decodes the speaker display-name mapping
func (j *AnalysisJob) SpeakerRenaming() map[string]string {
	if len(j.SpeakerNames) == 0 {
		return nil
	}
	var mapping map[string]string
	if err := json.Unmarshal(j.SpeakerNames, &mapping); err != nil {
		return nil
	}
	return mapping
}

// IsRetryable checks if job can be retried
func (j *AnalysisJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == AnalysisJobStatusFailed
}

// MarkAsClaimed marks the job as claimed by a worker
func (j *AnalysisJob) MarkAsClaimed() {
	j.Status = AnalysisJobStatusClaimed
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsDiarizing marks the job as running speaker diarization
func (j *AnalysisJob) MarkAsDiarizing() {
	j.Status = AnalysisJobStatusDiarizing
	j.UpdatedAt = time.Now()
}

// MarkAsAnalyzing marks the job as running chunked analysis
func (j *AnalysisJob) MarkAsAnalyzing() {
	j.Status = AnalysisJobStatusAnalyzing
	j.UpdatedAt = time.Now()
}

// MarkAsCompleted marks the job as completed successfully
func (j *AnalysisJob) MarkAsCompleted() {
	j.Status = AnalysisJobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job as failed with error message
func (j *AnalysisJob) MarkAsFailed(errMsg string) {
	j.Status = AnalysisJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// IncrementRetry increments retry count and marks for retry
func (j *AnalysisJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.Status = AnalysisJobStatusRetrying
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// MarkAsCancelled marks the job as cancelled
func (j *AnalysisJob) MarkAsCancelled() {
	j.Status = AnalysisJobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
