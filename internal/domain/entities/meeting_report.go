package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingReport is the terminal artifact of one pipeline run
type MeetingReport struct {
	Text string `json:"text"`
}

// Report is the persisted form of a MeetingReport, attached to the analysis
// job that produced it
type Report struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID            uuid.UUID `json:"job_id" gorm:"type:uuid;not null;uniqueIndex"`
	Text             string    `json:"text" gorm:"type:text;not null"`
	Language         string    `json:"language,omitempty" gorm:"type:varchar(16)"`
	WindowCount      int       `json:"window_count" gorm:"type:integer;not null;default:0"`
	FailedWindows    int       `json:"failed_windows" gorm:"type:integer;not null;default:0"`
	InputTokens      int64     `json:"input_tokens" gorm:"type:bigint;not null;default:0"`
	OutputTokens     int64     `json:"output_tokens" gorm:"type:bigint;not null;default:0"`
	ProcessingTimeMs int64     `json:"processing_time_ms" gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewReport creates a persisted report for a completed job
func NewReport(jobID uuid.UUID, text string) *Report {
	return &Report{
		ID:        uuid.New(),
		JobID:     jobID,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// TableName specifies the table name for GORM
func (Report) TableName() string {
	return "meeting_reports"
}
