package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// SubmitAnalysisResponse is returned when a job has been accepted.
type SubmitAnalysisResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// JobStatusResponse describes the current state of an analysis job.
type JobStatusResponse struct {
	JobID       uuid.UUID  `json:"job_id"`
	Status      string     `json:"status"`
	MeetingType string     `json:"meeting_type"`
	Diarization bool       `json:"diarization"`
	RetryCount  int        `json:"retry_count"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ReportResponse carries the synthesized meeting report.
type ReportResponse struct {
	JobID            uuid.UUID `json:"job_id"`
	Text             string    `json:"text"`
	Language         string    `json:"language,omitempty"`
	WindowCount      int       `json:"window_count"`
	FailedWindows    int       `json:"failed_windows"`
	InputTokens      int64     `json:"input_tokens"`
	OutputTokens     int64     `json:"output_tokens"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// SectionResponse describes one report section available for selection.
type SectionResponse struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// UploadRecordingResponse is returned after a recording upload.
type UploadRecordingResponse struct {
	ObjectName string `json:"object_name"`
	Size       int64  `json:"size"`
	URL        string `json:"url,omitempty"`
}

// ListRecordingsResponse lists stored recording object names.
type ListRecordingsResponse struct {
	Recordings []string `json:"recordings"`
	Count      int      `json:"count"`
}

// JobStatusFromEntity maps a job entity to its API representation.
func JobStatusFromEntity(job *entities.AnalysisJob) *JobStatusResponse {
	resp := &JobStatusResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		MeetingType: string(job.MeetingType),
		Diarization: job.DiarizationOn,
		RetryCount:  job.RetryCount,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.LastError != nil {
		resp.Error = *job.LastError
	}
	return resp
}

// ReportFromEntity maps a report entity to its API representation.
func ReportFromEntity(report *entities.Report) *ReportResponse {
	return &ReportResponse{
		JobID:            report.JobID,
		Text:             report.Text,
		Language:         report.Language,
		WindowCount:      report.WindowCount,
		FailedWindows:    report.FailedWindows,
		InputTokens:      report.InputTokens,
		OutputTokens:     report.OutputTokens,
		ProcessingTimeMs: report.ProcessingTimeMs,
		CreatedAt:        report.CreatedAt,
	}
}
