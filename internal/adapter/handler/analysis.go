package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/errors"
	analysisdto "github.com/meetingnotes-team/meeting-notes/internal/adapter/dto/analysis"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/analysis"
	ucerrors "github.com/meetingnotes-team/meeting-notes/internal/usecase/errors"
)

// Analysis handles API endpoints for meeting analysis jobs
type Analysis struct {
	svc    analysis.Service
	logger *zap.Logger
}

// NewAnalysis creates a new analysis handler
func NewAnalysis(svc analysis.Service, logger *zap.Logger) *Analysis {
	return &Analysis{svc: svc, logger: logger}
}

// Submit queues a recording for analysis
// @Summary      Submit recording for analysis
// @Description  Queues a long-form meeting recording for chunked analysis and report synthesis
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysisdto.SubmitAnalysisRequest  true  "Analysis request"
// @Success      202      {object}  map[string]interface{}             "Job accepted"
// @Failure      400      {object}  map[string]interface{}             "Invalid payload or unknown section"
// @Failure      401      {object}  map[string]interface{}             "User not authenticated"
// @Router       /analyses [post]
func (h *Analysis) Submit(c echo.Context) error {
	var req analysisdto.SubmitAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	job, err := h.svc.StartAnalysis(c.Request().Context(), analysis.SubmitRequest{
		RecordingURL:     req.RecordingURL,
		SectionKeys:      req.Sections,
		MeetingType:      entities.MeetingType(req.MeetingType),
		Diarization:      req.Diarization,
		ExpectedSpeakers: req.ExpectedSpeakers,
		SpeakerNames:     req.SpeakerNames,
	})
	if err != nil {
		switch {
		case stdErrors.Is(err, ucerrors.ErrMissingRecording):
			return HandleError(h.logger, c, errors.ErrMissingRecordingURL())
		case stdErrors.Is(err, ucerrors.ErrUnknownSection),
			stdErrors.Is(err, ucerrors.ErrDuplicateSection):
			return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
		default:
			return HandleError(h.logger, c, errors.ErrAnalysisFailed(err))
		}
	}

	return HandleAccepted(h.logger, c, analysisdto.SubmitAnalysisResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// GetStatus returns the current state of an analysis job
// @Summary      Get analysis job status
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                  true  "Job ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Job status"
// @Failure      404  {object}  map[string]interface{}  "Job not found"
// @Router       /analyses/{id} [get]
func (h *Analysis) GetStatus(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.svc.GetJob(c.Request().Context(), jobID)
	if err != nil {
		if stdErrors.Is(err, ucerrors.ErrJobNotFound) {
			return HandleError(h.logger, c, errors.ErrAnalysisJobNotFound(jobID.String()))
		}
		return HandleError(h.logger, c, err)
	}

	resp := analysisdto.JobStatusFromEntity(job)
	// The cache sees in-flight transitions before the job row does
	if status, err := h.svc.GetJobStatus(c.Request().Context(), jobID); err == nil {
		resp.Status = string(status)
	}

	return HandleSuccess(h.logger, c, resp)
}

// GetReport returns the synthesized report for a completed job
// @Summary      Get meeting report
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                  true  "Job ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Meeting report"
// @Failure      404  {object}  map[string]interface{}  "Job or report not found"
// @Failure      409  {object}  map[string]interface{}  "Job not completed yet"
// @Router       /analyses/{id}/report [get]
func (h *Analysis) GetReport(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job id"))
	}

	report, err := h.svc.GetReport(c.Request().Context(), jobID)
	if err != nil {
		switch {
		case stdErrors.Is(err, ucerrors.ErrJobNotFound):
			return HandleError(h.logger, c, errors.ErrAnalysisJobNotFound(jobID.String()))
		case stdErrors.Is(err, ucerrors.ErrJobNotCompleted):
			return HandleError(h.logger, c, errors.ErrInvalidArgument("analysis job not completed yet"))
		case stdErrors.Is(err, ucerrors.ErrReportNotFound):
			return HandleError(h.logger, c, errors.ErrReportNotFound(jobID.String()))
		default:
			return HandleError(h.logger, c, err)
		}
	}

	return HandleSuccess(h.logger, c, analysisdto.ReportFromEntity(report))
}

// ListSections returns the catalog of report sections clients can request
// @Summary      List report sections
// @Tags         Analysis
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Available sections"
// @Router       /sections [get]
func (h *Analysis) ListSections(c echo.Context) error {
	catalog := entities.SectionCatalog()
	sections := make([]analysisdto.SectionResponse, 0, len(catalog))
	for _, s := range catalog {
		sections = append(sections, analysisdto.SectionResponse{Key: s.Key, Title: s.Title})
	}
	return HandleSuccess(h.logger, c, sections)
}
