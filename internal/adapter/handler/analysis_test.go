package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/analysis"
	ucerrors "github.com/meetingnotes-team/meeting-notes/internal/usecase/errors"
	pkgvalidator "github.com/meetingnotes-team/meeting-notes/pkg/validator"
)

type fakeAnalysisService struct {
	job       *entities.AnalysisJob
	report    *entities.Report
	submitErr error
	jobErr    error
	reportErr error

	lastSubmit analysis.SubmitRequest
}

func (f *fakeAnalysisService) StartAnalysis(ctx context.Context, req analysis.SubmitRequest) (*entities.AnalysisJob, error) {
	f.lastSubmit = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.job, nil
}

func (f *fakeAnalysisService) GetJob(ctx context.Context, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *fakeAnalysisService) GetJobStatus(ctx context.Context, jobID uuid.UUID) (entities.AnalysisJobStatus, error) {
	if f.job == nil {
		return "", ucerrors.ErrJobNotFound
	}
	return f.job.Status, nil
}

func (f *fakeAnalysisService) GetReport(ctx context.Context, jobID uuid.UUID) (*entities.Report, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.report, nil
}

func (f *fakeAnalysisService) StartWorkerPool(ctx context.Context, workerCount int) error { return nil }
func (f *fakeAnalysisService) StopWorkerPool() error                                      { return nil }

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmitAcceptsJob(t *testing.T) {
	job := entities.NewAnalysisJob("http://example.com/meeting.mp3", nil, entities.MeetingTypeAction)
	svc := &fakeAnalysisService{job: job}
	h := NewAnalysis(svc, nil)

	body := `{"recording_url":"http://example.com/meeting.mp3","diarization":true,"expected_speakers":3}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/analyses", body)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, "http://example.com/meeting.mp3", svc.lastSubmit.RecordingURL)
	assert.True(t, svc.lastSubmit.Diarization)
	assert.Equal(t, 3, svc.lastSubmit.ExpectedSpeakers)

	var resp struct {
		Data struct {
			JobID  uuid.UUID `json:"job_id"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID, resp.Data.JobID)
	assert.Equal(t, string(entities.AnalysisJobStatusPending), resp.Data.Status)
}

func TestSubmitRejectsMissingRecordingURL(t *testing.T) {
	h := NewAnalysis(&fakeAnalysisService{}, nil)

	c, rec := newTestContext(t, http.MethodPost, "/v1/analyses", `{"diarization":false}`)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRejectsUnknownSection(t *testing.T) {
	svc := &fakeAnalysisService{submitErr: ucerrors.ErrUnknownSection}
	h := NewAnalysis(svc, nil)

	body := `{"recording_url":"http://example.com/a.wav","sections":["nonsense"]}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/analyses", body)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatusUnknownJobReturns404(t *testing.T) {
	svc := &fakeAnalysisService{jobErr: ucerrors.ErrJobNotFound}
	h := NewAnalysis(svc, nil)

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/v1/analyses/:id")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.GetStatus(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReportBeforeCompletionReturnsBadRequest(t *testing.T) {
	svc := &fakeAnalysisService{reportErr: ucerrors.ErrJobNotCompleted}
	h := NewAnalysis(svc, nil)

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/v1/analyses/:id/report")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.GetReport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSectionsReturnsCatalog(t *testing.T) {
	h := NewAnalysis(&fakeAnalysisService{}, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/sections", "")
	require.NoError(t, h.ListSections(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(entities.SectionCatalog()))
	assert.Equal(t, entities.SectionExecutiveSummary, resp.Data[0].Key)
}
