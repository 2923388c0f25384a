package handler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingnotes-team/meeting-notes/errors"
	analysisdto "github.com/meetingnotes-team/meeting-notes/internal/adapter/dto/analysis"
	ucerrors "github.com/meetingnotes-team/meeting-notes/internal/usecase/errors"
)

// Audio formats ffmpeg normalization accepts on ingest.
var allowedRecordingExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
}

const (
	maxRecordingSize   = 2 << 30 // 2 GiB
	recordingURLExpiry = 24 * time.Hour
)

// RecordingStore is the object-storage surface the recording endpoints need.
// *storage.MinIOClient satisfies it.
type RecordingStore interface {
	UploadRecording(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetRecordingURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	ListRecordings(ctx context.Context, prefix string) ([]string, error)
}

// Recording handles recording upload endpoints
type Recording struct {
	store  RecordingStore
	logger *zap.Logger
}

// NewRecording creates a new recording handler
func NewRecording(store RecordingStore, logger *zap.Logger) *Recording {
	return &Recording{store: store, logger: logger}
}

// Upload stores a recording in object storage for later analysis
// @Summary      Upload meeting recording
// @Description  Stores an audio file in object storage and returns its object name for analysis submission
// @Tags         Recordings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file                    true  "Audio file"
// @Success      200   {object}  map[string]interface{}  "Upload result"
// @Failure      400   {object}  map[string]interface{}  "Missing file or unsupported format"
// @Router       /recordings [post]
func (h *Recording) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedRecordingExtensions[ext] {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(ucerrors.ErrUnsupportedAudio.Error()+": "+ext))
	}
	if fileHeader.Size > maxRecordingSize {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(ucerrors.ErrRecordingTooLarge.Error()))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("open upload", err))
	}
	defer src.Close()

	objectName := fmt.Sprintf("recordings/%s/%s%s",
		time.Now().UTC().Format("2006-01-02"), uuid.New().String(), ext)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request().Context()
	if err := h.store.UploadRecording(ctx, objectName, src, fileHeader.Size, contentType); err != nil {
		if h.logger != nil {
			h.logger.Error("❌ Failed to upload recording",
				zap.String("object_name", objectName),
				zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("upload recording", err))
	}

	// The URL is a convenience for callers outside the cluster; the object
	// name alone is enough to submit an analysis
	presignedURL, err := h.store.GetRecordingURL(ctx, objectName, recordingURLExpiry)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("⚠️ Failed to presign recording URL",
				zap.String("object_name", objectName),
				zap.Error(err))
		}
		presignedURL = ""
	}

	if h.logger != nil {
		h.logger.Info("📤 Recording uploaded",
			zap.String("object_name", objectName),
			zap.Int64("size", fileHeader.Size))
	}

	return HandleSuccess(h.logger, c, analysisdto.UploadRecordingResponse{
		ObjectName: objectName,
		Size:       fileHeader.Size,
		URL:        presignedURL,
	})
}

// List enumerates stored recordings
// @Summary      List uploaded recordings
// @Description  Returns the object names of recordings available for analysis
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "Recording list"
// @Router       /recordings [get]
func (h *Recording) List(c echo.Context) error {
	recordings, err := h.store.ListRecordings(c.Request().Context(), "recordings/")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list recordings", err))
	}

	return HandleSuccess(h.logger, c, analysisdto.ListRecordingsResponse{
		Recordings: recordings,
		Count:      len(recordings),
	})
}
