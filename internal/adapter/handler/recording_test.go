package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeRecordingStore struct {
	uploaded   map[string]int64
	objects    []string
	uploadErr  error
	presignErr error
	listErr    error
}

func (f *fakeRecordingStore) UploadRecording(_ context.Context, objectName string, reader io.Reader, size int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.uploaded == nil {
		f.uploaded = make(map[string]int64)
	}
	f.uploaded[objectName] = size
	return nil
}

func (f *fakeRecordingStore) GetRecordingURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "http://minio.local/" + objectName + "?X-Amz-Signature=abc", nil
}

func (f *fakeRecordingStore) ListRecordings(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func newUploadContext(t *testing.T, filename string, payload []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/recordings", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUploadStoresRecordingWithPresignedURL(t *testing.T) {
	store := &fakeRecordingStore{}
	h := NewRecording(store, nil)
	c, rec := newUploadContext(t, "standup.wav", []byte("RIFF fake audio"))

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.uploaded, 1)

	var resp struct {
		Data struct {
			ObjectName string `json:"object_name"`
			Size       int64  `json:"size"`
			URL        string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.Data.ObjectName, "recordings/"))
	require.True(t, strings.HasSuffix(resp.Data.ObjectName, ".wav"))
	require.Equal(t, int64(len("RIFF fake audio")), resp.Data.Size)
	require.Contains(t, resp.Data.URL, resp.Data.ObjectName)
}

func TestUploadSucceedsWhenPresignFails(t *testing.T) {
	store := &fakeRecordingStore{presignErr: errors.New("presign unavailable")}
	h := NewRecording(store, nil)
	c, rec := newUploadContext(t, "standup.mp3", []byte("audio"))

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Data.URL)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	store := &fakeRecordingStore{}
	h := NewRecording(store, nil)
	c, rec := newUploadContext(t, "notes.txt", []byte("not audio"))

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, store.uploaded)
}

func TestListReturnsStoredRecordings(t *testing.T) {
	store := &fakeRecordingStore{objects: []string{
		"recordings/2026-08-29/a.wav",
		"recordings/2026-08-30/b.mp3",
	}}
	h := NewRecording(store, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/recordings", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Recordings []string `json:"recordings"`
			Count      int      `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Data.Count)
	require.Equal(t, store.objects, resp.Data.Recordings)
}
