package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordingExt(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want string
	}{
		{"object key", "recordings/2026-08-30/meeting.mp3", ".mp3"},
		{"plain url", "https://example.com/recordings/meeting.wav", ".wav"},
		{
			"presigned url",
			"https://minio.local/bucket/recordings/meeting.wav?X-Amz-Credential=key%2F20260830&X-Amz-Signature=abc.def",
			".wav",
		},
		{"url without extension", "https://example.com/download?id=42", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, recordingExt(tc.ref))
		})
	}
}

func TestFetchRecording_DownloadsPresignedURL(t *testing.T) {
	payload := []byte("RIFF fake audio bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recordings/meeting.wav", r.URL.Path)
		w.Write(payload)
	}))
	defer server.Close()

	svc := &analysisService{}
	workDir := t.TempDir()

	dest, err := svc.fetchRecording(context.Background(),
		server.URL+"/recordings/meeting.wav?X-Amz-Credential=key%2F20260830&X-Amz-Signature=abc", workDir)
	require.NoError(t, err)
	require.Equal(t, ".wav", recordingExt(dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFetchRecording_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := &analysisService{}
	_, err := svc.fetchRecording(context.Background(), server.URL+"/gone.wav", t.TempDir())
	require.Error(t, err)
}

func TestFetchRecording_ObjectKeyWithoutStorage(t *testing.T) {
	svc := &analysisService{}
	_, err := svc.fetchRecording(context.Background(), "recordings/meeting.wav", t.TempDir())
	require.Error(t, err)
}
