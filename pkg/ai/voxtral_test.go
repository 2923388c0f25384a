package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meetingnotes-team/meeting-notes/internal/usecase/pipeline"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*VoxtralClient, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := NewVoxtralClient(&config.MistralConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
		Model:   "voxtral-small-latest",
	})
	return client, ts
}

func TestVoxtralInfer_TextOnly(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req VoxtralChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "voxtral-small-latest", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 1)
		require.Equal(t, "text", req.Messages[0].Content[0].Type)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "merged report"}},
			},
			"usage": map[string]int{"prompt_tokens": 250, "completion_tokens": 80},
		})
	})

	result, err := client.Infer(context.Background(), pipeline.InferRequest{
		Prompt:    "merge the segments",
		MaxTokens: 8000,
	})
	require.NoError(t, err)
	require.Equal(t, "merged report", result.Text)
	require.NotNil(t, result.Usage)
	require.Equal(t, 250, result.Usage.InputTokens)
	require.Equal(t, 80, result.Usage.OutputTokens)
}

func TestVoxtralInfer_AudioAttachedAsBase64(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req VoxtralChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		parts := req.Messages[0].Content
		require.Len(t, parts, 2)
		require.Equal(t, "input_audio", parts[0].Type)
		require.NotNil(t, parts[0].InputAudio)
		require.Equal(t, "wav", parts[0].InputAudio.Format)
		require.NotEmpty(t, parts[0].InputAudio.Data)
		require.Equal(t, "text", parts[1].Type)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "chunk analysis"}},
			},
		})
	})

	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF fake wav"), 0o644))

	result, err := client.Infer(context.Background(), pipeline.InferRequest{
		AudioPath: audioPath,
		Prompt:    "analyze this segment",
		MaxTokens: 4000,
	})
	require.NoError(t, err)
	require.Equal(t, "chunk analysis", result.Text)
}

func TestVoxtralInfer_RetriesOn5xx(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "recovered"}},
			},
		})
	})

	result, err := client.Infer(context.Background(), pipeline.InferRequest{Prompt: "try again"})
	require.NoError(t, err)
	require.Equal(t, "recovered", result.Text)
	require.Equal(t, 2, calls)
}

func TestVoxtralInfer_NoRetryOn4xx(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Infer(context.Background(), pipeline.InferRequest{Prompt: "denied"})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
