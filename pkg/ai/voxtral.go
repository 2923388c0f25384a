package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meetingnotes-team/meeting-notes/internal/usecase/pipeline"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
)

// VoxtralClient calls the Mistral chat-completions API with Voxtral audio
// models. It implements the pipeline Inference contract for both audio and
// text-only calls.
type VoxtralClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewVoxtralClient creates a Mistral client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewVoxtralClient(cfg *config.MistralConfig) *VoxtralClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("MISTRAL_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("MISTRAL_API_URL")
		if base == "" {
			base = "https://api.mistral.ai"
		}
	}

	model := "voxtral-small-latest"
	if cfg != nil && cfg.Model != "" {
		model = cfg.Model
	}

	return &VoxtralClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// VoxtralChatRequest is the shape for chat completion requests
type VoxtralChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatMessage holds either a plain string or multimodal content parts
type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one element of a multimodal message
type ContentPart struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
}

// InputAudio carries base64-encoded audio inline in the request
type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

// VoxtralChatResponse is a minimal response shape
type VoxtralChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Infer sends one chat-completion call. When req.AudioPath is set the file is
// attached inline as base64 WAV. Transport errors and 5xx responses are
// retried with exponential backoff; 4xx responses are not.
func (v *VoxtralClient) Infer(ctx context.Context, req pipeline.InferRequest) (pipeline.InferResult, error) {
	parts := make([]ContentPart, 0, 2)
	if req.AudioPath != "" {
		data, err := os.ReadFile(req.AudioPath)
		if err != nil {
			return pipeline.InferResult{}, fmt.Errorf("read audio file: %w", err)
		}
		parts = append(parts, ContentPart{
			Type: "input_audio",
			InputAudio: &InputAudio{
				Data:   base64.StdEncoding.EncodeToString(data),
				Format: "wav",
			},
		})
	}
	parts = append(parts, ContentPart{Type: "text", Text: req.Prompt})

	body := VoxtralChatRequest{
		Model:       v.model,
		Messages:    []ChatMessage{{Role: "user", Content: parts}},
		Temperature: 0.1,
		MaxTokens:   req.MaxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return pipeline.InferResult{}, err
	}

	var result pipeline.InferResult
	operation := func() error {
		res, opErr := v.doRequest(ctx, payload)
		if opErr != nil {
			return opErr
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(2*time.Minute)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return pipeline.InferResult{}, err
	}
	return result, nil
}

func (v *VoxtralClient) doRequest(ctx context.Context, payload []byte) (pipeline.InferResult, error) {
	endpoint := v.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return pipeline.InferResult{}, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return pipeline.InferResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return pipeline.InferResult{}, fmt.Errorf("mistral returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return pipeline.InferResult{}, backoff.Permanent(fmt.Errorf("mistral returned status %d", resp.StatusCode))
	}

	var cr VoxtralChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return pipeline.InferResult{}, backoff.Permanent(err)
	}
	if len(cr.Choices) == 0 {
		return pipeline.InferResult{}, backoff.Permanent(fmt.Errorf("empty response from mistral"))
	}

	return pipeline.InferResult{
		Text: cr.Choices[0].Message.Content,
		Usage: &pipeline.Usage{
			InputTokens:  cr.Usage.PromptTokens,
			OutputTokens: cr.Usage.CompletionTokens,
		},
	}, nil
}
