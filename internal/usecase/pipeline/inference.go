package pipeline

import "context"

// InferRequest is one call to the underlying model. AudioPath is empty for
// text-only calls (synthesis phase).
type InferRequest struct {
	AudioPath string
	Prompt    string
	MaxTokens int
}

// Usage is the token accounting a model call may expose
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// InferResult is the model output. Usage is nil when the backend does not
// report token counts.
type InferResult struct {
	Text  string
	Usage *Usage
}

// Inference is the model capability the pipeline is written against. Local
// runtimes and remote HTTP backends implement the same contract.
type Inference interface {
	Infer(ctx context.Context, req InferRequest) (InferResult, error)
}
