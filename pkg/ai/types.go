package ai

import "context"

// GenerateOptions tunes a single text-generation call.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// Generator describes a text-generation model. It is the only
// non-deterministic, fallible dependency of the grading pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Transcriber turns an answer image into plain text so it can be graded.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte) (string, error)
}
