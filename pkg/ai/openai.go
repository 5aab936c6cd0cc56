package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skor",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of text generation requests",
	}, []string{"model", "operation"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skor",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of text generation failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed client.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Logger    zerolog.Logger
}

// OpenAIClient implements Generator and Transcriber against the OpenAI chat
// completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/noah-isme/skor-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Generate sends the prompt to the chat completion API and returns the raw
// model reply. Callers own all parsing of the reply.
func (c *OpenAIClient) Generate(parent context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Float64("temperature", float64(opts.Temperature)),
	))
	defer span.End()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(c.cfg.Model, "generate").Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(c.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		generationFailures.WithLabelValues(c.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe extracts the handwritten or typed text from an answer image
// using the vision capability of the chat completion API.
func (c *OpenAIClient) Transcribe(parent context.Context, image []byte) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.transcribe", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("image_bytes", len(image)),
	))
	defer span.End()

	if len(image) == 0 {
		err := fmt.Errorf("image payload is empty")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	request := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Transcribe the student's answer in this image as plain text. Return only the transcription.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + encoded,
						},
					},
				},
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(c.cfg.Model, "transcribe").Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(c.cfg.Model, "transcribe").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai transcribe: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		generationFailures.WithLabelValues(c.cfg.Model, "transcribe").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
