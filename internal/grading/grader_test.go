package grading

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/pkg/ai"
)

type stubGenerator struct {
	reply string
	err   error
	calls int

	lastPrompt string
	lastOpts   ai.GenerateOptions
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastOpts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func parisQuestion() models.Question {
	return models.Question{
		ID:              1,
		AssignmentID:    1,
		Text:            "What is the capital of France?",
		ReferenceAnswer: "Paris",
		MaxScore:        10,
	}
}

func TestCheckExactMatchFullScore(t *testing.T) {
	verdict, ok := CheckExactMatch(parisQuestion(), "  Paris \n")
	require.True(t, ok)
	require.Equal(t, 10, verdict.Score)
	require.Equal(t, ExactMatchFeedback, verdict.Feedback)
}

func TestCheckExactMatchMiss(t *testing.T) {
	_, ok := CheckExactMatch(parisQuestion(), "London")
	require.False(t, ok)
}

func TestAnswerGraderParsesReply(t *testing.T) {
	generator := &stubGenerator{reply: "<score>7</score><feedback>close, but incomplete</feedback>"}
	grader := NewAnswerGrader(generator, testLogger())

	verdict := grader.Grade(context.Background(), parisQuestion(), "The capital is Paris, I think")
	require.Equal(t, 7, verdict.Score)
	require.Equal(t, "close, but incomplete", verdict.Feedback)
	require.Equal(t, 1, generator.calls)
	require.InDelta(t, 0.3, float64(generator.lastOpts.Temperature), 1e-6)
}

func TestAnswerGraderPromptContents(t *testing.T) {
	generator := &stubGenerator{reply: "<score>0</score><feedback>wrong</feedback>"}
	grader := NewAnswerGrader(generator, testLogger())

	grader.Grade(context.Background(), parisQuestion(), "London")
	require.Contains(t, generator.lastPrompt, "What is the capital of France?")
	require.Contains(t, generator.lastPrompt, "Reference answer: Paris")
	require.Contains(t, generator.lastPrompt, "Student answer: London")
	require.Contains(t, generator.lastPrompt, "Maximum score: 10")
	require.Contains(t, generator.lastPrompt, "<score>")
	require.Contains(t, generator.lastPrompt, "<feedback>")
}

func TestAnswerGraderFailClosed(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream unavailable")}
	grader := NewAnswerGrader(generator, testLogger())

	verdict := grader.Grade(context.Background(), parisQuestion(), "London")
	require.Equal(t, 0, verdict.Score)
	require.Equal(t, FailedGradingFeedback, verdict.Feedback)
}

func TestAnswerGraderScoreAlwaysWithinBounds(t *testing.T) {
	replies := []string{
		"<score>9999</score><feedback>way too much</feedback>",
		"<score>-3</score>",
		"garbage with no structure at all",
		"<score></score><feedback></feedback>",
		strings.Repeat("<score>12</score>", 3),
	}

	for _, reply := range replies {
		generator := &stubGenerator{reply: reply}
		grader := NewAnswerGrader(generator, testLogger())
		verdict := grader.Grade(context.Background(), parisQuestion(), "anything")
		require.GreaterOrEqual(t, verdict.Score, 0, "reply %q", reply)
		require.LessOrEqual(t, verdict.Score, 10, "reply %q", reply)
	}
}
