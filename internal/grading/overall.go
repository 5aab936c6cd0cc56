package grading

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/pkg/ai"
)

const (
	overallTemperature = 0.5
	overallMaxTokens   = 200
	questionExcerptLen = 50
)

var overallTagPattern = regexp.MustCompile(`(?s)<overall_feedback>(.*?)</overall_feedback>`)

// OverallFeedback produces the narrative feedback attached to a finished
// submission.
type OverallFeedback struct {
	generator ai.Generator
	logger    zerolog.Logger
}

// NewOverallFeedback constructs the generator-backed summarizer.
func NewOverallFeedback(generator ai.Generator, logger zerolog.Logger) *OverallFeedback {
	return &OverallFeedback{
		generator: generator,
		logger:    logger.With().Str("component", "overall_feedback").Logger(),
	}
}

// Summarize builds a short narrative for the graded submission. When the
// generation call fails it falls back to a deterministic message selected by
// percentage band, so a graded submission always carries non-empty feedback.
func (o *OverallFeedback) Summarize(ctx context.Context, assignment models.Assignment, submission models.Submission) string {
	percentage := scorePercentage(submission.ObtainedScore, assignment.TotalScore)

	raw, err := o.generator.Generate(ctx, buildOverallPrompt(assignment, submission, percentage), ai.GenerateOptions{
		Temperature: overallTemperature,
		MaxTokens:   overallMaxTokens,
	})
	if err != nil {
		o.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("overall feedback generation failed, using band fallback")
		return FallbackOverallFeedback(percentage)
	}

	if match := overallTagPattern.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1])
	}

	// A model that ignored the tag convention still produced prose worth
	// showing, unless it produced nothing at all.
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}

	return FallbackOverallFeedback(percentage)
}

// FallbackOverallFeedback maps a score percentage onto a static narrative.
func FallbackOverallFeedback(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent work! Keep up this level of study."
	case percentage >= 80:
		return "Good work, with room to improve. Review the topics you lost points on."
	case percentage >= 60:
		return "A passing result. Strengthen your grasp of the fundamentals."
	default:
		return "This needs more work. Revisit the material and practice similar questions."
	}
}

func buildOverallPrompt(assignment models.Assignment, submission models.Submission, percentage float64) string {
	builder := strings.Builder{}
	builder.WriteString("Write an overall evaluation of a student's graded assignment.\n\n")
	fmt.Fprintf(&builder, "Assignment: %s\n", assignment.Title)
	fmt.Fprintf(&builder, "Total score: %d\n", assignment.TotalScore)
	fmt.Fprintf(&builder, "Obtained score: %d\n", submission.ObtainedScore)
	fmt.Fprintf(&builder, "Percentage: %.1f%%\n", percentage)
	builder.WriteString("\nPer-question results:\n")
	for _, answer := range submission.Answers {
		score := 0
		if answer.ObtainedScore != nil {
			score = *answer.ObtainedScore
		}
		fmt.Fprintf(&builder, "- %s... %d/%d\n", excerpt(answer.Question.Text, questionExcerptLen), score, answer.Question.MaxScore)
	}
	builder.WriteString("\nReply using exactly this format, with a concise evaluation and study advice of at most 100 words:\n\n<overall_feedback>evaluation and study advice</overall_feedback>\n")
	return builder.String()
}

func scorePercentage(obtained, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(obtained) / float64(total) * 100
}

func excerpt(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
