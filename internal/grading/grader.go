package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/pkg/ai"
)

// FailedGradingFeedback is returned when the generation call fails and the
// answer must be handed to a teacher.
const FailedGradingFeedback = "Automatic grading failed for this answer. Please ask your teacher for a manual review."

// gradingTemperature biases the model toward literal, consistent grading
// rather than creative variance.
const gradingTemperature = 0.3

var (
	verdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skor",
		Subsystem: "grading",
		Name:      "verdicts_total",
		Help:      "Number of per-answer verdicts produced, by strategy",
	}, []string{"strategy"})

	gradingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skor",
		Subsystem: "grading",
		Name:      "answer_duration_seconds",
		Help:      "Duration of grading one answer via the AI grader",
	})
)

// AnswerGrader grades a single free-text answer against its question using a
// text-generation model.
type AnswerGrader struct {
	generator ai.Generator
	logger    zerolog.Logger
}

// NewAnswerGrader constructs an AnswerGrader around the given generator.
func NewAnswerGrader(generator ai.Generator, logger zerolog.Logger) *AnswerGrader {
	return &AnswerGrader{
		generator: generator,
		logger:    logger.With().Str("component", "answer_grader").Logger(),
	}
}

// Grade produces a verdict for the answer. It never returns an error: any
// failure of the underlying generation call yields a zero-score verdict with
// a manual-review notice, so an ungraded answer cannot silently receive
// credit and a provider outage cannot block a submission.
func (g *AnswerGrader) Grade(ctx context.Context, question models.Question, answerText string) Verdict {
	tracer := otel.Tracer("github.com/noah-isme/skor-go-api/internal/grading")
	ctx, span := tracer.Start(ctx, "grading.answer")
	span.SetAttributes(
		attribute.Int64("grading.question_id", int64(question.ID)),
		attribute.Int("grading.max_score", question.MaxScore),
	)
	defer span.End()

	prompt := buildGradingPrompt(question, answerText)

	start := time.Now()
	raw, err := g.generator.Generate(ctx, prompt, ai.GenerateOptions{Temperature: gradingTemperature})
	gradingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		verdictsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation_failed")
		g.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("generation call failed, falling back to zero score")
		return Verdict{Score: 0, Feedback: FailedGradingFeedback}
	}

	verdict := ParseVerdict(raw, question.MaxScore)
	verdictsTotal.WithLabelValues("ai").Inc()
	span.SetAttributes(attribute.Int("grading.score", verdict.Score))

	return verdict
}

// RecordExactMatch bumps the strategy counter for fast-path verdicts so the
// exact-match hit rate stays visible next to the AI verdict counters.
func RecordExactMatch() {
	verdictsTotal.WithLabelValues("exact_match").Inc()
}

func buildGradingPrompt(question models.Question, answerText string) string {
	builder := strings.Builder{}
	builder.WriteString("You are an experienced teacher grading a student's free-text answer.\n\n")
	builder.WriteString("Question: ")
	builder.WriteString(question.Text)
	builder.WriteString("\nReference answer: ")
	builder.WriteString(question.ReferenceAnswer)
	builder.WriteString("\nStudent answer: ")
	builder.WriteString(answerText)
	fmt.Fprintf(&builder, "\nMaximum score: %d\n", question.MaxScore)
	builder.WriteString("\nGrading bands:\n")
	builder.WriteString("- Completely correct and complete: full score\n")
	builder.WriteString("- Mostly correct with minor mistakes: 80-90% of the score\n")
	builder.WriteString("- Partially correct: 50-70% of the score\n")
	builder.WriteString("- Seriously flawed but shows some understanding: 20-40% of the score\n")
	builder.WriteString("- Entirely wrong or unrelated: 0\n")
	fmt.Fprintf(&builder, "\nReply using exactly this format and nothing else:\n\n<score>the score out of %d, digits only</score>\n<feedback>specific feedback covering strengths, mistakes and how to improve</feedback>\n", question.MaxScore)
	return builder.String()
}
