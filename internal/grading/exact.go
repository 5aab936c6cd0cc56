package grading

import (
	"strings"

	"github.com/noah-isme/skor-go-api/internal/models"
)

// ExactMatchFeedback is the canned message attached to answers that match the
// reference text exactly.
const ExactMatchFeedback = "Your answer matches the reference answer exactly. Full marks."

// CheckExactMatch compares the trimmed student text against the trimmed
// reference answer. On a match it returns a full-score verdict; otherwise the
// second return value is false and the answer should go to the AI grader.
//
// This fast path is pure and makes no external calls, so identical answers
// always receive identical results and the common short-answer case costs
// nothing.
func CheckExactMatch(question models.Question, answerText string) (Verdict, bool) {
	if strings.TrimSpace(answerText) != strings.TrimSpace(question.ReferenceAnswer) {
		return Verdict{}, false
	}

	return Verdict{
		Score:    question.MaxScore,
		Feedback: ExactMatchFeedback,
	}, true
}
