package grading

import (
	"regexp"
	"strconv"
	"strings"
)

// Verdict is the outcome of grading a single answer. Every grading strategy
// produces one, including all failure paths.
type Verdict struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

var (
	scoreTagPattern    = regexp.MustCompile(`(?s)<score>(.*?)</score>`)
	feedbackTagPattern = regexp.MustCompile(`(?s)<feedback>(.*?)</feedback>`)
	digitsPattern      = regexp.MustCompile(`\d+`)
)

// ParseVerdict extracts a clamped score and a feedback string from a raw
// model reply. It is total: malformed input degrades to score 0 and whatever
// text the reply contained, never an error.
//
// The two fallback policies are intentionally asymmetric. A score we cannot
// read becomes 0 so an unparsed answer never receives credit, while missing
// feedback falls back to the whole trimmed reply so the student still sees
// something useful from a model that ignored the tag convention.
func ParseVerdict(raw string, maxScore int) Verdict {
	verdict := Verdict{Feedback: strings.TrimSpace(raw)}

	if match := scoreTagPattern.FindStringSubmatch(raw); match != nil {
		// Only the first digit run counts: "7/10" inside the tag means 7,
		// since scores are already expressed against the question's max.
		if digits := digitsPattern.FindString(match[1]); digits != "" {
			if score, err := strconv.Atoi(digits); err == nil {
				verdict.Score = score
			}
		}
	}

	verdict.Score = clampScore(verdict.Score, maxScore)

	if match := feedbackTagPattern.FindStringSubmatch(raw); match != nil {
		verdict.Feedback = strings.TrimSpace(match[1])
	}

	return verdict
}

func clampScore(score, maxScore int) int {
	if score < 0 {
		return 0
	}
	if maxScore >= 0 && score > maxScore {
		return maxScore
	}
	return score
}
