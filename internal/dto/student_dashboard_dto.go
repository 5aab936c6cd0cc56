package dto

import "time"

// ProgressSummary aggregates a student's grading results across assignments.
type ProgressSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	Submitted        int     `json:"submitted"`
	Graded           int     `json:"graded"`
	Pending          int     `json:"pending"`
	Overdue          int     `json:"overdue"`
	AverageScorePct  float64 `json:"average_score_pct"`
	CompletionRate   float64 `json:"completion_rate"`
}

// AssignmentProgress describes one assignment from the student's perspective.
type AssignmentProgress struct {
	AssignmentID  uint      `json:"assignment_id"`
	Title         string    `json:"title"`
	Deadline      time.Time `json:"deadline"`
	TotalScore    int       `json:"total_score"`
	Status        string    `json:"status"`
	SubmissionID  *uint     `json:"submission_id,omitempty"`
	ObtainedScore *int      `json:"obtained_score,omitempty"`
	Overdue       bool      `json:"overdue"`
}

// GradingActivity is a recent grading result shown on the dashboard.
type GradingActivity struct {
	SubmissionID    uint       `json:"submission_id"`
	AssignmentID    uint       `json:"assignment_id"`
	AssignmentTitle string     `json:"assignment_title"`
	Status          string     `json:"status"`
	ObtainedScore   int        `json:"obtained_score"`
	TotalScore      int        `json:"total_score"`
	OverallFeedback string     `json:"overall_feedback"`
	GradedAt        *time.Time `json:"graded_at"`
}

// StudentDashboardResponse is the aggregated dashboard payload.
type StudentDashboardResponse struct {
	Summary ProgressSummary      `json:"summary"`
	Pending []AssignmentProgress `json:"pending"`
	Recent  []GradingActivity    `json:"recent"`
}
