package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one student's answer set for an assignment. At most one
// submission exists per (assignment, student) pair, enforced by the composite
// unique index so concurrent submit attempts cannot both succeed.
type Submission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AssignmentID uint   `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint   `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Status       string `gorm:"size:32;not null" json:"status"`
	// ObtainedScore is the raw point total across answers, not a percentage.
	ObtainedScore   int        `gorm:"not null;default:0" json:"obtained_score"`
	OverallFeedback string     `gorm:"type:text" json:"overall_feedback"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	GradedAt        *time.Time `json:"graded_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Assignment      Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student         Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Answers         []Answer   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

const (
	// SubmissionStatusSubmitted indicates the submission was received but grading has not started.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGrading indicates the grading pipeline is running.
	SubmissionStatusGrading = "grading"
	// SubmissionStatusGraded indicates every answer carries a final verdict.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission reached its terminal graded state.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// Answer stores one graded answer. One answer exists per question within a
// submission; the unique index mirrors the submission-level invariant.
type Answer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubmissionID uint   `gorm:"not null;uniqueIndex:idx_answers_submission_question" json:"submission_id"`
	QuestionID   uint   `gorm:"not null;uniqueIndex:idx_answers_submission_question" json:"question_id"`
	AnswerText   string `gorm:"type:text;not null" json:"answer_text"`
	// ObtainedScore is nil until the grading pipeline has produced a verdict.
	ObtainedScore *int           `json:"obtained_score"`
	AIFeedback    string         `gorm:"type:text" json:"ai_feedback"`
	GradingTrace  datatypes.JSON `json:"grading_trace,omitempty"`
	Question      Question       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}
