package dto

import (
	"time"

	"github.com/noah-isme/skor-go-api/internal/models"
)

// AnswerSubmitRequest carries one answer in a submit payload. Either the text
// or an inline image must be present; an image is transcribed before grading.
type AnswerSubmitRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	AnswerText string `json:"answer_text" validate:"required_without=AnswerImage"`
	// AnswerImage is a base64-encoded image of a handwritten answer.
	AnswerImage string `json:"answer_image" validate:"omitempty,base64"`
}

// SubmitRequest is the payload for submitting answers to an assignment.
type SubmitRequest struct {
	Answers []AnswerSubmitRequest `json:"answers" validate:"required,min=1,dive"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted grading graded"`
}

// AnswerResponse serializes a graded answer.
type AnswerResponse struct {
	QuestionID    uint   `json:"question_id"`
	QuestionText  string `json:"question_text,omitempty"`
	AnswerText    string `json:"answer_text"`
	MaxScore      int    `json:"max_score"`
	ObtainedScore *int   `json:"obtained_score"`
	AIFeedback    string `json:"ai_feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint             `json:"id"`
	AssignmentID    uint             `json:"assignment_id"`
	StudentID       uint             `json:"student_id"`
	Status          string           `json:"status"`
	ObtainedScore   int              `json:"obtained_score"`
	TotalScore      int              `json:"total_score"`
	OverallFeedback string           `json:"overall_feedback"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	GradedAt        *time.Time       `json:"graded_at"`
	Answers         []AnswerResponse `json:"answers"`
	Assignment      AssignmentLite   `json:"assignment"`
	Student         StudentLite      `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		StudentID:       model.StudentID,
		Status:          model.Status,
		ObtainedScore:   model.ObtainedScore,
		OverallFeedback: model.OverallFeedback,
		SubmittedAt:     model.SubmittedAt,
		GradedAt:        model.GradedAt,
	}

	if model.Assignment.ID != 0 {
		response.TotalScore = model.Assignment.TotalScore
		response.Assignment = AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			Deadline: model.Assignment.Deadline,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	answers := make([]AnswerResponse, 0, len(model.Answers))
	for _, answer := range model.Answers {
		item := AnswerResponse{
			QuestionID:    answer.QuestionID,
			AnswerText:    answer.AnswerText,
			ObtainedScore: answer.ObtainedScore,
			AIFeedback:    answer.AIFeedback,
		}
		if answer.Question.ID != 0 {
			item.QuestionText = answer.Question.Text
			item.MaxScore = answer.Question.MaxScore
		}
		answers = append(answers, item)
	}
	response.Answers = answers

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
