package dto

import (
	"time"

	"github.com/noah-isme/skor-go-api/internal/models"
)

// QuestionCreateRequest describes one question inside an assignment payload.
type QuestionCreateRequest struct {
	Text            string `json:"text" validate:"required,min=3"`
	ReferenceAnswer string `json:"reference_answer" validate:"required"`
	MaxScore        int    `json:"max_score" validate:"gte=0"`
}

// AssignmentCreateRequest is the payload for creating an assignment with its
// questions.
type AssignmentCreateRequest struct {
	Title       string                  `json:"title" validate:"required,min=3,max=255"`
	Description string                  `json:"description"`
	Deadline    time.Time               `json:"deadline" validate:"required"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// AssignmentListFilter describes query string filters for listing assignments.
type AssignmentListFilter struct {
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// QuestionResponse serializes a question. The reference answer is only
// included for teachers.
type QuestionResponse struct {
	ID              uint   `json:"id"`
	Text            string `json:"text"`
	ReferenceAnswer string `json:"reference_answer,omitempty"`
	MaxScore        int    `json:"max_score"`
	Order           int    `json:"order"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Deadline      time.Time          `json:"deadline"`
	TotalScore    int                `json:"total_score"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	IsCompleted   *bool              `json:"is_completed,omitempty"`
	ObtainedScore *int               `json:"obtained_score,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment, includeReference bool) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Deadline:    model.Deadline,
		TotalScore:  model.TotalScore,
		CreatedAt:   model.CreatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			item := QuestionResponse{
				ID:       question.ID,
				Text:     question.Text,
				MaxScore: question.MaxScore,
				Order:    question.Order,
			}
			if includeReference {
				item.ReferenceAnswer = question.ReferenceAnswer
			}
			questions = append(questions, item)
		}
		response.Questions = questions
	}

	return response
}
