package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/skor-go-api/internal/dto"
	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAssignmentPastDue indicates the assignment deadline has passed.
var ErrAssignmentPastDue = errors.New("assignment is past due")

// AssignmentService exposes assignment workflows.
type AssignmentService interface {
	Create(ctx context.Context, createdBy uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	List(ctx context.Context, filter dto.AssignmentListFilter, studentID uint) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint, studentID uint, includeReference bool) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, subRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		submissions: subRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, createdBy uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	totalScore := 0
	questions := make([]models.Question, 0, len(payload.Questions))
	for i, question := range payload.Questions {
		totalScore += question.MaxScore
		questions = append(questions, models.Question{
			Text:            question.Text,
			ReferenceAnswer: question.ReferenceAnswer,
			MaxScore:        question.MaxScore,
			Order:           i + 1,
		})
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		CreatedBy:   createdBy,
		Deadline:    payload.Deadline,
		TotalScore:  totalScore,
		Questions:   questions,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Int("questions", len(questions)).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentListFilter, studentID uint) ([]dto.AssignmentResponse, int64, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, 0, err
	}

	assignments, total, err := s.assignments.List(ctx, repository.AssignmentFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	submissionByAssignment, err := s.submissionIndex(ctx, studentID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		response := dto.NewAssignmentResponse(assignment, false)
		annotateCompletion(&response, submissionByAssignment, studentID)
		responses = append(responses, response)
	}

	return responses, total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, studentID uint, includeReference bool) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	response := dto.NewAssignmentResponse(assignment, includeReference)

	submissionByAssignment, err := s.submissionIndex(ctx, studentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	annotateCompletion(&response, submissionByAssignment, studentID)

	return response, nil
}

func (s *assignmentService) submissionIndex(ctx context.Context, studentID uint) (map[uint]models.Submission, error) {
	if studentID == 0 {
		return nil, nil
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	index := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		index[submission.AssignmentID] = submission
	}

	return index, nil
}

func annotateCompletion(response *dto.AssignmentResponse, index map[uint]models.Submission, studentID uint) {
	if studentID == 0 {
		return
	}

	submission, completed := index[response.ID]
	response.IsCompleted = &completed
	if completed {
		score := submission.ObtainedScore
		response.ObtainedScore = &score
	}
}
