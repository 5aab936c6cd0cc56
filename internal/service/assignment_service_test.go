package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skor-go-api/internal/dto"
	"github.com/noah-isme/skor-go-api/internal/models"
)

func newAssignmentFixture(t *testing.T) (AssignmentService, *memoryAssignmentRepo, *memorySubmissionRepo) {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	assignmentRepo := newMemoryAssignmentRepo()
	submissionRepo := newMemorySubmissionRepo()
	svc := NewAssignmentService(assignmentRepo, submissionRepo, validate, discardLogger())

	return svc, assignmentRepo, submissionRepo
}

func TestAssignmentCreateSumsQuestionScores(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)

	payload := dto.AssignmentCreateRequest{
		Title:    "European capitals",
		Deadline: time.Now().Add(48 * time.Hour),
		Questions: []dto.QuestionCreateRequest{
			{Text: "Capital of France?", ReferenceAnswer: "Paris", MaxScore: 10},
			{Text: "Capital of Spain?", ReferenceAnswer: "Madrid", MaxScore: 5},
		},
	}

	response, err := svc.Create(context.Background(), 7, payload)
	require.NoError(t, err)
	require.Equal(t, 15, response.TotalScore)
	require.Len(t, response.Questions, 2)
	require.Equal(t, 1, response.Questions[0].Order)
	require.Equal(t, 2, response.Questions[1].Order)
	require.Equal(t, "Paris", response.Questions[0].ReferenceAnswer)

	stored := repo.assignments[response.ID]
	require.Equal(t, uint(7), stored.CreatedBy)
	require.Equal(t, 15, stored.TotalScore)
}

func TestAssignmentCreateRequiresQuestions(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	payload := dto.AssignmentCreateRequest{
		Title:    "Empty assignment",
		Deadline: time.Now().Add(time.Hour),
	}

	_, err := svc.Create(context.Background(), 7, payload)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestAssignmentGetNotFound(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.Get(context.Background(), 404, 0, false)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentGetHidesReferenceAnswersFromStudents(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)

	assignment := models.Assignment{
		Title:      "Quiz",
		Deadline:   time.Now().Add(time.Hour),
		TotalScore: 10,
		Questions: []models.Question{
			{Text: "Q1", ReferenceAnswer: "secret", MaxScore: 10, Order: 1},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &assignment))

	response, err := svc.Get(context.Background(), assignment.ID, 0, false)
	require.NoError(t, err)
	require.Empty(t, response.Questions[0].ReferenceAnswer)

	teacherView, err := svc.Get(context.Background(), assignment.ID, 0, true)
	require.NoError(t, err)
	require.Equal(t, "secret", teacherView.Questions[0].ReferenceAnswer)
}

func TestAssignmentListAnnotatesCompletion(t *testing.T) {
	svc, assignmentRepo, submissionRepo := newAssignmentFixture(t)

	assignment := models.Assignment{
		Title:      "Quiz",
		Deadline:   time.Now().Add(time.Hour),
		TotalScore: 10,
		Questions: []models.Question{
			{Text: "Q1", ReferenceAnswer: "a", MaxScore: 10, Order: 1},
		},
	}
	require.NoError(t, assignmentRepo.Create(context.Background(), &assignment))

	gradedAt := time.Now()
	require.NoError(t, submissionRepo.CreateGraded(context.Background(), &models.Submission{
		AssignmentID:  assignment.ID,
		StudentID:     3,
		Status:        models.SubmissionStatusGraded,
		ObtainedScore: 8,
		GradedAt:      &gradedAt,
	}))

	responses, total, err := svc.List(context.Background(), dto.AssignmentListFilter{}, 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].IsCompleted)
	require.True(t, *responses[0].IsCompleted)
	require.NotNil(t, responses[0].ObtainedScore)
	require.Equal(t, 8, *responses[0].ObtainedScore)

	otherStudent, _, err := svc.List(context.Background(), dto.AssignmentListFilter{}, 4)
	require.NoError(t, err)
	require.False(t, *otherStudent[0].IsCompleted)
	require.Nil(t, otherStudent[0].ObtainedScore)
}
