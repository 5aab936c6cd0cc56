package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/skor-go-api/internal/config"
	"github.com/noah-isme/skor-go-api/internal/dto"
	"github.com/noah-isme/skor-go-api/internal/handler"
	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/internal/repository"
	"github.com/noah-isme/skor-go-api/internal/router"
	"github.com/noah-isme/skor-go-api/internal/service"
)

func setupAssignmentApp(t *testing.T, role string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Assignment{},
		&models.Question{},
		&models.Submission{},
		&models.Answer{},
	))
	t.Cleanup(func() {
		db.Exec("DELETE FROM answers")
		db.Exec("DELETE FROM submissions")
		db.Exec("DELETE FROM questions")
		db.Exec("DELETE FROM assignments")
		db.Exec("DELETE FROM students")
		db.Exec("DELETE FROM sqlite_sequence")
	})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app, db
}

func TestAssignmentHandlerCreateAndList(t *testing.T) {
	app, _ := setupAssignmentApp(t, "teacher")

	payload := dto.AssignmentCreateRequest{
		Title:    "World Capitals",
		Deadline: time.Now().Add(48 * time.Hour),
		Questions: []dto.QuestionCreateRequest{
			{Text: "What is the capital of France?", ReferenceAnswer: "Paris", MaxScore: 10},
			{Text: "What is the capital of Japan?", ReferenceAnswer: "Tokyo", MaxScore: 5},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createBody struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &createBody)
	require.True(t, createBody.Success)
	require.Equal(t, "assignment created", createBody.Message)
	require.NotZero(t, createBody.Data.ID)
	require.Equal(t, 15, createBody.Data.TotalScore)
	require.Len(t, createBody.Data.Questions, 2)
	require.Equal(t, "Paris", createBody.Data.Questions[0].ReferenceAnswer)

	listReq := httptest.NewRequest("GET", "/api/v1/assignments", nil)
	listResp, err := app.Test(listReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Data struct {
			Items []dto.AssignmentResponse `json:"items"`
			Total int64                    `json:"total"`
		} `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.EqualValues(t, 1, listBody.Data.Total)
	require.Len(t, listBody.Data.Items, 1)
	require.Equal(t, "World Capitals", listBody.Data.Items[0].Title)
}

func TestAssignmentHandlerCreateRequiresQuestions(t *testing.T) {
	app, _ := setupAssignmentApp(t, "teacher")

	payload := dto.AssignmentCreateRequest{
		Title:    "Empty",
		Deadline: time.Now().Add(time.Hour),
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestAssignmentHandlerStudentViewHidesReference(t *testing.T) {
	app, db := setupAssignmentApp(t, "student")

	assignment := models.Assignment{
		Title:      "Capitals",
		CreatedBy:  7,
		Deadline:   time.Now().Add(time.Hour),
		TotalScore: 10,
		Questions: []models.Question{
			{Text: "What is the capital of France?", ReferenceAnswer: "Paris", MaxScore: 10, Order: 1},
		},
	}
	require.NoError(t, db.Create(&assignment).Error)

	req := httptest.NewRequest("GET", "/api/v1/assignments/"+strconv.FormatUint(uint64(assignment.ID), 10), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Questions, 1)
	require.Empty(t, body.Data.Questions[0].ReferenceAnswer)
	require.Equal(t, 10, body.Data.Questions[0].MaxScore)
}

func TestAssignmentHandlerGetNotFound(t *testing.T) {
	app, _ := setupAssignmentApp(t, "teacher")

	req := httptest.NewRequest("GET", "/api/v1/assignments/12345", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
