package handler_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
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

func setupDashboardApp(t *testing.T, jwtStub fiber.Handler) (*fiber.App, *gorm.DB) {
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

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, cache, time.Minute, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		JWTMiddleware:           jwtStub,
	})

	return app, db
}

func dashboardTestUser(c *fiber.Ctx) error {
	c.Locals("user_id", uint(1))
	c.Locals("user_role", "student")
	return c.Next()
}

func TestStudentDashboardHandlerAggregates(t *testing.T) {
	app, db := setupDashboardApp(t, dashboardTestUser)

	student := models.Student{Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, db.Create(&student).Error)

	graded := models.Assignment{
		Title:      "Capitals",
		CreatedBy:  9,
		Deadline:   time.Now().Add(time.Hour),
		TotalScore: 10,
	}
	require.NoError(t, db.Create(&graded).Error)

	pending := models.Assignment{
		Title:      "Rivers",
		CreatedBy:  9,
		Deadline:   time.Now().Add(2 * time.Hour),
		TotalScore: 20,
	}
	require.NoError(t, db.Create(&pending).Error)

	gradedAt := time.Now()
	submission := models.Submission{
		AssignmentID:    graded.ID,
		StudentID:       student.ID,
		Status:          models.SubmissionStatusGraded,
		ObtainedScore:   8,
		OverallFeedback: "Great work overall.",
		SubmittedAt:     time.Now(),
		GradedAt:        &gradedAt,
	}
	require.NoError(t, db.Create(&submission).Error)

	req := httptest.NewRequest("GET", "/api/v1/student/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                         `json:"success"`
		Data    dto.StudentDashboardResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, 2, body.Data.Summary.TotalAssignments)
	require.Equal(t, 1, body.Data.Summary.Submitted)
	require.Equal(t, 1, body.Data.Summary.Graded)
	require.Equal(t, 1, body.Data.Summary.Pending)
	require.InDelta(t, 80.0, body.Data.Summary.AverageScorePct, 0.01)

	require.Len(t, body.Data.Pending, 1)
	require.Equal(t, "Rivers", body.Data.Pending[0].Title)

	require.Len(t, body.Data.Recent, 1)
	require.Equal(t, submission.ID, body.Data.Recent[0].SubmissionID)
	require.Equal(t, "Great work overall.", body.Data.Recent[0].OverallFeedback)
}

func TestStudentDashboardHandlerRequiresIdentity(t *testing.T) {
	app, _ := setupDashboardApp(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/student/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
