package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/skor-go-api/internal/config"
	"github.com/noah-isme/skor-go-api/internal/handler"
	"github.com/noah-isme/skor-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler       *handler.AssignmentHandler
	SubmissionHandler       *handler.SubmissionHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Assignments, with submission intake nested under each assignment
	if deps.AssignmentHandler != nil {
		assignmentGroup := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignmentGroup)

		if deps.SubmissionHandler != nil {
			submissionGroup := api.Group("/submissions", jwtMiddleware)
			deps.SubmissionHandler.Register(assignmentGroup, submissionGroup)
		}
	}

	// Student dashboard
	if deps.StudentDashboardHandler != nil {
		student := api.Group("/student", jwtMiddleware)
		deps.StudentDashboardHandler.Register(student)
	}
}
