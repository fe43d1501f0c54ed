package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lingua-go-api/internal/config"
	"github.com/noah-isme/lingua-go-api/internal/handler"
	"github.com/noah-isme/lingua-go-api/internal/middleware"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler      *handler.ClassHandler
	TestHandler       *handler.TestHandler
	AssignmentHandler *handler.AssignmentHandler
	JWTMiddleware     fiber.Handler
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

	teacherOnly := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware, teacherOnly)
		deps.ClassHandler.Register(classes)
	}

	if deps.TestHandler != nil {
		tests := api.Group("/tests", jwtMiddleware, teacherOnly)
		deps.TestHandler.Register(tests)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware, teacherOnly)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ClassHandler != nil || deps.AssignmentHandler != nil {
		student := api.Group("/student", jwtMiddleware, studentOnly)
		if deps.ClassHandler != nil {
			student.Post("/classes/join", middleware.RateLimit("join_class", 10, time.Minute), deps.ClassHandler.JoinByCode)
		}
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterStudent(student)
		}
	}
}
