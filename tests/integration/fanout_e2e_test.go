package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/config"
	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/handler"
	"github.com/noah-isme/lingua-go-api/internal/middleware"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/internal/router"
	"github.com/noah-isme/lingua-go-api/internal/service"
)

type stubAuth struct {
	userID uint
	role   string
}

func setupFanoutApp(t *testing.T) (*fiber.App, *gorm.DB, *stubAuth) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassEnrollment{},
		&models.Test{},
		&models.Assignment{},
		&models.StudentAssignment{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	testRepo := repository.NewTestRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentAssignmentRepo := repository.NewStudentAssignmentRepository(db)

	factory := service.NewAssignmentFactory(assignmentRepo, studentAssignmentRepo, enrollmentRepo, 0, logger)
	fanout := service.NewFanoutService(db, factory, testRepo, assignmentRepo, studentAssignmentRepo, logger)
	dispatcher := events.NewInlineDispatcher(fanout, logger)

	classService := service.NewClassService(classRepo, enrollmentRepo, dispatcher, validate, logger)
	testService := service.NewTestService(testRepo, classRepo, dispatcher, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, studentAssignmentRepo, logger)

	classHandler := handler.NewClassHandler(classService, validate, logger)
	testHandler := handler.NewTestHandler(testService, validate, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, validate, logger)

	auth := &stubAuth{userID: 1, role: "teacher"}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ClassHandler:      classHandler,
		TestHandler:       testHandler,
		AssignmentHandler: assignmentHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", auth.userID)
			c.Locals("user_role", auth.role)
			return c.Next()
		},
	})

	return app, db, auth
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestFanoutEndToEndFlow(t *testing.T) {
	app, db, auth := setupFanoutApp(t)

	// Step 1: teacher creates a class and enrolls two students.
	res := doJSON(t, app, http.MethodPost, "/api/v1/classes", map[string]interface{}{"name": "Morning Cohort"})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var classResp struct {
		Success bool              `json:"success"`
		Data    dto.ClassResponse `json:"data"`
	}
	decode(t, res, &classResp)
	require.True(t, classResp.Success)
	require.Len(t, classResp.Data.ClassCode, 8)
	classID := classResp.Data.ID

	for _, studentID := range []uint{21, 22} {
		res = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/classes/%d/enrollments", classID), map[string]interface{}{"student_id": studentID})
		require.Equal(t, fiber.StatusCreated, res.StatusCode)
	}

	// Step 2: teacher authors a test, binds it to the class, then publishes.
	res = doJSON(t, app, http.MethodPost, "/api/v1/tests", map[string]interface{}{
		"title":       "Unit 5 Reading",
		"description": "Comprehension passages",
		"type":        "reading",
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var testResp struct {
		Success bool             `json:"success"`
		Data    dto.TestResponse `json:"data"`
	}
	decode(t, res, &testResp)
	testID := testResp.Data.ID

	res = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/tests/%d/assign", testID), map[string]interface{}{"class_id": classID})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	// Binding an unpublished test must not create assignments yet.
	var assignmentCount int64
	require.NoError(t, db.Model(&models.Assignment{}).Count(&assignmentCount).Error)
	require.Zero(t, assignmentCount)

	res = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/tests/%d/publish", testID), nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	// Step 3: publication fanned one assignment out to both enrolled students.
	res = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/assignments?class_id=%d", classID), nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var listResp struct {
		Success bool                     `json:"success"`
		Data    []dto.AssignmentResponse `json:"data"`
	}
	decode(t, res, &listResp)
	require.Len(t, listResp.Data, 1)
	assignment := listResp.Data[0]
	require.Equal(t, "reading_task", assignment.Type)
	require.Equal(t, "auto_test", assignment.SourceType)

	res = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d", assignment.ID), nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var detailResp struct {
		Success bool                         `json:"success"`
		Data    dto.AssignmentDetailResponse `json:"data"`
	}
	decode(t, res, &detailResp)
	require.EqualValues(t, 2, detailResp.Data.StudentsAssigned)

	// Step 4: a late student joins by code and receives the open assignment.
	auth.userID = 23
	auth.role = "student"

	res = doJSON(t, app, http.MethodPost, "/api/v1/student/classes/join", map[string]interface{}{"code": classResp.Data.ClassCode})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	res = doJSON(t, app, http.MethodGet, "/api/v1/student/assignments", nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var studentList struct {
		Success bool                            `json:"success"`
		Data    []dto.StudentAssignmentResponse `json:"data"`
	}
	decode(t, res, &studentList)
	require.Len(t, studentList.Data, 1)
	require.Equal(t, "not_started", studentList.Data[0].Status)

	// Step 5: the student starts an attempt.
	res = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/student/assignments/%d/attempt", studentList.Data[0].ID), nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var attemptResp struct {
		Success bool                          `json:"success"`
		Data    dto.StudentAssignmentResponse `json:"data"`
	}
	decode(t, res, &attemptResp)
	require.Equal(t, "in_progress", attemptResp.Data.Status)
	require.Equal(t, 1, attemptResp.Data.AttemptCount)

	// A second start on the same attempt is rejected.
	res = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/student/assignments/%d/attempt", studentList.Data[0].ID), nil)
	require.Equal(t, fiber.StatusConflict, res.StatusCode)

	// Replaying the enrollment does not duplicate rows.
	require.NoError(t, replayEnrollment(db, classID))
	var rows int64
	require.NoError(t, db.Model(&models.StudentAssignment{}).Count(&rows).Error)
	require.EqualValues(t, 3, rows)
}

// replayEnrollment re-delivers an enrollment event straight through the
// fan-out listener, simulating an at-least-once redelivery.
func replayEnrollment(db *gorm.DB, classID uint) error {
	logger := zerolog.New(io.Discard)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentAssignmentRepo := repository.NewStudentAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	testRepo := repository.NewTestRepository(db)

	factory := service.NewAssignmentFactory(assignmentRepo, studentAssignmentRepo, enrollmentRepo, 0, logger)
	fanout := service.NewFanoutService(db, factory, testRepo, assignmentRepo, studentAssignmentRepo, logger)

	return fanout.HandleStudentEnrolled(context.Background(), events.NewStudentEnrolled(23, classID))
}
