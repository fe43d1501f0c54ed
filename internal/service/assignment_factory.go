package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

// ErrTestNotAssignable indicates a test that is unpublished or not bound to
// a class and therefore cannot be auto-assigned.
var ErrTestNotAssignable = errors.New("test is not eligible for auto assignment")

// CreationError wraps a persistence failure during fan-out writes.
type CreationError struct {
	Op  string
	Err error
}

func (e *CreationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *CreationError) Unwrap() error { return e.Err }

const defaultDuePeriod = 7 * 24 * time.Hour

// AssignmentFactory builds assignments from tests and fans them out to the
// active class roster. It performs no transaction management of its own;
// callers run it inside one via WithTx.
type AssignmentFactory interface {
	CreateFromTest(ctx context.Context, test models.Test, options events.AssignmentOptions) (models.Assignment, error)
	CreateStudentAssignments(ctx context.Context, assignment models.Assignment) (int, error)
	WithTx(tx *gorm.DB) AssignmentFactory
}

type assignmentFactory struct {
	assignments repository.AssignmentRepository
	students    repository.StudentAssignmentRepository
	enrollments repository.EnrollmentRepository
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	duePeriod   time.Duration
	now         func() time.Time
}

// NewAssignmentFactory builds an assignment factory over the given
// repositories. A non-positive duePeriod falls back to one week.
func NewAssignmentFactory(
	assignments repository.AssignmentRepository,
	students repository.StudentAssignmentRepository,
	enrollments repository.EnrollmentRepository,
	duePeriod time.Duration,
	logger zerolog.Logger,
) AssignmentFactory {
	if duePeriod <= 0 {
		duePeriod = defaultDuePeriod
	}

	return &assignmentFactory{
		assignments: assignments,
		students:    students,
		enrollments: enrollments,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assignment_factory").Logger(),
		duePeriod:   duePeriod,
		now:         time.Now,
	}
}

func (f *assignmentFactory) WithTx(tx *gorm.DB) AssignmentFactory {
	clone := *f
	clone.assignments = f.assignments.WithTx(tx)
	clone.students = f.students.WithTx(tx)
	clone.enrollments = f.enrollments.WithTx(tx)
	return &clone
}

// CreateFromTest persists one assignment built from the test and the
// caller-supplied options. The test must be published and class-bound.
func (f *assignmentFactory) CreateFromTest(ctx context.Context, test models.Test, options events.AssignmentOptions) (models.Assignment, error) {
	if !test.CanBeAutoAssigned() {
		return models.Assignment{}, fmt.Errorf("test %d: %w", test.ID, ErrTestNotAssignable)
	}

	now := f.now().UTC()

	dueDate := now.Add(f.duePeriod)
	if options.DueDate != nil {
		dueDate = options.DueDate.UTC()
	}

	title := strings.TrimSpace(f.sanitizer.Sanitize(options.Title))
	if title == "" {
		title = fmt.Sprintf("%s Assignment", test.Title)
	}

	description := strings.TrimSpace(f.sanitizer.Sanitize(options.Description))
	if description == "" {
		description = test.Description
	}

	isPublished := true
	if options.IsPublished != nil {
		isPublished = *options.IsPublished
	}

	testID := test.ID
	assignment := models.Assignment{
		ClassID:       *test.ClassID,
		TestID:        test.ID,
		Title:         title,
		Description:   description,
		DueDate:       dueDate,
		IsPublished:   isPublished,
		SourceType:    models.AssignmentSourceAutoTest,
		SourceID:      &testID,
		Type:          models.TaskTypeForTest(test.Type),
		SourceOptions: optionsSnapshot(options),
		AutoCreatedAt: &now,
	}

	if err := f.assignments.Create(ctx, &assignment); err != nil {
		f.logger.Error().Err(err).
			Uint("test_id", test.ID).
			Str("test_type", string(test.Type)).
			Uint("class_id", *test.ClassID).
			Msg("failed to create assignment from test")
		return models.Assignment{}, &CreationError{Op: "create assignment", Err: err}
	}

	return assignment, nil
}

// CreateStudentAssignments bulk-inserts one row per actively enrolled student
// and returns the number of rows created. A class with no active students is
// not an error.
func (f *assignmentFactory) CreateStudentAssignments(ctx context.Context, assignment models.Assignment) (int, error) {
	studentIDs, err := f.enrollments.ActiveStudentIDs(ctx, assignment.ClassID)
	if err != nil {
		f.logger.Error().Err(err).
			Uint("assignment_id", assignment.ID).
			Uint("class_id", assignment.ClassID).
			Msg("failed to load class roster")
		return 0, &CreationError{Op: "load class roster", Err: err}
	}

	if len(studentIDs) == 0 {
		f.logger.Info().
			Uint("assignment_id", assignment.ID).
			Uint("class_id", assignment.ClassID).
			Msg("class has no active students, nothing to fan out")
		return 0, nil
	}

	now := f.now().UTC()
	records := make([]models.StudentAssignment, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		records = append(records, models.StudentAssignment{
			AssignmentID:   assignment.ID,
			StudentID:      studentID,
			TestID:         assignment.TestID,
			AssignmentType: assignment.Type,
			Status:         models.StudentAssignmentNotStarted,
			AttemptNumber:  1,
			AttemptCount:   0,
			AssignedAt:     now,
		})
	}

	created, err := f.students.BulkCreate(ctx, records)
	if err != nil {
		f.logger.Error().Err(err).
			Uint("assignment_id", assignment.ID).
			Uint("class_id", assignment.ClassID).
			Int("batch_size", len(records)).
			Msg("failed to bulk create student assignments")
		return 0, &CreationError{Op: "create student assignments", Err: err}
	}

	return int(created), nil
}

func optionsSnapshot(options events.AssignmentOptions) datatypes.JSONMap {
	snapshot := datatypes.JSONMap{}
	if options.Title != "" {
		snapshot["title"] = options.Title
	}
	if options.Description != "" {
		snapshot["description"] = options.Description
	}
	if options.DueDate != nil {
		snapshot["due_date"] = options.DueDate.UTC().Format(time.RFC3339)
	}
	if options.IsPublished != nil {
		snapshot["is_published"] = *options.IsPublished
	}
	return snapshot
}
