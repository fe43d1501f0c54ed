package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

// FanoutService reacts to assignment fan-out events. Each handler runs inside
// one database transaction: either every intended row is created or none is,
// and failures propagate to the caller so the queue layer can retry.
type FanoutService struct {
	db          *gorm.DB
	factory     AssignmentFactory
	tests       repository.TestRepository
	assignments repository.AssignmentRepository
	students    repository.StudentAssignmentRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewFanoutService constructs the fan-out event handler.
func NewFanoutService(
	db *gorm.DB,
	factory AssignmentFactory,
	tests repository.TestRepository,
	assignments repository.AssignmentRepository,
	students repository.StudentAssignmentRepository,
	logger zerolog.Logger,
) *FanoutService {
	return &FanoutService{
		db:          db,
		factory:     factory,
		tests:       tests,
		assignments: assignments,
		students:    students,
		logger:      logger.With().Str("component", "fanout_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/fanout"),
		now:         time.Now,
	}
}

// HandleTestAssigned creates the assignment for the test and fans it out to
// every actively enrolled student, all in one transaction.
func (s *FanoutService) HandleTestAssigned(ctx context.Context, event events.TestAssignedToClass) error {
	spanCtx, span := s.tracer.Start(ctx, "fanout.test_assigned", trace.WithAttributes(
		attribute.String("event.id", event.EventID),
		attribute.Int64("test.id", int64(event.TestID)),
		attribute.Int64("class.id", int64(event.ClassID)),
	))
	defer span.End()

	start := s.now()
	var assignmentID uint
	var created int

	err := s.db.WithContext(spanCtx).Transaction(func(tx *gorm.DB) error {
		test, err := s.tests.WithTx(tx).GetByID(spanCtx, event.TestID)
		if err != nil {
			return err
		}

		factory := s.factory.WithTx(tx)

		assignment, err := factory.CreateFromTest(spanCtx, test, event.Options)
		if err != nil {
			return err
		}

		count, err := factory.CreateStudentAssignments(spanCtx, assignment)
		if err != nil {
			return err
		}

		assignmentID = assignment.ID
		created = count
		return nil
	})

	observability.FanoutDuration().WithLabelValues("test_assigned").Observe(s.now().Sub(start).Seconds())

	if err != nil {
		// An ineligible test stays ineligible on redelivery; mark the
		// failure terminal so the queue layer drops it instead of retrying.
		if errors.Is(err, ErrTestNotAssignable) {
			err = fmt.Errorf("%w: %w", events.ErrUnprocessable, err)
		}

		span.RecordError(err)
		observability.FanoutEvents().WithLabelValues("test_assigned", "failure").Inc()
		s.logger.Error().Err(err).
			Str("event_id", event.EventID).
			Uint("test_id", event.TestID).
			Uint("class_id", event.ClassID).
			Msg("test assignment fan-out failed, rolled back")
		return err
	}

	observability.FanoutEvents().WithLabelValues("test_assigned", "success").Inc()
	observability.StudentAssignmentsCreated().Add(float64(created))
	s.logger.Info().
		Str("event_id", event.EventID).
		Uint("test_id", event.TestID).
		Uint("class_id", event.ClassID).
		Uint("assignment_id", assignmentID).
		Int("students_assigned", created).
		Msg("test assignment fan-out completed")

	return nil
}

// HandleStudentEnrolled fans one student into every published assignment of
// the class, skipping pairs that already exist. Safe to run more than once
// for the same event.
func (s *FanoutService) HandleStudentEnrolled(ctx context.Context, event events.StudentEnrolledInClass) error {
	spanCtx, span := s.tracer.Start(ctx, "fanout.student_enrolled", trace.WithAttributes(
		attribute.String("event.id", event.EventID),
		attribute.Int64("student.id", int64(event.StudentID)),
		attribute.Int64("class.id", int64(event.ClassID)),
	))
	defer span.End()

	start := s.now()
	var created int

	err := s.db.WithContext(spanCtx).Transaction(func(tx *gorm.DB) error {
		assignments, err := s.assignments.WithTx(tx).ListPublishedByClass(spanCtx, event.ClassID)
		if err != nil {
			return err
		}

		students := s.students.WithTx(tx)
		now := s.now().UTC()

		for _, assignment := range assignments {
			exists, err := students.Exists(spanCtx, assignment.ID, event.StudentID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			record := models.StudentAssignment{
				AssignmentID:   assignment.ID,
				StudentID:      event.StudentID,
				TestID:         assignment.TestID,
				AssignmentType: assignment.Type,
				Status:         models.StudentAssignmentNotStarted,
				AttemptNumber:  1,
				AttemptCount:   0,
				AssignedAt:     now,
			}

			inserted, err := students.Create(spanCtx, &record)
			if err != nil {
				return err
			}
			if inserted {
				created++
			}
		}

		return nil
	})

	observability.FanoutDuration().WithLabelValues("student_enrolled").Observe(s.now().Sub(start).Seconds())

	if err != nil {
		span.RecordError(err)
		observability.FanoutEvents().WithLabelValues("student_enrolled", "failure").Inc()
		s.logger.Error().Err(err).
			Str("event_id", event.EventID).
			Uint("student_id", event.StudentID).
			Uint("class_id", event.ClassID).
			Msg("enrollment fan-out failed, rolled back")
		return err
	}

	observability.FanoutEvents().WithLabelValues("student_enrolled", "success").Inc()
	observability.StudentAssignmentsCreated().Add(float64(created))
	s.logger.Info().
		Str("event_id", event.EventID).
		Uint("student_id", event.StudentID).
		Uint("class_id", event.ClassID).
		Int("assignments_created", created).
		Msg("enrollment fan-out completed")

	return nil
}
