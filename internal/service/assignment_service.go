package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrStudentAssignmentNotFound indicates the per-student row does not exist
	// or belongs to another student.
	ErrStudentAssignmentNotFound = errors.New("student assignment not found")
	// ErrAttemptAlreadyStarted indicates the student assignment has left the
	// not_started state.
	ErrAttemptAlreadyStarted = errors.New("attempt already started")
)

// AssignmentService exposes assignment read/delete and student progress use cases.
type AssignmentService interface {
	ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentDetailResponse, error)
	Delete(ctx context.Context, id uint) error
	ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentAssignmentResponse, error)
	StartAttempt(ctx context.Context, id, studentID uint) (dto.StudentAssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentAssignmentRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	students repository.StudentAssignmentRepository,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		students:    students,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentDetailResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentDetailResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentDetailResponse{}, err
	}

	count, err := s.students.CountByAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentDetailResponse{}, err
	}

	return dto.AssignmentDetailResponse{
		AssignmentResponse: dto.NewAssignmentResponse(assignment),
		StudentsAssigned:   count,
	}, nil
}

// Delete removes the assignment and all of its student rows.
func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.assignments.DeleteWithStudentAssignments(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentAssignmentResponse, error) {
	records, err := s.students.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentAssignmentResponseSlice(records), nil
}

// StartAttempt transitions the student's row from not_started to in_progress.
func (s *assignmentService) StartAttempt(ctx context.Context, id, studentID uint) (dto.StudentAssignmentResponse, error) {
	record, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentResponse{}, ErrStudentAssignmentNotFound
		}
		return dto.StudentAssignmentResponse{}, err
	}

	if record.StudentID != studentID {
		return dto.StudentAssignmentResponse{}, ErrStudentAssignmentNotFound
	}

	if record.Status != models.StudentAssignmentNotStarted {
		return dto.StudentAssignmentResponse{}, ErrAttemptAlreadyStarted
	}

	startedAt := s.now().UTC()
	record.Status = models.StudentAssignmentInProgress
	record.StartedAt = &startedAt
	record.AttemptCount++

	if err := s.students.Update(ctx, &record); err != nil {
		return dto.StudentAssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("student_assignment_id", record.ID).
		Uint("student_id", studentID).
		Msg("attempt started")

	return dto.NewStudentAssignmentResponse(record), nil
}
