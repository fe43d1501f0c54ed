package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

var (
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassInactive indicates the class no longer accepts enrollments.
	ErrClassInactive = errors.New("class is inactive")
)

// ClassService exposes class and enrollment use cases.
type ClassService interface {
	Create(ctx context.Context, payload dto.ClassCreateRequest, teacherID uint) (dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error)
	Deactivate(ctx context.Context, id uint) error
	Enroll(ctx context.Context, classID, studentID uint) (dto.EnrollmentResponse, error)
	JoinByCode(ctx context.Context, code string, studentID uint) (dto.EnrollmentResponse, error)
}

type classService struct {
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewClassService builds a new class service.
func NewClassService(
	classes repository.ClassRepository,
	enrollments repository.EnrollmentRepository,
	dispatcher events.Dispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ClassService {
	return &classService{
		classes:     classes,
		enrollments: enrollments,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "class_service").Logger(),
		now:         time.Now,
	}
}

func (s *classService) Create(ctx context.Context, payload dto.ClassCreateRequest, teacherID uint) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		TeacherID: teacherID,
		Name:      strings.TrimSpace(payload.Name),
		ClassCode: newClassCode(),
		Active:    true,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) ListByTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Deactivate(ctx context.Context, id uint) error {
	if err := s.classes.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	s.logger.Info().Uint("class_id", id).Msg("class deactivated")
	return nil
}

// Enroll makes the student an active member of the class and dispatches the
// enrollment fan-out event. An already-active membership is returned as-is
// without dispatching again.
func (s *classService) Enroll(ctx context.Context, classID, studentID uint) (dto.EnrollmentResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrClassNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if !class.Active {
		return dto.EnrollmentResponse{}, ErrClassInactive
	}

	existing, err := s.enrollments.GetByClassAndStudent(ctx, classID, studentID)
	switch {
	case err == nil:
		if existing.IsActive() {
			return dto.NewEnrollmentResponse(existing), nil
		}
		if err := s.enrollments.UpdateStatus(ctx, existing.ID, models.EnrollmentStatusActive); err != nil {
			return dto.EnrollmentResponse{}, err
		}
		existing.Status = models.EnrollmentStatusActive
		return s.dispatchEnrolled(ctx, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.ClassEnrollment{
		ClassID:    classID,
		StudentID:  studentID,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	return s.dispatchEnrolled(ctx, enrollment)
}

func (s *classService) JoinByCode(ctx context.Context, code string, studentID uint) (dto.EnrollmentResponse, error) {
	payload := dto.JoinClassRequest{Code: strings.TrimSpace(code)}
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	class, err := s.classes.GetByCode(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrClassNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	return s.Enroll(ctx, class.ID, studentID)
}

func (s *classService) dispatchEnrolled(ctx context.Context, enrollment models.ClassEnrollment) (dto.EnrollmentResponse, error) {
	event := events.NewStudentEnrolled(enrollment.StudentID, enrollment.ClassID)
	if err := s.dispatcher.DispatchStudentEnrolled(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("event_id", event.EventID).
			Uint("class_id", enrollment.ClassID).
			Uint("student_id", enrollment.StudentID).
			Msg("failed to dispatch enrollment fan-out")
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("class_id", enrollment.ClassID).
		Uint("student_id", enrollment.StudentID).
		Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func newClassCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
