package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

var (
	// ErrTestNotFound indicates the requested test does not exist.
	ErrTestNotFound = errors.New("test not found")
	// ErrInvalidDueDate indicates an unparseable due date option.
	ErrInvalidDueDate = errors.New("invalid due date")
)

// TestService exposes test authoring and assignment use cases.
type TestService interface {
	Create(ctx context.Context, payload dto.TestCreateRequest, creatorID uint) (dto.TestResponse, error)
	Get(ctx context.Context, id uint) (dto.TestResponse, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]dto.TestResponse, error)
	Publish(ctx context.Context, id uint) (dto.TestResponse, error)
	AssignToClass(ctx context.Context, testID uint, payload dto.TestAssignRequest) (dto.TestResponse, error)
}

type testService struct {
	tests      repository.TestRepository
	classes    repository.ClassRepository
	dispatcher events.Dispatcher
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewTestService builds a new test service.
func NewTestService(
	tests repository.TestRepository,
	classes repository.ClassRepository,
	dispatcher events.Dispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) TestService {
	return &testService{
		tests:      tests,
		classes:    classes,
		dispatcher: dispatcher,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "test_service").Logger(),
	}
}

func (s *testService) Create(ctx context.Context, payload dto.TestCreateRequest, creatorID uint) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	test := models.Test{
		CreatorID:   creatorID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Type:        models.TestType(payload.Type),
	}

	if err := s.tests.Create(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	s.logger.Info().Uint("test_id", test.ID).Str("type", payload.Type).Msg("test created")

	return dto.NewTestResponse(test), nil
}

func (s *testService) Get(ctx context.Context, id uint) (dto.TestResponse, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	return dto.NewTestResponse(test), nil
}

func (s *testService) ListByCreator(ctx context.Context, creatorID uint) ([]dto.TestResponse, error) {
	tests, err := s.tests.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	return dto.NewTestResponseSlice(tests), nil
}

// Publish marks the test as published. Publishing a test already bound to a
// class triggers the assignment fan-out.
func (s *testService) Publish(ctx context.Context, id uint) (dto.TestResponse, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	if test.IsPublished {
		return dto.NewTestResponse(test), nil
	}

	test.IsPublished = true
	if err := s.tests.Update(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	if test.ClassID != nil {
		if err := s.dispatchAssigned(ctx, test, events.AssignmentOptions{}); err != nil {
			return dto.TestResponse{}, err
		}
	}

	s.logger.Info().Uint("test_id", test.ID).Msg("test published")

	return dto.NewTestResponse(test), nil
}

// AssignToClass binds the test to the class. When the test is already
// published this dispatches the fan-out with the supplied options; an
// unpublished test is only bound and fans out later at publish time.
func (s *testService) AssignToClass(ctx context.Context, testID uint, payload dto.TestAssignRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	options, err := assignmentOptionsFromRequest(payload)
	if err != nil {
		return dto.TestResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrClassNotFound
		}
		return dto.TestResponse{}, err
	}
	if !class.Active {
		return dto.TestResponse{}, ErrClassInactive
	}

	test.ClassID = &class.ID
	if err := s.tests.Update(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	if test.IsPublished {
		if err := s.dispatchAssigned(ctx, test, options); err != nil {
			return dto.TestResponse{}, err
		}
	}

	s.logger.Info().Uint("test_id", test.ID).Uint("class_id", class.ID).Msg("test assigned to class")

	return dto.NewTestResponse(test), nil
}

func (s *testService) dispatchAssigned(ctx context.Context, test models.Test, options events.AssignmentOptions) error {
	event := events.NewTestAssigned(test.ID, *test.ClassID, options)
	if err := s.dispatcher.DispatchTestAssigned(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("event_id", event.EventID).
			Uint("test_id", test.ID).
			Uint("class_id", *test.ClassID).
			Msg("failed to dispatch assignment fan-out")
		return err
	}

	return nil
}

func assignmentOptionsFromRequest(payload dto.TestAssignRequest) (events.AssignmentOptions, error) {
	options := events.AssignmentOptions{
		Title:       payload.Title,
		Description: payload.Description,
		IsPublished: payload.IsPublished,
	}

	if payload.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
		if err != nil {
			return events.AssignmentOptions{}, ErrInvalidDueDate
		}
		options.DueDate = &dueDate
	}

	return options, nil
}
