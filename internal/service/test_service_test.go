package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

func newTestService(db *gorm.DB, dispatcher *recordingDispatcher) TestService {
	return NewTestService(
		repository.NewTestRepository(db),
		repository.NewClassRepository(db),
		dispatcher,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)
}

func seedActiveClass(t *testing.T, db *gorm.DB) models.Class {
	t.Helper()
	class := models.Class{TeacherID: 1, Name: "Exam Prep", ClassCode: "EXAM1234", Active: true}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func TestTestServiceCreateValidatesType(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestService(db, &recordingDispatcher{})

	created, err := svc.Create(context.Background(), dto.TestCreateRequest{Title: "Mock Exam", Type: "speaking"}, 3)
	require.NoError(t, err)
	require.Equal(t, "speaking", created.Type)
	require.False(t, created.IsPublished)

	_, err = svc.Create(context.Background(), dto.TestCreateRequest{Title: "Mock Exam", Type: "coding"}, 3)
	require.Error(t, err)
}

func TestTestServicePublishUnboundDoesNotDispatch(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)

	created, err := svc.Create(context.Background(), dto.TestCreateRequest{Title: "Mock Exam", Type: "reading"}, 3)
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, published.IsPublished)
	require.Empty(t, dispatcher.assigned)
}

func TestTestServicePublishBoundTestDispatchesFanout(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)
	class := seedActiveClass(t, db)

	test := models.Test{CreatorID: 3, Title: "Mock Exam", Type: models.TestTypeReading, ClassID: &class.ID}
	require.NoError(t, db.Create(&test).Error)

	_, err := svc.Publish(context.Background(), test.ID)
	require.NoError(t, err)
	require.Len(t, dispatcher.assigned, 1)
	require.Equal(t, test.ID, dispatcher.assigned[0].TestID)
	require.Equal(t, class.ID, dispatcher.assigned[0].ClassID)

	// Publishing again is a no-op; no second fan-out.
	_, err = svc.Publish(context.Background(), test.ID)
	require.NoError(t, err)
	require.Len(t, dispatcher.assigned, 1)
}

func TestTestServiceAssignPublishedTestDispatchesWithOptions(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)
	class := seedActiveClass(t, db)

	test := models.Test{CreatorID: 3, Title: "Mock Exam", Type: models.TestTypeWriting, IsPublished: true}
	require.NoError(t, db.Create(&test).Error)

	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.AssignToClass(context.Background(), test.ID, dto.TestAssignRequest{
		ClassID: class.ID,
		Title:   "Week 1 Writing",
		DueDate: due.Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.NotNil(t, result.ClassID)
	require.Equal(t, class.ID, *result.ClassID)

	require.Len(t, dispatcher.assigned, 1)
	event := dispatcher.assigned[0]
	require.Equal(t, "Week 1 Writing", event.Options.Title)
	require.NotNil(t, event.Options.DueDate)
	require.True(t, event.Options.DueDate.Equal(due))
}

func TestTestServiceAssignUnpublishedTestOnlyBinds(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)
	class := seedActiveClass(t, db)

	test := models.Test{CreatorID: 3, Title: "Draft", Type: models.TestTypeListening}
	require.NoError(t, db.Create(&test).Error)

	result, err := svc.AssignToClass(context.Background(), test.ID, dto.TestAssignRequest{ClassID: class.ID})
	require.NoError(t, err)
	require.NotNil(t, result.ClassID)
	require.Empty(t, dispatcher.assigned)
}

func TestTestServiceAssignRejectsInvalidDueDate(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)
	class := seedActiveClass(t, db)

	test := models.Test{CreatorID: 3, Title: "Mock Exam", Type: models.TestTypeReading, IsPublished: true}
	require.NoError(t, db.Create(&test).Error)

	_, err := svc.AssignToClass(context.Background(), test.ID, dto.TestAssignRequest{ClassID: class.ID, DueDate: "next friday"})
	require.ErrorIs(t, err, ErrInvalidDueDate)
	require.Empty(t, dispatcher.assigned)
}

func TestTestServiceAssignRejectsInactiveClass(t *testing.T) {
	db := setupServiceDB(t)
	dispatcher := &recordingDispatcher{}
	svc := newTestService(db, dispatcher)

	class := models.Class{TeacherID: 1, Name: "Closed", ClassCode: "CLOSED12", Active: false}
	require.NoError(t, db.Create(&class).Error)

	test := models.Test{CreatorID: 3, Title: "Mock Exam", Type: models.TestTypeReading, IsPublished: true}
	require.NoError(t, db.Create(&test).Error)

	_, err := svc.AssignToClass(context.Background(), test.ID, dto.TestAssignRequest{ClassID: class.ID})
	require.ErrorIs(t, err, ErrClassInactive)
}
