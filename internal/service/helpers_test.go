package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupServiceDB(t *testing.T) *gorm.DB {
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
	return db
}

// recordingDispatcher captures dispatched events for assertions.
type recordingDispatcher struct {
	assigned []events.TestAssignedToClass
	enrolled []events.StudentEnrolledInClass
	err      error
}

func (d *recordingDispatcher) DispatchTestAssigned(_ context.Context, event events.TestAssignedToClass) error {
	if d.err != nil {
		return d.err
	}
	d.assigned = append(d.assigned, event)
	return nil
}

func (d *recordingDispatcher) DispatchStudentEnrolled(_ context.Context, event events.StudentEnrolledInClass) error {
	if d.err != nil {
		return d.err
	}
	d.enrolled = append(d.enrolled, event)
	return nil
}
