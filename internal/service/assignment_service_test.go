package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

func newAssignmentService(db *gorm.DB) AssignmentService {
	return NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewStudentAssignmentRepository(db),
		testLogger(),
	)
}

func seedAssignmentWithStudents(t *testing.T, db *gorm.DB, studentIDs ...uint) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ClassID: 1,
		TestID:  1,
		Title:   "Reading Week 1",
		DueDate: time.Now().Add(24 * time.Hour),
		Type:    models.TaskTypeReading,
	}
	require.NoError(t, db.Create(&assignment).Error)

	for _, id := range studentIDs {
		record := models.StudentAssignment{
			AssignmentID:   assignment.ID,
			StudentID:      id,
			TestID:         assignment.TestID,
			AssignmentType: assignment.Type,
			Status:         models.StudentAssignmentNotStarted,
			AttemptNumber:  1,
			AssignedAt:     time.Now(),
		}
		require.NoError(t, db.Create(&record).Error)
	}

	return assignment
}

func TestAssignmentServiceGetIncludesFanoutCount(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAssignmentService(db)
	assignment := seedAssignmentWithStudents(t, db, 1, 2, 3)

	detail, err := svc.Get(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, assignment.ID, detail.ID)
	require.Equal(t, int64(3), detail.StudentsAssigned)

	_, err = svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentServiceDeleteCascades(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAssignmentService(db)
	assignment := seedAssignmentWithStudents(t, db, 1, 2)
	other := seedAssignmentWithStudents(t, db, 3)

	require.NoError(t, svc.Delete(context.Background(), assignment.ID))

	var assignments int64
	require.NoError(t, db.Model(&models.Assignment{}).Count(&assignments).Error)
	require.Equal(t, int64(1), assignments)

	var orphaned int64
	require.NoError(t, db.Model(&models.StudentAssignment{}).Where("assignment_id = ?", assignment.ID).Count(&orphaned).Error)
	require.Zero(t, orphaned)

	var remaining int64
	require.NoError(t, db.Model(&models.StudentAssignment{}).Where("assignment_id = ?", other.ID).Count(&remaining).Error)
	require.Equal(t, int64(1), remaining)

	require.ErrorIs(t, svc.Delete(context.Background(), assignment.ID), ErrAssignmentNotFound)
}

func TestAssignmentServiceStartAttempt(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAssignmentService(db)
	assignment := seedAssignmentWithStudents(t, db, 10)

	var record models.StudentAssignment
	require.NoError(t, db.Where("assignment_id = ? AND student_id = ?", assignment.ID, 10).First(&record).Error)

	started, err := svc.StartAttempt(context.Background(), record.ID, 10)
	require.NoError(t, err)
	require.Equal(t, string(models.StudentAssignmentInProgress), started.Status)
	require.NotNil(t, started.StartedAt)
	require.Equal(t, 1, started.AttemptCount)

	_, err = svc.StartAttempt(context.Background(), record.ID, 10)
	require.ErrorIs(t, err, ErrAttemptAlreadyStarted)
}

func TestAssignmentServiceStartAttemptOwnershipGuard(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAssignmentService(db)
	assignment := seedAssignmentWithStudents(t, db, 10)

	var record models.StudentAssignment
	require.NoError(t, db.Where("assignment_id = ?", assignment.ID).First(&record).Error)

	_, err := svc.StartAttempt(context.Background(), record.ID, 99)
	require.ErrorIs(t, err, ErrStudentAssignmentNotFound)
}

func TestAssignmentServiceListForStudent(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAssignmentService(db)
	seedAssignmentWithStudents(t, db, 10, 11)

	records, err := svc.ListForStudent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = svc.ListForStudent(context.Background(), 12)
	require.NoError(t, err)
	require.Empty(t, records)
}
