package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

func TestEnrollmentRepositoryActiveStudentIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)

	enrollments := []models.ClassEnrollment{
		{ClassID: 1, StudentID: 3, Status: models.EnrollmentStatusActive, EnrolledAt: time.Now()},
		{ClassID: 1, StudentID: 1, Status: models.EnrollmentStatusActive, EnrolledAt: time.Now()},
		{ClassID: 1, StudentID: 2, Status: models.EnrollmentStatusInactive, EnrolledAt: time.Now()},
		{ClassID: 1, StudentID: 4, Status: models.EnrollmentStatusPending, EnrolledAt: time.Now()},
		{ClassID: 2, StudentID: 5, Status: models.EnrollmentStatusActive, EnrolledAt: time.Now()},
	}
	for i := range enrollments {
		require.NoError(t, repo.Create(context.Background(), &enrollments[i]))
	}

	ids, err := repo.ActiveStudentIDs(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 3}, ids)

	ids, err = repo.ActiveStudentIDs(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)

	enrollment := models.ClassEnrollment{ClassID: 1, StudentID: 7, Status: models.EnrollmentStatusPending, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &enrollment))

	require.NoError(t, repo.UpdateStatus(context.Background(), enrollment.ID, models.EnrollmentStatusActive))

	stored, err := repo.GetByClassAndStudent(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, stored.Status)

	err = repo.UpdateStatus(context.Background(), 999, models.EnrollmentStatusActive)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnrollmentRepositoryRejectsDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)

	first := models.ClassEnrollment{ClassID: 1, StudentID: 8, Status: models.EnrollmentStatusActive, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &first))

	duplicate := models.ClassEnrollment{ClassID: 1, StudentID: 8, Status: models.EnrollmentStatusPending, EnrolledAt: time.Now()}
	require.Error(t, repo.Create(context.Background(), &duplicate))
}
