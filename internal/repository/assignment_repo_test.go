package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

func TestAssignmentRepositoryPersistsUnpublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	assignment := models.Assignment{
		ClassID:     1,
		TestID:      1,
		Title:       "Draft Writing Assignment",
		DueDate:     time.Now().Add(24 * time.Hour),
		IsPublished: false,
		Type:        models.TaskTypeWriting,
	}
	require.NoError(t, repo.Create(context.Background(), &assignment))

	reloaded, err := repo.GetByID(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsPublished, "unpublished assignment must stay unpublished after a round trip")

	published, err := repo.ListPublishedByClass(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, published)
}

func TestClassRepositoryPersistsInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	class := models.Class{
		TeacherID: 1,
		Name:      "Archived Cohort",
		ClassCode: "ARCHIVED",
		Active:    false,
	}
	require.NoError(t, repo.Create(context.Background(), &class))

	reloaded, err := repo.GetByID(context.Background(), class.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Active, "inactive class must stay inactive after a round trip")
}
