package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// TestRepository defines persistence operations for tests.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (models.Test, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	WithTx(tx *gorm.DB) TestRepository
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository instantiates a GORM-backed test repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) WithTx(tx *gorm.DB) TestRepository {
	return &testRepository{db: tx}
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return models.Test{}, err
	}

	return test, nil
}

func (r *testRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Test, error) {
	var tests []models.Test
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}

	return tests, nil
}

func (r *testRepository) Update(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Save(test).Error
}
