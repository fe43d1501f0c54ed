package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// EnrollmentRepository defines persistence operations for class memberships.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.ClassEnrollment) error
	GetByClassAndStudent(ctx context.Context, classID, studentID uint) (models.ClassEnrollment, error)
	UpdateStatus(ctx context.Context, id uint, status models.EnrollmentStatus) error
	ActiveStudentIDs(ctx context.Context, classID uint) ([]uint, error)
	WithTx(tx *gorm.DB) EnrollmentRepository
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) WithTx(tx *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: tx}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.ClassEnrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) GetByClassAndStudent(ctx context.Context, classID, studentID uint) (models.ClassEnrollment, error) {
	var enrollment models.ClassEnrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		First(&enrollment).Error
	if err != nil {
		return models.ClassEnrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id uint, status models.EnrollmentStatus) error {
	result := r.db.WithContext(ctx).Model(&models.ClassEnrollment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ActiveStudentIDs projects the student ids of all active enrollments in a
// class. This is the roster snapshot the fan-out inserts against, so callers
// running inside a transaction must use the tx-scoped repository.
func (r *enrollmentRepository) ActiveStudentIDs(ctx context.Context, classID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ClassEnrollment{}).
		Where("class_id = ? AND status = ?", classID, models.EnrollmentStatusActive).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
