package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// StudentAssignmentRepository defines persistence operations for per-student
// assignment rows.
type StudentAssignmentRepository interface {
	Create(ctx context.Context, record *models.StudentAssignment) (bool, error)
	BulkCreate(ctx context.Context, records []models.StudentAssignment) (int64, error)
	Exists(ctx context.Context, assignmentID, studentID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (models.StudentAssignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAssignment, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	Update(ctx context.Context, record *models.StudentAssignment) error
	WithTx(tx *gorm.DB) StudentAssignmentRepository
}

type studentAssignmentRepository struct {
	db *gorm.DB
}

// NewStudentAssignmentRepository instantiates a GORM-backed repository.
func NewStudentAssignmentRepository(db *gorm.DB) StudentAssignmentRepository {
	return &studentAssignmentRepository{db: db}
}

func (r *studentAssignmentRepository) WithTx(tx *gorm.DB) StudentAssignmentRepository {
	return &studentAssignmentRepository{db: tx}
}

// Create inserts a single row. A conflict on (assignment_id, student_id) is
// ignored and reported as created=false, never as an error.
func (r *studentAssignmentRepository) Create(ctx context.Context, record *models.StudentAssignment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// BulkCreate inserts the whole batch in one statement and returns the number
// of rows actually written. Rows conflicting on (assignment_id, student_id)
// are skipped.
func (r *studentAssignmentRepository) BulkCreate(ctx context.Context, records []models.StudentAssignment) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(&records)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *studentAssignmentRepository) Exists(ctx context.Context, assignmentID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentAssignment{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentAssignmentRepository) GetByID(ctx context.Context, id uint) (models.StudentAssignment, error) {
	var record models.StudentAssignment
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return models.StudentAssignment{}, err
	}

	return record, nil
}

func (r *studentAssignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAssignment, error) {
	var records []models.StudentAssignment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assigned_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *studentAssignmentRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *studentAssignmentRepository) Update(ctx context.Context, record *models.StudentAssignment) error {
	return r.db.WithContext(ctx).Save(record).Error
}
