package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// AssignmentSourceManual marks assignments created directly by a teacher.
	AssignmentSourceManual = "manual"
	// AssignmentSourceAutoTest marks assignments fanned out from a published test.
	AssignmentSourceAutoTest = "auto_test"
)

// Assignment binds one test to one class as a due task. One assignment fans
// out to many per-student StudentAssignment rows.
type Assignment struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ClassID       uint              `gorm:"not null;index" json:"class_id"`
	TestID        uint              `gorm:"not null;index" json:"test_id"`
	Title         string            `gorm:"size:255;not null" json:"title"`
	Description   string            `gorm:"type:text" json:"description"`
	DueDate       time.Time         `gorm:"not null" json:"due_date"`
	CloseDate     *time.Time        `json:"close_date"`
	IsPublished   bool              `gorm:"not null" json:"is_published"`
	SourceType    string            `gorm:"size:32;not null;default:manual" json:"source_type"`
	SourceID      *uint             `json:"source_id"`
	Type          TaskType          `gorm:"size:32;not null" json:"type"`
	SourceOptions datatypes.JSONMap `gorm:"type:json" json:"source_options"`
	AutoCreatedAt *time.Time        `json:"auto_created_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsPastDue reports whether the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
