package models

import "time"

// StudentAssignmentStatus tracks a student's progress on an assignment.
type StudentAssignmentStatus string

const (
	StudentAssignmentNotStarted StudentAssignmentStatus = "not_started"
	StudentAssignmentInProgress StudentAssignmentStatus = "in_progress"
	StudentAssignmentSubmitted  StudentAssignmentStatus = "submitted"
	StudentAssignmentCompleted  StudentAssignmentStatus = "completed"
)

// StudentAssignment is one student's instance of an assignment. The unique
// index on (assignment_id, student_id) enforces the exactly-one-per-student
// invariant; insert paths treat a conflict as "already assigned".
type StudentAssignment struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	AssignmentID   uint                    `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID      uint                    `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	TestID         uint                    `gorm:"not null;index" json:"test_id"`
	AssignmentType TaskType                `gorm:"size:32;not null" json:"assignment_type"`
	Status         StudentAssignmentStatus `gorm:"size:32;not null;default:not_started" json:"status"`
	AttemptNumber  int                     `gorm:"not null;default:1" json:"attempt_number"`
	AttemptCount   int                     `gorm:"not null;default:0" json:"attempt_count"`
	Score          *float64                `json:"score"`
	StartedAt      *time.Time              `json:"started_at"`
	CompletedAt    *time.Time              `json:"completed_at"`
	TimeSpent      int                     `gorm:"not null;default:0" json:"time_spent"`
	AssignedAt     time.Time               `json:"assigned_at"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Assignment     Assignment              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student        User                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
