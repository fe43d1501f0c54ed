package models

import "time"

// Class is a teacher-owned group of students that tests can be assigned to.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID uint      `gorm:"not null;index;uniqueIndex:idx_teacher_class_name" json:"teacher_id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_teacher_class_name" json:"name"`
	ClassCode string    `gorm:"size:16;uniqueIndex;not null" json:"class_code"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrollmentStatus tracks the lifecycle of a class membership.
type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "active"
	EnrollmentStatusInactive EnrollmentStatus = "inactive"
	EnrollmentStatusPending  EnrollmentStatus = "pending"
)

// ClassEnrollment is the membership of one student in one class. Only active
// enrollments take part in assignment fan-out.
type ClassEnrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	ClassID    uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"class_id"`
	StudentID  uint             `gorm:"not null;uniqueIndex:idx_class_student" json:"student_id"`
	Status     EnrollmentStatus `gorm:"size:32;not null;default:pending" json:"status"`
	EnrolledAt time.Time        `json:"enrolled_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Class      Class            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student    User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the enrollment is eligible for fan-out.
func (e ClassEnrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}
