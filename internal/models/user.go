package models

import "time"

const (
	// RoleAdmin grants full platform access.
	RoleAdmin = "admin"
	// RoleTeacher can author tests and manage classes.
	RoleTeacher = "teacher"
	// RoleStudent can enroll in classes and work on assignments.
	RoleStudent = "student"
)

// User represents a platform account in any of the three roles.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
