package dto

import (
	"time"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// ClassCreateRequest is the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// JoinClassRequest is the payload for joining a class by its code.
type JoinClassRequest struct {
	Code string `json:"code" validate:"required,min=4,max=16"`
}

// EnrollRequest is the payload for directly enrolling a student.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

// ClassResponse is the API shape of a class.
type ClassResponse struct {
	ID        uint      `json:"id"`
	TeacherID uint      `json:"teacher_id"`
	Name      string    `json:"name"`
	ClassCode string    `json:"class_code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollmentResponse is the API shape of a class membership.
type EnrollmentResponse struct {
	ID         uint      `json:"id"`
	ClassID    uint      `json:"class_id"`
	StudentID  uint      `json:"student_id"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewClassResponse maps a class model to its response shape.
func NewClassResponse(class models.Class) ClassResponse {
	return ClassResponse{
		ID:        class.ID,
		TeacherID: class.TeacherID,
		Name:      class.Name,
		ClassCode: class.ClassCode,
		Active:    class.Active,
		CreatedAt: class.CreatedAt,
	}
}

// NewClassResponseSlice maps a slice of class models.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}

// NewEnrollmentResponse maps an enrollment model to its response shape.
func NewEnrollmentResponse(enrollment models.ClassEnrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         enrollment.ID,
		ClassID:    enrollment.ClassID,
		StudentID:  enrollment.StudentID,
		Status:     string(enrollment.Status),
		EnrolledAt: enrollment.EnrolledAt,
	}
}
