package dto

import (
	"time"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// AssignmentResponse is the API shape of an assignment.
type AssignmentResponse struct {
	ID            uint       `json:"id"`
	ClassID       uint       `json:"class_id"`
	TestID        uint       `json:"test_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DueDate       time.Time  `json:"due_date"`
	CloseDate     *time.Time `json:"close_date,omitempty"`
	IsPublished   bool       `json:"is_published"`
	SourceType    string     `json:"source_type"`
	Type          string     `json:"type"`
	AutoCreatedAt *time.Time `json:"auto_created_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AssignmentDetailResponse augments an assignment with fan-out counts.
type AssignmentDetailResponse struct {
	AssignmentResponse
	StudentsAssigned int64 `json:"students_assigned"`
}

// StudentAssignmentResponse is the API shape of a per-student assignment row.
type StudentAssignmentResponse struct {
	ID             uint       `json:"id"`
	AssignmentID   uint       `json:"assignment_id"`
	TestID         uint       `json:"test_id"`
	AssignmentType string     `json:"assignment_type"`
	Status         string     `json:"status"`
	AttemptNumber  int        `json:"attempt_number"`
	AttemptCount   int        `json:"attempt_count"`
	Score          *float64   `json:"score,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TimeSpent      int        `json:"time_spent"`
	AssignedAt     time.Time  `json:"assigned_at"`
}

// NewAssignmentResponse maps an assignment model to its response shape.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            assignment.ID,
		ClassID:       assignment.ClassID,
		TestID:        assignment.TestID,
		Title:         assignment.Title,
		Description:   assignment.Description,
		DueDate:       assignment.DueDate,
		CloseDate:     assignment.CloseDate,
		IsPublished:   assignment.IsPublished,
		SourceType:    assignment.SourceType,
		Type:          string(assignment.Type),
		AutoCreatedAt: assignment.AutoCreatedAt,
		CreatedAt:     assignment.CreatedAt,
	}
}

// NewAssignmentResponseSlice maps a slice of assignment models.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}

// NewStudentAssignmentResponse maps a student assignment model to its response shape.
func NewStudentAssignmentResponse(record models.StudentAssignment) StudentAssignmentResponse {
	return StudentAssignmentResponse{
		ID:             record.ID,
		AssignmentID:   record.AssignmentID,
		TestID:         record.TestID,
		AssignmentType: string(record.AssignmentType),
		Status:         string(record.Status),
		AttemptNumber:  record.AttemptNumber,
		AttemptCount:   record.AttemptCount,
		Score:          record.Score,
		StartedAt:      record.StartedAt,
		CompletedAt:    record.CompletedAt,
		TimeSpent:      record.TimeSpent,
		AssignedAt:     record.AssignedAt,
	}
}

// NewStudentAssignmentResponseSlice maps a slice of student assignment models.
func NewStudentAssignmentResponseSlice(records []models.StudentAssignment) []StudentAssignmentResponse {
	responses := make([]StudentAssignmentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewStudentAssignmentResponse(record))
	}
	return responses
}
