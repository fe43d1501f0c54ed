package dto

import (
	"time"

	"github.com/noah-isme/lingua-go-api/internal/models"
)

// TestCreateRequest is the payload for authoring a test.
type TestCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Type        string `json:"type" validate:"required,oneof=reading writing listening speaking"`
}

// TestAssignRequest is the payload for assigning a test to a class. All
// option fields are optional overrides for the auto-created assignment.
type TestAssignRequest struct {
	ClassID     uint   `json:"class_id" validate:"required,min=1"`
	Title       string `json:"title" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	DueDate     string `json:"due_date" validate:"omitempty"`
	IsPublished *bool  `json:"is_published"`
}

// TestResponse is the API shape of a test.
type TestResponse struct {
	ID          uint      `json:"id"`
	CreatorID   uint      `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	IsPublished bool      `json:"is_published"`
	ClassID     *uint     `json:"class_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTestResponse maps a test model to its response shape.
func NewTestResponse(test models.Test) TestResponse {
	return TestResponse{
		ID:          test.ID,
		CreatorID:   test.CreatorID,
		Title:       test.Title,
		Description: test.Description,
		Type:        string(test.Type),
		IsPublished: test.IsPublished,
		ClassID:     test.ClassID,
		CreatedAt:   test.CreatedAt,
	}
}

// NewTestResponseSlice maps a slice of test models.
func NewTestResponseSlice(tests []models.Test) []TestResponse {
	responses := make([]TestResponse, 0, len(tests))
	for _, test := range tests {
		responses = append(responses, NewTestResponse(test))
	}
	return responses
}
