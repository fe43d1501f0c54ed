package events

import (
	"time"

	"github.com/google/uuid"
)

// Subjects and stream naming for the assignment fan-out pipeline.
const (
	StreamName             = "LINGUA_ASSIGNMENTS"
	SubjectTestAssigned    = "lingua.assignments.test_assigned"
	SubjectStudentEnrolled = "lingua.assignments.student_enrolled"
	QueueGroup             = "lingua-fanout"
)

// AssignmentOptions carries the caller-supplied overrides for an
// auto-created assignment. Zero values fall back to factory defaults.
type AssignmentOptions struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsPublished *bool      `json:"is_published,omitempty"`
}

// TestAssignedToClass signals that a published test was bound to a class and
// must fan out to the class roster. The payload carries ids only; listeners
// reload the rows inside their own transaction.
type TestAssignedToClass struct {
	EventID    string            `json:"event_id"`
	TestID     uint              `json:"test_id"`
	ClassID    uint              `json:"class_id"`
	Options    AssignmentOptions `json:"options"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// StudentEnrolledInClass signals that an enrollment became active and the
// student must be fanned into the class's published assignments.
type StudentEnrolledInClass struct {
	EventID    string    `json:"event_id"`
	StudentID  uint      `json:"student_id"`
	ClassID    uint      `json:"class_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTestAssigned builds a TestAssignedToClass event with a fresh event id.
func NewTestAssigned(testID, classID uint, options AssignmentOptions) TestAssignedToClass {
	return TestAssignedToClass{
		EventID:    uuid.NewString(),
		TestID:     testID,
		ClassID:    classID,
		Options:    options,
		OccurredAt: time.Now().UTC(),
	}
}

// NewStudentEnrolled builds a StudentEnrolledInClass event with a fresh event id.
func NewStudentEnrolled(studentID, classID uint) StudentEnrolledInClass {
	return StudentEnrolledInClass{
		EventID:    uuid.NewString(),
		StudentID:  studentID,
		ClassID:    classID,
		OccurredAt: time.Now().UTC(),
	}
}
