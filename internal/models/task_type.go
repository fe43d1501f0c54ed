package models

// TestType enumerates the language skills a test can examine.
type TestType string

const (
	TestTypeReading   TestType = "reading"
	TestTypeWriting   TestType = "writing"
	TestTypeListening TestType = "listening"
	TestTypeSpeaking  TestType = "speaking"
)

// TaskType classifies an assignment by the skill of its source test.
type TaskType string

const (
	TaskTypeReading   TaskType = "reading_task"
	TaskTypeWriting   TaskType = "writing_task"
	TaskTypeListening TaskType = "listening_task"
	TaskTypeSpeaking  TaskType = "speaking_task"
	TaskTypeGeneral   TaskType = "general_task"
)

// TaskTypeForTest maps a test skill onto its assignment task type. Unknown
// skills fall back to the general task type.
func TaskTypeForTest(testType TestType) TaskType {
	switch testType {
	case TestTypeReading:
		return TaskTypeReading
	case TestTypeWriting:
		return TaskTypeWriting
	case TestTypeListening:
		return TaskTypeListening
	case TestTypeSpeaking:
		return TaskTypeSpeaking
	default:
		return TaskTypeGeneral
	}
}

// Valid reports whether the test type is one of the supported skills.
func (t TestType) Valid() bool {
	switch t {
	case TestTypeReading, TestTypeWriting, TestTypeListening, TestTypeSpeaking:
		return true
	default:
		return false
	}
}
