package events

import "context"

// Handler processes fan-out events. Implementations must be safe to invoke
// more than once for the same event: delivery is at-least-once.
type Handler interface {
	HandleTestAssigned(ctx context.Context, event TestAssignedToClass) error
	HandleStudentEnrolled(ctx context.Context, event StudentEnrolledInClass) error
}

// Dispatcher publishes fan-out events from request-handling paths.
type Dispatcher interface {
	DispatchTestAssigned(ctx context.Context, event TestAssignedToClass) error
	DispatchStudentEnrolled(ctx context.Context, event StudentEnrolledInClass) error
}
