package events

import (
	"context"

	"github.com/rs/zerolog"
)

// InlineDispatcher invokes the handler synchronously in the dispatching
// goroutine. Used when no broker is configured and in tests; there is no
// redelivery, so a handler failure surfaces directly to the caller.
type InlineDispatcher struct {
	handler Handler
	logger  zerolog.Logger
}

// NewInlineDispatcher constructs a synchronous dispatcher.
func NewInlineDispatcher(handler Handler, logger zerolog.Logger) *InlineDispatcher {
	return &InlineDispatcher{
		handler: handler,
		logger:  logger.With().Str("component", "inline_dispatcher").Logger(),
	}
}

func (d *InlineDispatcher) DispatchTestAssigned(ctx context.Context, event TestAssignedToClass) error {
	d.logger.Debug().Str("event_id", event.EventID).Uint("test_id", event.TestID).Msg("handling test assigned inline")
	return d.handler.HandleTestAssigned(ctx, event)
}

func (d *InlineDispatcher) DispatchStudentEnrolled(ctx context.Context, event StudentEnrolledInClass) error {
	d.logger.Debug().Str("event_id", event.EventID).Uint("student_id", event.StudentID).Msg("handling student enrolled inline")
	return d.handler.HandleStudentEnrolled(ctx, event)
}
