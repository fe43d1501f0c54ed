package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSDispatcher publishes fan-out events onto a JetStream stream. Publishing
// is fire-and-continue from the caller's perspective: the event is durable
// once acknowledged by the broker and a worker picks it up out of band.
type NATSDispatcher struct {
	js     nats.JetStreamContext
	logger zerolog.Logger
}

// NewNATSDispatcher ensures the fan-out stream exists and returns a dispatcher.
func NewNATSDispatcher(js nats.JetStreamContext, logger zerolog.Logger) (*NATSDispatcher, error) {
	if err := ensureStream(js); err != nil {
		return nil, err
	}

	return &NATSDispatcher{
		js:     js,
		logger: logger.With().Str("component", "nats_dispatcher").Logger(),
	}, nil
}

func (d *NATSDispatcher) DispatchTestAssigned(_ context.Context, event TestAssignedToClass) error {
	return d.publish(SubjectTestAssigned, event.EventID, event)
}

func (d *NATSDispatcher) DispatchStudentEnrolled(_ context.Context, event StudentEnrolledInClass) error {
	return d.publish(SubjectStudentEnrolled, event.EventID, event)
}

func (d *NATSDispatcher) publish(subject, eventID string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventID, err)
	}

	// MsgId enables broker-side duplicate suppression within the dedupe window.
	if _, err := d.js.Publish(subject, payload, nats.MsgId(eventID)); err != nil {
		return fmt.Errorf("publish event %s: %w", eventID, err)
	}

	d.logger.Debug().Str("event_id", eventID).Str("subject", subject).Msg("event published")
	return nil
}

// Consumer pulls fan-out events from JetStream and feeds them to the handler.
// Delivery is at-least-once: a failed handler run is negatively acknowledged
// and redelivered, so the handler-side idempotency guards matter.
type Consumer struct {
	js      nats.JetStreamContext
	handler Handler
	guard   *Deduper
	logger  zerolog.Logger
	subs    []*nats.Subscription
}

// NewConsumer constructs a fan-out event consumer. The guard may be nil when
// no Redis claim store is configured.
func NewConsumer(js nats.JetStreamContext, handler Handler, guard *Deduper, logger zerolog.Logger) *Consumer {
	return &Consumer{
		js:      js,
		handler: handler,
		guard:   guard,
		logger:  logger.With().Str("component", "fanout_consumer").Logger(),
	}
}

// Start subscribes the queue group to both fan-out subjects. Subscriptions
// are drained when the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := ensureStream(c.js); err != nil {
		return err
	}

	testAssigned, err := c.js.QueueSubscribe(SubjectTestAssigned, QueueGroup, func(msg *nats.Msg) {
		c.consume(ctx, msg, c.handleTestAssigned)
	}, nats.ManualAck(), nats.AckExplicit(), nats.Durable(QueueGroup+"-test-assigned"))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectTestAssigned, err)
	}
	c.subs = append(c.subs, testAssigned)

	studentEnrolled, err := c.js.QueueSubscribe(SubjectStudentEnrolled, QueueGroup, func(msg *nats.Msg) {
		c.consume(ctx, msg, c.handleStudentEnrolled)
	}, nats.ManualAck(), nats.AckExplicit(), nats.Durable(QueueGroup+"-student-enrolled"))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectStudentEnrolled, err)
	}
	c.subs = append(c.subs, studentEnrolled)

	go func() {
		<-ctx.Done()
		for _, sub := range c.subs {
			if err := sub.Drain(); err != nil {
				c.logger.Warn().Err(err).Msg("failed to drain fan-out subscription")
			}
		}
	}()

	return nil
}

func (c *Consumer) handleTestAssigned(ctx context.Context, payload []byte) (string, error) {
	var event TestAssignedToClass
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", errMalformed(err)
	}

	return event.EventID, c.withClaim(ctx, event.EventID, func() error {
		return c.handler.HandleTestAssigned(ctx, event)
	})
}

func (c *Consumer) handleStudentEnrolled(ctx context.Context, payload []byte) (string, error) {
	var event StudentEnrolledInClass
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", errMalformed(err)
	}

	return event.EventID, c.withClaim(ctx, event.EventID, func() error {
		return c.handler.HandleStudentEnrolled(ctx, event)
	})
}

// ErrUnprocessable marks a handler failure no redelivery can fix, such as a
// precondition that the event's subject can never satisfy. The consumer
// terminates such deliveries instead of requesting redelivery.
var ErrUnprocessable = errors.New("event cannot be processed")

// errAlreadyClaimed marks an event whose claim is held by a completed or
// in-flight delivery; the message is acked without re-running the handler.
var errAlreadyClaimed = errors.New("event already claimed")

func (c *Consumer) withClaim(ctx context.Context, eventID string, handle func() error) error {
	claimed, err := c.guard.Claim(ctx, eventID)
	if err != nil {
		return err
	}
	if !claimed {
		return errAlreadyClaimed
	}

	if err := handle(); err != nil {
		if releaseErr := c.guard.Release(ctx, eventID); releaseErr != nil {
			c.logger.Warn().Err(releaseErr).Str("event_id", eventID).Msg("failed to release event claim")
		}
		return err
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context, msg *nats.Msg, handle func(context.Context, []byte) (string, error)) {
	eventID, err := handle(ctx, msg.Data)

	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn().Err(ackErr).Str("event_id", eventID).Msg("failed to ack event")
		}
	case errors.Is(err, errAlreadyClaimed):
		c.logger.Info().Str("event_id", eventID).Msg("skipping duplicate event delivery")
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn().Err(ackErr).Str("event_id", eventID).Msg("failed to ack duplicate event")
		}
	case isMalformed(err):
		// A payload that cannot decode will never succeed; drop it.
		c.logger.Error().Err(err).Str("subject", msg.Subject).Msg("dropping malformed event payload")
		if ackErr := msg.Term(); ackErr != nil {
			c.logger.Warn().Err(ackErr).Msg("failed to terminate malformed event")
		}
	case errors.Is(err, ErrUnprocessable):
		c.logger.Error().Err(err).Str("event_id", eventID).Str("subject", msg.Subject).Msg("dropping unprocessable event")
		if ackErr := msg.Term(); ackErr != nil {
			c.logger.Warn().Err(ackErr).Str("event_id", eventID).Msg("failed to terminate unprocessable event")
		}
	default:
		c.logger.Error().Err(err).Str("event_id", eventID).Str("subject", msg.Subject).Msg("fan-out handler failed, requesting redelivery")
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn().Err(nakErr).Str("event_id", eventID).Msg("failed to nak event")
		}
	}
}

type malformedError struct{ err error }

func (e malformedError) Error() string { return fmt.Sprintf("malformed event payload: %v", e.err) }
func (e malformedError) Unwrap() error { return e.err }

func errMalformed(err error) error { return malformedError{err: err} }

func isMalformed(err error) bool {
	var target malformedError
	return errors.As(err, &target)
}

func ensureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", StreamName, err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectTestAssigned, SubjectStudentEnrolled},
		Retention: nats.WorkQueuePolicy,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}

	return nil
}
