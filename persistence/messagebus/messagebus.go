// Package messagebus dispatches domain events to handlers registered by event type.
//
// Dispatch is synchronous and in-process: Publish returns after every handler ran,
// and the first failing handler aborts the call.
package messagebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

const (
	logMsgEventHandled     = "messagebus: event handled"
	logMsgHandlerFailed    = "messagebus: event handler failed"
	logAttrEventType       = "event_type"
	logAttrHandlerCount    = "handler_count"
	logAttrDurationMS      = "duration_ms"
	metricHandlerDuration  = "messagebus_handler_duration_seconds"
	metricMessageBusErrors = "messagebus_errors_total"
	errorTypeHandler       = "handler_failed"
)

var (
	ErrNilHandler          = errors.New("event handler must not be nil")
	ErrHandlingEventFailed = errors.New("handling the event failed")
)

// Handler reacts to one domain event.
type Handler func(ctx context.Context, event persistence.DomainEvent) error

// Bus is a synchronous in-process message bus. It implements persistence.Publisher.
// Handlers are fixed at construction, so a Bus is safe for concurrent use.
type Bus struct {
	handlers        map[string][]Handler
	instrumentation persistence.Instrumentation
}

// New creates a Bus that dispatches events of each type to the handlers listed for it, in order.
func New(handlers map[string][]Handler, options ...persistence.Option) (*Bus, error) {
	registered := make(map[string][]Handler, len(handlers))

	for eventType, list := range handlers {
		for _, handler := range list {
			if handler == nil {
				return nil, fmt.Errorf("%w: %s", ErrNilHandler, eventType)
			}
		}

		registered[eventType] = append([]Handler(nil), list...)
	}

	instrumentation, err := persistence.NewInstrumentation(options...)
	if err != nil {
		return nil, err
	}

	return &Bus{handlers: registered, instrumentation: instrumentation}, nil
}

// Publish hands each event, in order, to the handlers registered for its type.
// Events without handlers are skipped. The first handler error stops the dispatch
// and is returned wrapped with the type of the event.
func (b *Bus) Publish(ctx context.Context, events ...persistence.DomainEvent) error {
	for _, event := range events {
		if err := b.handle(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// HandlerCount returns the number of handlers registered for eventType.
func (b *Bus) HandlerCount(eventType string) int {
	return len(b.handlers[eventType])
}

func (b *Bus) handle(ctx context.Context, event persistence.DomainEvent) error {
	eventType := event.IsEventType()

	handlers, ok := b.handlers[eventType]
	if !ok {
		return nil
	}

	start := time.Now()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.instrumentation.LogError(ctx, logMsgHandlerFailed, err, logAttrEventType, eventType)
			b.instrumentation.RecordDuration(ctx, metricHandlerDuration, time.Since(start), eventType, persistence.StatusError)
			b.instrumentation.RecordError(ctx, metricMessageBusErrors, eventType, errorTypeHandler)

			return fmt.Errorf("%w: %s: %w", ErrHandlingEventFailed, eventType, err)
		}
	}

	duration := time.Since(start)
	b.instrumentation.LogDebug(ctx, logMsgEventHandled,
		logAttrEventType, eventType,
		logAttrHandlerCount, len(handlers),
		logAttrDurationMS, persistence.ToMilliseconds(duration))
	b.instrumentation.RecordDuration(ctx, metricHandlerDuration, duration, eventType, persistence.StatusSuccess)

	return nil
}
