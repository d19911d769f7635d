package persistence

import (
	"slices"
	"time"
)

// DomainEvent is a fact recorded by an aggregate.
// The event type is the key the message bus dispatches on.
type DomainEvent interface {
	IsEventType() string
	HasOccurredAt() time.Time
}

// DomainEvents is an ordered sequence of DomainEvent.
type DomainEvents = []DomainEvent

// SortByOccurrence orders events by the time they occurred.
// Events with equal timestamps keep their relative order.
func SortByOccurrence(events DomainEvents) {
	slices.SortStableFunc(events, func(a, b DomainEvent) int {
		return a.HasOccurredAt().Compare(b.HasOccurredAt())
	})
}

// ToOccurredAt normalizes t for use as an event timestamp: UTC, microsecond precision.
func ToOccurredAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
