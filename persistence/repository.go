package persistence

import (
	"context"
)

// Values maps logical field names to the values a bulk Update assigns.
type Values map[string]any

// EventCollector drains the pending events of everything it tracked.
type EventCollector interface {
	CollectEvents() DomainEvents
}

// Repository stores aggregates of type A identified by ID inside one transaction.
//
// Every aggregate that passes through Add, Get, Find or Save is tracked, so its events
// are published when the unit of work commits. Update and Delete act on rows directly:
// they neither load nor track aggregates, and tracked instances are not refreshed.
type Repository[ID comparable, A Root[ID]] interface {
	Add(ctx context.Context, aggregate A) error
	Get(ctx context.Context, id ID) (A, error)
	Find(ctx context.Context, spec Specification, options ...FindOption) ([]A, error)
	Save(ctx context.Context, aggregate A) error
	Update(ctx context.Context, spec Specification, values Values) (int64, error)
	Delete(ctx context.Context, spec Specification) (int64, error)

	EventCollector
}

// FindOptions bounds a Find. A zero Limit means no limit.
type FindOptions struct {
	Limit  uint
	Offset uint
}

// FindOption configures a Find.
type FindOption func(*FindOptions)

// WithLimit caps the number of returned aggregates.
func WithLimit(limit uint) FindOption {
	return func(o *FindOptions) {
		o.Limit = limit
	}
}

// WithOffset skips the first offset matching aggregates.
func WithOffset(offset uint) FindOption {
	return func(o *FindOptions) {
		o.Offset = offset
	}
}

// BuildFindOptions applies options in order.
func BuildFindOptions(options ...FindOption) FindOptions {
	var result FindOptions
	for _, option := range options {
		option(&result)
	}

	return result
}
