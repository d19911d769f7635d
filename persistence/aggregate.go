package persistence

// Root is what repositories need from an aggregate: its identity and its pending events.
type Root[ID comparable] interface {
	AggregateID() ID
	DrainEvents() DomainEvents
}

// Aggregate carries the identity of a domain object and a FIFO queue of pending events.
// Domain types embed it and push events from their own mutating methods.
type Aggregate[ID comparable] struct {
	id     ID
	events DomainEvents
}

// NewAggregate creates an Aggregate with the given identity and no pending events.
func NewAggregate[ID comparable](id ID) Aggregate[ID] {
	return Aggregate[ID]{id: id}
}

// AggregateID returns the identity of the aggregate.
func (a *Aggregate[ID]) AggregateID() ID {
	return a.id
}

// PushEvent appends event to the queue.
func (a *Aggregate[ID]) PushEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// PopEvent removes and returns the oldest pending event.
func (a *Aggregate[ID]) PopEvent() (DomainEvent, bool) {
	if len(a.events) == 0 {
		return nil, false
	}

	event := a.events[0]
	a.events[0] = nil
	a.events = a.events[1:]

	if len(a.events) == 0 {
		a.events = nil
	}

	return event, true
}

// DrainEvents removes and returns all pending events, oldest first.
func (a *Aggregate[ID]) DrainEvents() DomainEvents {
	events := a.events
	a.events = nil

	if events == nil {
		return DomainEvents{}
	}

	return events
}

// PendingEvents returns the number of events waiting to be collected.
func (a *Aggregate[ID]) PendingEvents() int {
	return len(a.events)
}
