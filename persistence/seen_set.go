package persistence

// SeenSet tracks the aggregates a repository touched during one unit of work, keyed by identity.
//
// There is at most one tracked instance per identity, and events are collected from each
// tracked instance once per CollectEvents call, in the order the identities were first seen.
type SeenSet[ID comparable, A Root[ID]] struct {
	order    []ID
	byID     map[ID]A
	detached DomainEvents
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet[ID comparable, A Root[ID]]() *SeenSet[ID, A] {
	return &SeenSet[ID, A]{
		byID: make(map[ID]A),
	}
}

// Track returns the instance already tracked for aggregate's identity, or starts tracking aggregate.
// Loads go through Track so that every read of an identity yields the same instance.
func (s *SeenSet[ID, A]) Track(aggregate A) A {
	id := aggregate.AggregateID()

	if tracked, ok := s.byID[id]; ok {
		return tracked
	}

	s.order = append(s.order, id)
	s.byID[id] = aggregate

	return aggregate
}

// Put makes aggregate the tracked instance for its identity.
// If another instance was tracked under that identity, its pending events are kept for the next collection.
func (s *SeenSet[ID, A]) Put(aggregate A) {
	id := aggregate.AggregateID()

	tracked, ok := s.byID[id]
	if !ok {
		s.order = append(s.order, id)
		s.byID[id] = aggregate

		return
	}

	if any(tracked) != any(aggregate) {
		s.detached = append(s.detached, tracked.DrainEvents()...)
		s.byID[id] = aggregate
	}
}

// Lookup returns the tracked instance for id.
func (s *SeenSet[ID, A]) Lookup(id ID) (A, bool) {
	aggregate, ok := s.byID[id]
	return aggregate, ok
}

// Len returns the number of tracked identities.
func (s *SeenSet[ID, A]) Len() int {
	return len(s.order)
}

// CollectEvents drains the pending events of every tracked aggregate.
// A second call without new mutations returns an empty sequence.
func (s *SeenSet[ID, A]) CollectEvents() DomainEvents {
	events := s.detached
	s.detached = nil

	for _, id := range s.order {
		events = append(events, s.byID[id].DrainEvents()...)
	}

	if events == nil {
		return DomainEvents{}
	}

	return events
}
