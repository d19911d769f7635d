package memengine

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/bruhsty/bruhsty/persistence"
)

// Mapper converts aggregates of type A to rows and back.
//
// Fields lists the logical field names specifications and bulk updates may reference;
// they must be keys of the rows ToRow produces. FromRow receives a private copy of the row.
type Mapper[ID comparable, A persistence.Root[ID]] interface {
	Table() string
	Fields() []string
	ToRow(aggregate A) (Row, error)
	FromRow(row Row) (A, error)
}

// Storage is a persistence.Repository backed by a transaction on a Store.
type Storage[ID comparable, A persistence.Root[ID]] struct {
	tx      *Tx
	mapper  Mapper[ID, A]
	fields  map[string]struct{}
	resolve FieldResolver[Row]
	seen    *persistence.SeenSet[ID, A]
}

// NewStorage binds a repository for the aggregates mapped by mapper to tx.
func NewStorage[ID comparable, A persistence.Root[ID]](tx *Tx, mapper Mapper[ID, A]) *Storage[ID, A] {
	fields := make(map[string]struct{})
	for _, field := range mapper.Fields() {
		fields[field] = struct{}{}
	}

	return &Storage[ID, A]{
		tx:      tx,
		mapper:  mapper,
		fields:  fields,
		resolve: RowResolver(mapper.Fields()...),
		seen:    persistence.NewSeenSet[ID, A](),
	}
}

// Add inserts a new aggregate. An existing row with the same identity fails with ErrDuplicateKey.
func (s *Storage[ID, A]) Add(_ context.Context, aggregate A) error {
	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return err
	}

	id := aggregate.AggregateID()
	if _, exists := rows[id]; exists {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, id)
	}

	row, err := s.mapper.ToRow(aggregate)
	if err != nil {
		return err
	}

	rows[id] = row
	s.seen.Put(aggregate)

	return nil
}

// Get loads the aggregate with identity id, or returns the instance already tracked for it.
func (s *Storage[ID, A]) Get(_ context.Context, id ID) (A, error) {
	var empty A

	if tracked, ok := s.seen.Lookup(id); ok {
		return tracked, nil
	}

	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return empty, err
	}

	row, ok := rows[id]
	if !ok {
		return empty, fmt.Errorf("%w: %v", persistence.ErrNotFound, id)
	}

	aggregate, err := s.mapper.FromRow(maps.Clone(row))
	if err != nil {
		return empty, err
	}

	return s.seen.Track(aggregate), nil
}

// Find returns the aggregates matching spec in identity order.
func (s *Storage[ID, A]) Find(_ context.Context, spec persistence.Specification, options ...persistence.FindOption) ([]A, error) {
	predicate, err := CompileSpecification(spec, s.resolve)
	if err != nil {
		return nil, err
	}

	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return nil, err
	}

	matched := make([]any, 0)
	for _, id := range sortedIdentities(rows) {
		if predicate(rows[id]) {
			matched = append(matched, id)
		}
	}

	matched = page(matched, persistence.BuildFindOptions(options...))

	result := make([]A, 0, len(matched))
	for _, key := range matched {
		id := key.(ID)

		if tracked, ok := s.seen.Lookup(id); ok {
			result = append(result, tracked)
			continue
		}

		aggregate, err := s.mapper.FromRow(maps.Clone(rows[key]))
		if err != nil {
			return nil, err
		}

		result = append(result, s.seen.Track(aggregate))
	}

	return result, nil
}

// Save inserts or replaces the row of aggregate.
func (s *Storage[ID, A]) Save(_ context.Context, aggregate A) error {
	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return err
	}

	row, err := s.mapper.ToRow(aggregate)
	if err != nil {
		return err
	}

	rows[aggregate.AggregateID()] = row
	s.seen.Put(aggregate)

	return nil
}

// Update assigns values to every row matching spec and returns the number of rows changed.
func (s *Storage[ID, A]) Update(_ context.Context, spec persistence.Specification, values persistence.Values) (int64, error) {
	for field := range values {
		if _, ok := s.fields[field]; !ok {
			return 0, fmt.Errorf("%w: %q", persistence.ErrUnknownField, field)
		}
	}

	predicate, err := CompileSpecification(spec, s.resolve)
	if err != nil {
		return 0, err
	}

	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return 0, err
	}

	var affected int64
	for _, row := range rows {
		if !predicate(row) {
			continue
		}

		for field, value := range values {
			row[field] = persistence.IndirectValue(value)
		}

		affected++
	}

	if affected == 0 {
		return 0, persistence.ErrNoRowsAffected
	}

	return affected, nil
}

// Delete removes every row matching spec and returns the number of rows removed.
func (s *Storage[ID, A]) Delete(_ context.Context, spec persistence.Specification) (int64, error) {
	predicate, err := CompileSpecification(spec, s.resolve)
	if err != nil {
		return 0, err
	}

	rows, err := s.tx.table(s.mapper.Table())
	if err != nil {
		return 0, err
	}

	var affected int64
	for id, row := range rows {
		if predicate(row) {
			delete(rows, id)
			affected++
		}
	}

	if affected == 0 {
		return 0, persistence.ErrNoRowsAffected
	}

	return affected, nil
}

// CollectEvents drains the pending events of the aggregates this storage tracked.
func (s *Storage[ID, A]) CollectEvents() persistence.DomainEvents {
	return s.seen.CollectEvents()
}

func sortedIdentities(rows table) []any {
	ids := make([]any, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, compareIdentities)

	return ids
}

func page(ids []any, options persistence.FindOptions) []any {
	if options.Offset >= uint(len(ids)) {
		return ids[:0]
	}

	ids = ids[options.Offset:]

	if options.Limit > 0 && options.Limit < uint(len(ids)) {
		ids = ids[:options.Limit]
	}

	return ids
}
