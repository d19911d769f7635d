package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/bruhsty/bruhsty/persistence"
)

const (
	logMsgOperation      = "sqlengine operation: "
	logMsgMapFailed      = "sqlengine: failed to map aggregate to record"
	logAttrTable         = "table"
	logAttrRowCount      = "row_count"
	logAttrRowsAffected  = "rows_affected"
	spanNamePrefix       = "sqlengine."
	spanAttrTable        = "table"
	metricOperationRows  = "sqlengine_rows"
	operationAdd         = "add"
	operationGet         = "get"
	operationFind        = "find"
	operationSave        = "save"
	operationUpdate      = "update"
	operationDelete      = "delete"
	errorTypeMapping     = "mapping_failed"
	errorTypeCompilation = "compilation_failed"
	errorTypeNotFound    = "not_found"
	errorTypeNoRows      = "no_rows_affected"
	errorTypeUnknown     = "unknown_field"
	errorTypeDatabase    = "database_error"
	unlimited            = uint(math.MaxInt)
)

// Mapper converts aggregates of type A to table records and back.
//
// Columns lists every column FromRow scans, in scan order; it includes IDColumn.
// ResolveField maps the logical field names of specifications and bulk updates to columns.
type Mapper[ID comparable, A persistence.Root[ID]] interface {
	Table() string
	IDColumn() string
	Columns() []string
	ResolveField(field string) (column string, ok bool)
	ToRecord(aggregate A) (goqu.Record, error)
	FromRow(scan func(dest ...any) error) (A, error)
}

// Storage is a persistence.Repository whose statements run inside one Tx.
type Storage[ID comparable, A persistence.Root[ID]] struct {
	tx     *Tx
	mapper Mapper[ID, A]
	seen   *persistence.SeenSet[ID, A]
}

// NewStorage binds a repository for the aggregates mapped by mapper to tx.
func NewStorage[ID comparable, A persistence.Root[ID]](tx *Tx, mapper Mapper[ID, A]) *Storage[ID, A] {
	return &Storage[ID, A]{
		tx:     tx,
		mapper: mapper,
		seen:   persistence.NewSeenSet[ID, A](),
	}
}

// Add inserts a new aggregate and tracks it.
func (s *Storage[ID, A]) Add(ctx context.Context, aggregate A) error {
	ctx, span, start := s.startOperation(ctx, operationAdd)

	record, err := s.toRecord(ctx, aggregate)
	if err != nil {
		s.finishOperation(ctx, span, operationAdd, start, err)
		return err
	}

	stmt := s.tx.builder.Insert(s.mapper.Table()).Rows(record).Prepared(true)

	if _, err = s.tx.exec(ctx, operationAdd, stmt); err != nil {
		s.finishOperation(ctx, span, operationAdd, start, err)
		return err
	}

	s.seen.Put(aggregate)
	s.finishOperation(ctx, span, operationAdd, start, nil, logAttrRowsAffected, 1)

	return nil
}

// Get loads the aggregate with identity id, or returns the instance already tracked for it.
// A missing row fails with persistence.ErrNotFound.
func (s *Storage[ID, A]) Get(ctx context.Context, id ID) (A, error) {
	var empty A

	if tracked, ok := s.seen.Lookup(id); ok {
		return tracked, nil
	}

	ctx, span, start := s.startOperation(ctx, operationGet)

	stmt := s.selectColumns().
		Where(goqu.C(s.mapper.IDColumn()).Eq(id)).
		Limit(1)

	loaded, err := s.load(ctx, operationGet, stmt)
	if err != nil {
		s.finishOperation(ctx, span, operationGet, start, err)
		return empty, err
	}

	if len(loaded) == 0 {
		err = fmt.Errorf("%w: %v", persistence.ErrNotFound, id)
		s.finishOperation(ctx, span, operationGet, start, err)

		return empty, err
	}

	s.finishOperation(ctx, span, operationGet, start, nil, logAttrRowCount, 1)

	return loaded[0], nil
}

// Find returns the aggregates matching spec ordered by identity, and tracks them.
func (s *Storage[ID, A]) Find(ctx context.Context, spec persistence.Specification, options ...persistence.FindOption) ([]A, error) {
	ctx, span, start := s.startOperation(ctx, operationFind)

	where, err := s.compile(ctx, operationFind, spec)
	if err != nil {
		s.finishOperation(ctx, span, operationFind, start, err)
		return nil, err
	}

	stmt := s.selectColumns().
		Where(where).
		Order(goqu.C(s.mapper.IDColumn()).Asc())

	findOptions := persistence.BuildFindOptions(options...)

	switch {
	case findOptions.Limit > 0:
		stmt = stmt.Limit(findOptions.Limit)
	case findOptions.Offset > 0:
		// SQLite accepts OFFSET only after a LIMIT.
		stmt = stmt.Limit(unlimited)
	}

	if findOptions.Offset > 0 {
		stmt = stmt.Offset(findOptions.Offset)
	}

	loaded, err := s.load(ctx, operationFind, stmt)
	if err != nil {
		s.finishOperation(ctx, span, operationFind, start, err)
		return nil, err
	}

	s.finishOperation(ctx, span, operationFind, start, nil, logAttrRowCount, len(loaded))

	return loaded, nil
}

// Save inserts the aggregate or replaces its row, and tracks it.
func (s *Storage[ID, A]) Save(ctx context.Context, aggregate A) error {
	ctx, span, start := s.startOperation(ctx, operationSave)

	record, err := s.toRecord(ctx, aggregate)
	if err != nil {
		s.finishOperation(ctx, span, operationSave, start, err)
		return err
	}

	changes := make(goqu.Record, len(record))
	for column, value := range record {
		if column != s.mapper.IDColumn() {
			changes[column] = value
		}
	}

	stmt := s.tx.builder.Insert(s.mapper.Table()).
		Rows(record).
		OnConflict(goqu.DoUpdate(s.mapper.IDColumn(), changes)).
		Prepared(true)

	if _, err = s.tx.exec(ctx, operationSave, stmt); err != nil {
		s.finishOperation(ctx, span, operationSave, start, err)
		return err
	}

	s.seen.Put(aggregate)
	s.finishOperation(ctx, span, operationSave, start, nil, logAttrRowsAffected, 1)

	return nil
}

// Update assigns values to every row matching spec. Tracked aggregates are not refreshed.
// When no row matches, it fails with persistence.ErrNoRowsAffected.
func (s *Storage[ID, A]) Update(ctx context.Context, spec persistence.Specification, values persistence.Values) (int64, error) {
	ctx, span, start := s.startOperation(ctx, operationUpdate)

	changes := make(goqu.Record, len(values))
	for field, value := range values {
		column, ok := s.mapper.ResolveField(field)
		if !ok {
			err := fmt.Errorf("%w: %q", persistence.ErrUnknownField, field)
			s.finishOperation(ctx, span, operationUpdate, start, err)

			return 0, err
		}

		changes[column] = persistence.IndirectValue(value)
	}

	where, err := s.compile(ctx, operationUpdate, spec)
	if err != nil {
		s.finishOperation(ctx, span, operationUpdate, start, err)
		return 0, err
	}

	stmt := s.tx.builder.Update(s.mapper.Table()).
		Set(changes).
		Where(where).
		Prepared(true)

	return s.execAffecting(ctx, span, operationUpdate, start, stmt)
}

// Delete removes every row matching spec. Tracked aggregates stay tracked.
// When no row matches, it fails with persistence.ErrNoRowsAffected.
func (s *Storage[ID, A]) Delete(ctx context.Context, spec persistence.Specification) (int64, error) {
	ctx, span, start := s.startOperation(ctx, operationDelete)

	where, err := s.compile(ctx, operationDelete, spec)
	if err != nil {
		s.finishOperation(ctx, span, operationDelete, start, err)
		return 0, err
	}

	stmt := s.tx.builder.Delete(s.mapper.Table()).
		Where(where).
		Prepared(true)

	return s.execAffecting(ctx, span, operationDelete, start, stmt)
}

// CollectEvents drains the pending events of the aggregates this storage tracked.
func (s *Storage[ID, A]) CollectEvents() persistence.DomainEvents {
	return s.seen.CollectEvents()
}

func (s *Storage[ID, A]) execAffecting(
	ctx context.Context,
	span persistence.SpanContext,
	operation string,
	start time.Time,
	stmt statement,
) (int64, error) {

	rowsAffected, err := s.tx.exec(ctx, operation, stmt)
	if err != nil {
		s.finishOperation(ctx, span, operation, start, err)
		return 0, err
	}

	if rowsAffected == 0 {
		s.finishOperation(ctx, span, operation, start, persistence.ErrNoRowsAffected)
		return 0, persistence.ErrNoRowsAffected
	}

	s.tx.instrumentation.RecordValue(ctx, metricOperationRows, float64(rowsAffected), operation, persistence.StatusSuccess)
	s.finishOperation(ctx, span, operation, start, nil, logAttrRowsAffected, rowsAffected)

	return rowsAffected, nil
}

func (s *Storage[ID, A]) selectColumns() *goqu.SelectDataset {
	columns := make([]any, 0, len(s.mapper.Columns()))
	for _, column := range s.mapper.Columns() {
		columns = append(columns, column)
	}

	return s.tx.builder.From(s.mapper.Table()).Select(columns...).Prepared(true)
}

// load runs stmt and maps every row, preferring already tracked instances.
func (s *Storage[ID, A]) load(ctx context.Context, operation string, stmt *goqu.SelectDataset) ([]A, error) {
	loaded := make([]A, 0)

	err := s.tx.query(ctx, operation, stmt, func(scan func(dest ...any) error) error {
		aggregate, err := s.mapper.FromRow(scan)
		if err != nil {
			return errors.Join(ErrScanningDBRowFailed, err)
		}

		loaded = append(loaded, s.seen.Track(aggregate))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return loaded, nil
}

func (s *Storage[ID, A]) compile(ctx context.Context, operation string, spec persistence.Specification) (exp.Expression, error) {
	where, err := CompileSpecification(spec, s.mapper.ResolveField)
	if err != nil {
		s.tx.instrumentation.RecordError(ctx, metricDatabaseErrors, operation, errorTypeCompilation)
		return nil, err
	}

	return where, nil
}

func (s *Storage[ID, A]) toRecord(ctx context.Context, aggregate A) (goqu.Record, error) {
	record, err := s.mapper.ToRecord(aggregate)
	if err != nil {
		s.tx.instrumentation.LogError(ctx, logMsgMapFailed, err, logAttrTable, s.mapper.Table())
		return nil, errors.Join(ErrMappingAggregateFailed, err)
	}

	return record, nil
}

func (s *Storage[ID, A]) startOperation(ctx context.Context, operation string) (context.Context, persistence.SpanContext, time.Time) {
	ctx, span := s.tx.instrumentation.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		persistence.LabelOperation: operation,
		spanAttrTable:              s.mapper.Table(),
	})

	return ctx, span, time.Now()
}

func (s *Storage[ID, A]) finishOperation(
	ctx context.Context,
	span persistence.SpanContext,
	operation string,
	start time.Time,
	err error,
	args ...any,
) {

	duration := time.Since(start)

	if err != nil {
		s.tx.instrumentation.FinishSpan(span, persistence.StatusError, map[string]string{persistence.LabelErrorType: errorType(err)})
		return
	}

	logArgs := append([]any{logAttrTable, s.mapper.Table(), logAttrDurationMS, persistence.ToMilliseconds(duration)}, args...)
	s.tx.instrumentation.LogInfo(ctx, logMsgOperation+operation, logArgs...)
	s.tx.instrumentation.FinishSpan(span, persistence.StatusSuccess, nil)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, persistence.ErrNoRowsAffected):
		return errorTypeNoRows
	case errors.Is(err, persistence.ErrUnknownField):
		return errorTypeUnknown
	case errors.Is(err, ErrMappingAggregateFailed):
		return errorTypeMapping
	default:
		return errorTypeDatabase
	}
}
