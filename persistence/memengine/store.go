package memengine

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

const (
	logMsgCommitted   = "memengine: transaction committed"
	logMsgRolledBack  = "memengine: transaction rolled back"
	logAttrTables     = "tables"
	logAttrDurationMS = "duration_ms"
)

var (
	ErrTransactionDone = errors.New("transaction has already been committed or rolled back")
	ErrDuplicateKey    = errors.New("a row with this identity already exists")
)

// Row is one stored record, keyed by logical field name.
type Row map[string]any

type table map[any]Row

// Store is an in-memory set of tables.
//
// Only one transaction is active at a time: Begin waits until the previous transaction
// finished or ctx is done.
type Store struct {
	mu              sync.RWMutex
	tables          map[string]table
	slot            chan struct{}
	instrumentation persistence.Instrumentation
}

// NewStore creates an empty Store.
func NewStore(options ...persistence.Option) (*Store, error) {
	instrumentation, err := persistence.NewInstrumentation(options...)
	if err != nil {
		return nil, err
	}

	return &Store{
		tables:          make(map[string]table),
		slot:            make(chan struct{}, 1),
		instrumentation: instrumentation,
	}, nil
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{
		store:   s,
		touched: make(map[string]table),
		started: time.Now(),
	}, nil
}

// Len returns the number of committed rows in tableName.
func (s *Store) Len(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tables[tableName])
}

// Rows returns copies of the committed rows of tableName, in identity order.
func (s *Store) Rows(tableName string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedRows(s.tables[tableName])
}

func (s *Store) snapshot(tableName string) table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(table, len(s.tables[tableName]))
	for id, row := range s.tables[tableName] {
		copied[id] = maps.Clone(row)
	}

	return copied
}

func (s *Store) publish(touched map[string]table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, rows := range touched {
		s.tables[name] = rows
	}
}

func (s *Store) release() {
	<-s.slot
}

// Tx is a transaction on a Store. Reads see the transaction's own writes.
type Tx struct {
	store   *Store
	touched map[string]table
	started time.Time
	done    bool
}

// Commit makes the changes of the transaction visible in the Store.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTransactionDone
	}

	tx.done = true
	tx.store.publish(tx.touched)
	tx.store.release()

	tx.store.instrumentation.LogDebug(ctx, logMsgCommitted,
		logAttrTables, len(tx.touched),
		logAttrDurationMS, persistence.ToMilliseconds(time.Since(tx.started)))

	return nil
}

// Rollback discards the changes of the transaction.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return ErrTransactionDone
	}

	tx.done = true
	tx.touched = nil
	tx.store.release()

	tx.store.instrumentation.LogDebug(ctx, logMsgRolledBack, logAttrDurationMS, persistence.ToMilliseconds(time.Since(tx.started)))

	return nil
}

func (tx *Tx) table(name string) (table, error) {
	if tx.done {
		return nil, ErrTransactionDone
	}

	if rows, ok := tx.touched[name]; ok {
		return rows, nil
	}

	rows := tx.store.snapshot(name)
	tx.touched[name] = rows

	return rows, nil
}

func sortedRows(rows table) []Row {
	result := make([]Row, 0, len(rows))
	for _, id := range sortedIdentities(rows) {
		result = append(result, maps.Clone(rows[id]))
	}

	return result
}
