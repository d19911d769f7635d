package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/sqlengine/internal/adapters"
)

const (
	logMsgBeginFailed        = "sqlengine: beginning transaction failed"
	logMsgCommitted          = "sqlengine: transaction committed"
	logMsgRolledBack         = "sqlengine: transaction rolled back"
	logMsgBuildQueryFailed   = "sqlengine: failed to build sql statement"
	logMsgDBQueryFailed      = "sqlengine: database query execution failed"
	logMsgDBExecFailed       = "sqlengine: database statement execution failed"
	logMsgCloseRowsFailed    = "sqlengine: failed to close database rows"
	logMsgScanRowFailed      = "sqlengine: failed to scan database row"
	logMsgRowsAffectedFailed = "sqlengine: failed to get rows affected count"
	logMsgSQLExecuted        = "sqlengine: executed sql for: "
	logAttrQuery             = "query"
	logAttrDurationMS        = "duration_ms"
	metricStatementDuration  = "sqlengine_statement_duration_seconds"
	metricDatabaseErrors     = "sqlengine_errors_total"
	operationBegin           = "begin"
	errorTypeBegin           = "begin_failed"
	errorTypeBuildQuery      = "build_query_failed"
	errorTypeQuery           = "query_failed"
	errorTypeScan            = "scan_failed"
	errorTypeExec            = "exec_failed"
	errorTypeRowsAffected    = "rows_affected_failed"
)

// Transactor starts database transactions for units of work.
// It implements persistence.Transactor[*Tx].
type Transactor struct {
	db              adapters.DBAdapter
	dialect         Dialect
	instrumentation persistence.Instrumentation
}

// NewTransactorFromPGXPool creates a Transactor using a pgx Pool with optional configuration.
func NewTransactorFromPGXPool(db *pgxpool.Pool, options ...Option) (*Transactor, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTransactor(adapters.NewPGXAdapter(db), options...)
}

// NewTransactorFromSQLDB creates a Transactor using a sql.DB with optional configuration.
func NewTransactorFromSQLDB(db *sql.DB, options ...Option) (*Transactor, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTransactor(adapters.NewSQLAdapter(db), options...)
}

// NewTransactorFromSQLX creates a Transactor using a sqlx.DB with optional configuration.
func NewTransactorFromSQLX(db *sqlx.DB, options ...Option) (*Transactor, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTransactor(adapters.NewSQLXAdapter(db), options...)
}

func newTransactor(db adapters.DBAdapter, options ...Option) (*Transactor, error) {
	t := &Transactor{
		db:      db,
		dialect: DialectPostgres,
	}

	for _, option := range options {
		if err := option(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Dialect returns the dialect statements are rendered for.
func (t *Transactor) Dialect() Dialect {
	return t.dialect
}

// Begin starts a database transaction.
func (t *Transactor) Begin(ctx context.Context) (*Tx, error) {
	dbTx, err := t.db.Begin(ctx)
	if err != nil {
		t.instrumentation.LogError(ctx, logMsgBeginFailed, err)
		t.instrumentation.RecordError(ctx, metricDatabaseErrors, operationBegin, errorTypeBegin)

		return nil, errors.Join(ErrBeginTransactionFailed, err)
	}

	return &Tx{
		tx:              dbTx,
		builder:         goqu.Dialect(string(t.dialect)),
		instrumentation: t.instrumentation,
		started:         time.Now(),
	}, nil
}

// Tx is an open database transaction. Storages created with NewStorage execute inside it.
type Tx struct {
	tx              adapters.DBTx
	builder         goqu.DialectWrapper
	instrumentation persistence.Instrumentation
	started         time.Time
}

// Commit commits the database transaction.
func (tx *Tx) Commit(ctx context.Context) error {
	if err := tx.tx.Commit(ctx); err != nil {
		return err
	}

	tx.instrumentation.LogDebug(ctx, logMsgCommitted, logAttrDurationMS, persistence.ToMilliseconds(time.Since(tx.started)))

	return nil
}

// Rollback rolls the database transaction back.
func (tx *Tx) Rollback(ctx context.Context) error {
	if err := tx.tx.Rollback(ctx); err != nil {
		return err
	}

	tx.instrumentation.LogDebug(ctx, logMsgRolledBack, logAttrDurationMS, persistence.ToMilliseconds(time.Since(tx.started)))

	return nil
}

type statement interface {
	ToSQL() (string, []any, error)
}

// query runs a SELECT statement and hands every row to scan.
func (tx *Tx) query(ctx context.Context, action string, stmt statement, scan func(scan func(dest ...any) error) error) error {
	sqlQuery, args, err := tx.build(ctx, action, stmt)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, queryErr := tx.tx.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	tx.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		tx.instrumentation.LogError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		tx.instrumentation.RecordDuration(ctx, metricStatementDuration, duration, action, persistence.StatusError)
		tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeQuery)

		return errors.Join(ErrQueryingFailed, queryErr)
	}
	defer tx.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scan(rows.Scan); scanErr != nil {
			tx.instrumentation.LogError(ctx, logMsgScanRowFailed, scanErr)
			tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeScan)

			return scanErr
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		tx.instrumentation.LogError(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeQuery)

		return errors.Join(ErrQueryingFailed, rowsErr)
	}

	tx.instrumentation.RecordDuration(ctx, metricStatementDuration, duration, action, persistence.StatusSuccess)

	return nil
}

// exec runs an INSERT, UPDATE or DELETE statement and returns the number of affected rows.
func (tx *Tx) exec(ctx context.Context, action string, stmt statement) (int64, error) {
	sqlQuery, args, err := tx.build(ctx, action, stmt)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	result, execErr := tx.tx.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	tx.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if execErr != nil {
		tx.instrumentation.LogError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		tx.instrumentation.RecordDuration(ctx, metricStatementDuration, duration, action, persistence.StatusError)
		tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeExec)

		return 0, errors.Join(ErrExecutingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		tx.instrumentation.LogError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeRowsAffected)

		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	tx.instrumentation.RecordDuration(ctx, metricStatementDuration, duration, action, persistence.StatusSuccess)

	return rowsAffected, nil
}

func (tx *Tx) build(ctx context.Context, action string, stmt statement) (string, []any, error) {
	sqlQuery, args, err := stmt.ToSQL()
	if err != nil {
		tx.instrumentation.LogError(ctx, logMsgBuildQueryFailed, err)
		tx.instrumentation.RecordError(ctx, metricDatabaseErrors, action, errorTypeBuildQuery)

		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

// closeRows safely closes database rows and logs any errors.
func (tx *Tx) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		tx.instrumentation.LogWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (tx *Tx) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	tx.instrumentation.LogDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, persistence.ToMilliseconds(duration), logAttrQuery, sqlQuery)
}
