// Package sqlengine is the SQL backend of the persistence package.
//
// Specifications compile to goqu expressions, so one repository implementation serves
// PostgreSQL and SQLite. A Transactor wraps a pgx Pool, a sql.DB or a sqlx.DB; every
// Storage created for one of its transactions runs its statements inside that transaction.
//
// Usage examples:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	transactor, _ := sqlengine.NewTransactorFromPGXPool(pool, sqlengine.WithLogger(logger))
//
//	// SQLite through database/sql
//	db, _ := sql.Open("sqlite", "file:bruhsty.db")
//	transactor, _ := sqlengine.NewTransactorFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
//
//	uow, _ := persistence.NewUnitOfWork(transactor, func(tx *sqlengine.Tx) Repositories {
//		return Repositories{Users: sqlengine.NewStorage(tx, userMapper{})}
//	}, bus)
//
// Statements are always prepared: values travel as positional arguments, never inlined.
package sqlengine
