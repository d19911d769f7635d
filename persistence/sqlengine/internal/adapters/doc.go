// Package adapters provide the database adapters of the SQL engine.
//
// pgxpool.Pool, sql.DB and sqlx.DB are wrapped behind one DBAdapter interface.
// Every adapter starts a transaction and executes positional-argument statements inside it,
// so the engine works the same way with any supported connection type.
package adapters
