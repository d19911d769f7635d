package config

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

// DSN returns the PostgreSQL connection URL.
func (d Database) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}

	return dsn.String()
}

// SQLiteDSN returns the modernc connection string for Path.
func (d Database) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite", d.Path)
}

// PGXPoolConfig creates a pgxpool.Config for the database.
func (d Database) PGXPoolConfig() (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(d.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing pgx pool config failed: %w", err)
	}

	dbConfig.MaxConns = d.MaxConns
	dbConfig.MinConns = d.MinConns
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool connects a pgx pool to the database.
func (d Database) OpenPGXPool(ctx context.Context) (*pgxpool.Pool, error) {
	dbConfig, err := d.PGXPoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool failed: %w", err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database failed: %w", pingErr)
	}

	return pool, nil
}

// OpenSQLDB opens a *sql.DB on the postgres driver of lib/pq.
func (d Database) OpenSQLDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database failed: %w", err)
	}

	d.configurePool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database failed: %w", pingErr)
	}

	return db, nil
}

// OpenSQLX opens a *sqlx.DB on the postgres driver of lib/pq.
func (d Database) OpenSQLX(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database failed: %w", err)
	}

	d.configurePool(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database failed: %w", pingErr)
	}

	return db, nil
}

// OpenSQLite opens the SQLite database file at Path.
// SQLite serializes writers, so the pool holds a single connection.
func (d Database) OpenSQLite(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", d.SQLiteDSN())
	if err != nil {
		return nil, fmt.Errorf("opening database failed: %w", err)
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database failed: %w", pingErr)
	}

	return db, nil
}

func (d Database) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(int(d.MaxConns))
	db.SetMaxIdleConns(int(d.MinConns))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
