package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence/sqlengine"
)

// Table and column names.
const (
	UsersTable            = "users"
	ColumnTelegramID      = "telegram_id"
	ColumnEmailCount      = "email_count"
	ColumnVerified        = "verified"
	ColumnEmails          = "emails"
	ColumnCreatedAt       = "created_at"
	SubscribersTable      = "subscribers"
	ColumnSubscriberID    = "id"
	ColumnSubscriberEmail = "email"
	ColumnNextPayTime     = "next_pay_time"
	ColumnSubscribed      = "subscribed"
	ColumnLevelID         = "level_id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id INTEGER PRIMARY KEY,
		email_count INTEGER NOT NULL,
		verified BOOLEAN NOT NULL,
		emails TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		next_pay_time TIMESTAMP NOT NULL,
		subscribed BOOLEAN NOT NULL,
		level_id INTEGER NULL
	)`,
	`CREATE INDEX IF NOT EXISTS subscribers_next_pay_time_idx ON subscribers (next_pay_time)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id BIGINT PRIMARY KEY,
		email_count BIGINT NOT NULL,
		verified BOOLEAN NOT NULL,
		emails TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id BIGINT PRIMARY KEY,
		email TEXT NOT NULL,
		next_pay_time TIMESTAMPTZ NOT NULL,
		subscribed BOOLEAN NOT NULL,
		level_id BIGINT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS subscribers_next_pay_time_idx ON subscribers (next_pay_time)`,
}

// Schema returns the statements creating the tables on dialect.
func Schema(dialect sqlengine.Dialect) ([]string, error) {
	switch dialect {
	case sqlengine.DialectPostgres:
		return postgresSchema, nil
	case sqlengine.DialectSQLite:
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("%w: %q", sqlengine.ErrUnsupportedDialect, dialect)
	}
}

// Executor runs a statement. *sql.DB, *sql.Tx and *sqlx.DB satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrate creates the missing tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, db Executor, dialect sqlengine.Dialect) error {
	statements, err := Schema(dialect)
	if err != nil {
		return err
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migrating schema failed: %w", err)
		}
	}

	return nil
}

func encodeEmails(emails []*user.Email) (string, error) {
	if emails == nil {
		emails = []*user.Email{}
	}

	document, err := json.MarshalToString(emails)
	if err != nil {
		return "", fmt.Errorf("encoding emails failed: %w", err)
	}

	return document, nil
}

func decodeEmails(document string) ([]*user.Email, error) {
	var emails []*user.Email
	if err := json.UnmarshalFromString(document, &emails); err != nil {
		return nil, fmt.Errorf("decoding emails failed: %w", err)
	}

	return emails, nil
}

func countEmails(u *user.User) int64 {
	return int64(len(u.Emails()))
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
