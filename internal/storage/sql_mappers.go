package storage

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
)

var userColumns = map[string]string{
	user.FieldID:         ColumnTelegramID,
	user.FieldEmailCount: ColumnEmailCount,
	user.FieldVerified:   ColumnVerified,
	user.FieldCreatedAt:  ColumnCreatedAt,
}

type userSQLMapper struct{}

func (userSQLMapper) Table() string    { return UsersTable }
func (userSQLMapper) IDColumn() string { return ColumnTelegramID }

func (userSQLMapper) Columns() []string {
	return []string{ColumnTelegramID, ColumnEmailCount, ColumnVerified, ColumnEmails, ColumnCreatedAt}
}

func (userSQLMapper) ResolveField(field string) (string, bool) {
	column, ok := userColumns[field]
	return column, ok
}

func (userSQLMapper) ToRecord(u *user.User) (goqu.Record, error) {
	emails, err := encodeEmails(u.Emails())
	if err != nil {
		return nil, err
	}

	return goqu.Record{
		ColumnTelegramID: u.TelegramID(),
		ColumnEmailCount: countEmails(u),
		ColumnVerified:   u.Verified(),
		ColumnEmails:     emails,
		ColumnCreatedAt:  utc(u.CreatedAt()),
	}, nil
}

func (userSQLMapper) FromRow(scan func(dest ...any) error) (*user.User, error) {
	var (
		telegramID int64
		emailCount int64
		verified   bool
		document   string
		createdAt  time.Time
	)

	if err := scan(&telegramID, &emailCount, &verified, &document, &createdAt); err != nil {
		return nil, err
	}

	emails, err := decodeEmails(document)
	if err != nil {
		return nil, err
	}

	return user.Restore(telegramID, emails, utc(createdAt)), nil
}

var subscriberColumns = map[string]string{
	subscription.FieldID:          ColumnSubscriberID,
	subscription.FieldEmail:       ColumnSubscriberEmail,
	subscription.FieldNextPayTime: ColumnNextPayTime,
	subscription.FieldSubscribed:  ColumnSubscribed,
	subscription.FieldLevelID:     ColumnLevelID,
}

type subscriberSQLMapper struct{}

func (subscriberSQLMapper) Table() string    { return SubscribersTable }
func (subscriberSQLMapper) IDColumn() string { return ColumnSubscriberID }

func (subscriberSQLMapper) Columns() []string {
	return []string{ColumnSubscriberID, ColumnSubscriberEmail, ColumnNextPayTime, ColumnSubscribed, ColumnLevelID}
}

func (subscriberSQLMapper) ResolveField(field string) (string, bool) {
	column, ok := subscriberColumns[field]
	return column, ok
}

func (subscriberSQLMapper) ToRecord(s *subscription.Subscriber) (goqu.Record, error) {
	var levelID any
	if s.LevelID() != nil {
		levelID = *s.LevelID()
	}

	return goqu.Record{
		ColumnSubscriberID:    s.AggregateID(),
		ColumnSubscriberEmail: s.Email(),
		ColumnNextPayTime:     utc(s.NextPayTime()),
		ColumnSubscribed:      s.Subscribed(),
		ColumnLevelID:         levelID,
	}, nil
}

func (subscriberSQLMapper) FromRow(scan func(dest ...any) error) (*subscription.Subscriber, error) {
	var (
		id          int64
		email       string
		nextPayTime time.Time
		subscribed  bool
		levelID     sql.NullInt64
	)

	if err := scan(&id, &email, &nextPayTime, &subscribed, &levelID); err != nil {
		return nil, err
	}

	var level *int64
	if levelID.Valid {
		level = &levelID.Int64
	}

	return subscription.Restore(id, email, level, nextPayTime, subscribed), nil
}
