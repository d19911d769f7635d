package storage

import (
	"fmt"
	"time"

	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence/memengine"
)

type userMemoryMapper struct{}

func (userMemoryMapper) Table() string { return UsersTable }

func (userMemoryMapper) Fields() []string {
	return []string{user.FieldID, user.FieldEmailCount, user.FieldVerified, user.FieldCreatedAt}
}

func (userMemoryMapper) ToRow(u *user.User) (memengine.Row, error) {
	emails, err := encodeEmails(u.Emails())
	if err != nil {
		return nil, err
	}

	return memengine.Row{
		user.FieldID:         u.TelegramID(),
		user.FieldEmailCount: countEmails(u),
		user.FieldVerified:   u.Verified(),
		user.FieldCreatedAt:  utc(u.CreatedAt()),
		ColumnEmails:         emails,
	}, nil
}

func (userMemoryMapper) FromRow(row memengine.Row) (*user.User, error) {
	telegramID, ok := row[user.FieldID].(int64)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected %s %T", UsersTable, user.FieldID, row[user.FieldID])
	}

	document, _ := row[ColumnEmails].(string)
	emails, err := decodeEmails(document)
	if err != nil {
		return nil, err
	}

	createdAt, _ := row[user.FieldCreatedAt].(time.Time)

	return user.Restore(telegramID, emails, createdAt), nil
}

type subscriberMemoryMapper struct{}

func (subscriberMemoryMapper) Table() string { return SubscribersTable }

func (subscriberMemoryMapper) Fields() []string {
	return []string{
		subscription.FieldID,
		subscription.FieldEmail,
		subscription.FieldNextPayTime,
		subscription.FieldSubscribed,
		subscription.FieldLevelID,
	}
}

func (subscriberMemoryMapper) ToRow(s *subscription.Subscriber) (memengine.Row, error) {
	var levelID any
	if s.LevelID() != nil {
		levelID = *s.LevelID()
	}

	return memengine.Row{
		subscription.FieldID:          s.AggregateID(),
		subscription.FieldEmail:       s.Email(),
		subscription.FieldNextPayTime: utc(s.NextPayTime()),
		subscription.FieldSubscribed:  s.Subscribed(),
		subscription.FieldLevelID:     levelID,
	}, nil
}

func (subscriberMemoryMapper) FromRow(row memengine.Row) (*subscription.Subscriber, error) {
	id, ok := row[subscription.FieldID].(int64)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected %s %T", SubscribersTable, subscription.FieldID, row[subscription.FieldID])
	}

	email, _ := row[subscription.FieldEmail].(string)
	nextPayTime, _ := row[subscription.FieldNextPayTime].(time.Time)
	subscribed, _ := row[subscription.FieldSubscribed].(bool)

	var level *int64
	if levelID, ok := row[subscription.FieldLevelID].(int64); ok {
		level = &levelID
	}

	return subscription.Restore(id, email, level, nextPayTime, subscribed), nil
}
