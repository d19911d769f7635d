package storage

import (
	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/memengine"
	"github.com/bruhsty/bruhsty/persistence/sqlengine"
)

// UserRepository stores users by Telegram id.
type UserRepository = persistence.Repository[int64, *user.User]

// SubscriberRepository stores subscribers by platform id.
type SubscriberRepository = persistence.Repository[int64, *subscription.Subscriber]

// Repositories is the repository set of one unit of work.
type Repositories struct {
	Users       UserRepository
	Subscribers SubscriberRepository
}

// EventCollectors returns every repository of the set.
func (r Repositories) EventCollectors() []persistence.EventCollector {
	return []persistence.EventCollector{r.Users, r.Subscribers}
}

// NewSQLRepositories binds SQL repositories to tx.
func NewSQLRepositories(tx *sqlengine.Tx) Repositories {
	return Repositories{
		Users:       sqlengine.NewStorage[int64, *user.User](tx, userSQLMapper{}),
		Subscribers: sqlengine.NewStorage[int64, *subscription.Subscriber](tx, subscriberSQLMapper{}),
	}
}

// NewMemoryRepositories binds in-memory repositories to tx.
func NewMemoryRepositories(tx *memengine.Tx) Repositories {
	return Repositories{
		Users:       memengine.NewStorage[int64, *user.User](tx, userMemoryMapper{}),
		Subscribers: memengine.NewStorage[int64, *subscription.Subscriber](tx, subscriberMemoryMapper{}),
	}
}

// SQLUnitOfWork is a unit of work over a SQL database.
type SQLUnitOfWork = persistence.UnitOfWork[*sqlengine.Tx, Repositories]

// MemoryUnitOfWork is a unit of work over an in-memory store.
type MemoryUnitOfWork = persistence.UnitOfWork[*memengine.Tx, Repositories]

// NewSQLUnitOfWork creates a unit of work whose transactions come from transactor.
func NewSQLUnitOfWork(transactor *sqlengine.Transactor, publisher persistence.Publisher, options ...persistence.Option) (*SQLUnitOfWork, error) {
	if transactor == nil {
		return nil, persistence.ErrNilTransactor
	}

	return persistence.NewUnitOfWork[*sqlengine.Tx, Repositories](transactor, NewSQLRepositories, publisher, options...)
}

// NewMemoryUnitOfWork creates a unit of work whose transactions come from store.
func NewMemoryUnitOfWork(store *memengine.Store, publisher persistence.Publisher, options ...persistence.Option) (*MemoryUnitOfWork, error) {
	if store == nil {
		return nil, persistence.ErrNilTransactor
	}

	return persistence.NewUnitOfWork[*memengine.Tx, Repositories](store, NewMemoryRepositories, publisher, options...)
}
