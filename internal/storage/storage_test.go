package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/internal/subscription"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/memengine"
	"github.com/bruhsty/bruhsty/persistence/sqlengine"
	"github.com/bruhsty/bruhsty/testutil/helper"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

type unitOfWork interface {
	Execute(ctx context.Context, work func(ctx context.Context, repos storage.Repositories) error) error
}

func noPublisher() persistence.Publisher {
	return persistence.PublisherFunc(func(context.Context, ...persistence.DomainEvent) error { return nil })
}

func givenSQLiteUnitOfWork(t *testing.T, publisher persistence.Publisher) unitOfWork {
	t.Helper()

	db := helper.OpenSQLiteDB(t)
	require.NoError(t, storage.Migrate(context.Background(), db, sqlengine.DialectSQLite))

	transactor, err := sqlengine.NewTransactorFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
	require.NoError(t, err)

	uow, err := storage.NewSQLUnitOfWork(transactor, publisher)
	require.NoError(t, err)

	return uow
}

func givenMemoryUnitOfWork(t *testing.T, publisher persistence.Publisher) unitOfWork {
	t.Helper()

	store, err := memengine.NewStore()
	require.NoError(t, err)

	uow, err := storage.NewMemoryUnitOfWork(store, publisher)
	require.NoError(t, err)

	return uow
}

var engines = map[string]func(t *testing.T, publisher persistence.Publisher) unitOfWork{
	"sqlite": givenSQLiteUnitOfWork,
	"memory": givenMemoryUnitOfWork,
}

func level(id int64) *int64 {
	return &id
}

func Test_Users_Round_Trip_Emails_And_Codes(t *testing.T) {
	for name, givenUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			uow := givenUnitOfWork(t, noPublisher())

			u := user.New(100, now)
			require.NoError(t, u.AddEmail("reader@example.com", "1234", now))
			require.NoError(t, u.AddEmail("second@example.com", "5678", now))
			require.NoError(t, u.VerifyEmail("reader@example.com", "1234", now.Add(time.Minute)))

			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				return repos.Users.Add(ctx, u)
			}))

			var loaded *user.User
			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				var err error
				loaded, err = repos.Users.Get(ctx, 100)
				return err
			}))

			assert.Equal(t, int64(100), loaded.TelegramID())
			assert.True(t, loaded.CreatedAt().Equal(now))
			assert.True(t, loaded.Verified())
			require.Len(t, loaded.Emails(), 2)

			email, linked := loaded.Email("reader@example.com")
			require.True(t, linked)
			require.Len(t, email.VerificationCodes, 1)
			assert.True(t, email.Verified())
			assert.Equal(t, "1234", email.VerificationCodes[0].Value)

			second, linked := loaded.Email("second@example.com")
			require.True(t, linked)
			active, ok := second.ActiveCode(now)
			require.True(t, ok)
			assert.Equal(t, "5678", active.Value)
			assert.Zero(t, loaded.PendingEvents())
		})
	}
}

func Test_Users_Find_By_Verified_And_Email_Count(t *testing.T) {
	for name, givenUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			uow := givenUnitOfWork(t, noPublisher())

			verified := user.New(1, now)
			require.NoError(t, verified.AddEmail("a@example.com", "1111", now))
			require.NoError(t, verified.VerifyEmail("a@example.com", "1111", now))

			unverified := user.New(2, now)
			require.NoError(t, unverified.AddEmail("b@example.com", "2222", now))

			empty := user.New(3, now)

			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				for _, u := range []*user.User{verified, unverified, empty} {
					if err := repos.Users.Add(ctx, u); err != nil {
						return err
					}
				}
				return nil
			}))

			var (
				verifiedIDs   []int64
				unverifiedIDs []int64
			)
			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				found, err := repos.Users.Find(ctx, user.Verified.Eq(true))
				if err != nil {
					return err
				}
				for _, u := range found {
					verifiedIDs = append(verifiedIDs, u.TelegramID())
				}

				found, err = repos.Users.Find(ctx, user.Verified.Eq(true).Not().And(user.EmailCount.Gt(0)))
				if err != nil {
					return err
				}
				for _, u := range found {
					unverifiedIDs = append(unverifiedIDs, u.TelegramID())
				}

				return nil
			}))

			assert.Equal(t, []int64{1}, verifiedIDs)
			assert.Equal(t, []int64{2}, unverifiedIDs)
		})
	}
}

func Test_Subscribers_Bulk_Update_Overdue(t *testing.T) {
	for name, givenUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			uow := givenUnitOfWork(t, noPublisher())

			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				subscribers := []*subscription.Subscriber{
					subscription.Restore(1, "a@example.com", level(1), now.Add(-time.Hour), true),
					subscription.Restore(2, "b@example.com", level(2), now.Add(time.Hour), true),
					subscription.Restore(3, "c@example.com", nil, now.Add(-time.Hour), false),
				}
				for _, s := range subscribers {
					if err := repos.Subscribers.Add(ctx, s); err != nil {
						return err
					}
				}
				return nil
			}))

			var affected int64
			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				var err error
				affected, err = repos.Subscribers.Update(ctx,
					subscription.NextPayTime.Lt(now).And(subscription.Subscribed.Eq(true)),
					persistence.Values{subscription.FieldSubscribed: false})
				return err
			}))
			assert.Equal(t, int64(1), affected)

			var (
				active   []int64
				noLevel  []int64
				levelTwo []int64
			)
			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				found, err := repos.Subscribers.Find(ctx, subscription.Subscribed.Eq(true))
				if err != nil {
					return err
				}
				active = subscriberIDs(found)

				found, err = repos.Subscribers.Find(ctx, subscription.LevelID.IsNull())
				if err != nil {
					return err
				}
				noLevel = subscriberIDs(found)

				found, err = repos.Subscribers.Find(ctx, subscription.LevelID.Eq(2))
				if err != nil {
					return err
				}
				levelTwo = subscriberIDs(found)

				return nil
			}))

			assert.Equal(t, []int64{2}, active)
			assert.Equal(t, []int64{3}, noLevel)
			assert.Equal(t, []int64{2}, levelTwo)
		})
	}
}

func Test_Subscribers_Save_Publishes_Events_After_Commit(t *testing.T) {
	for name, givenUnitOfWork := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var published []string
			uow := givenUnitOfWork(t, persistence.PublisherFunc(func(_ context.Context, events ...persistence.DomainEvent) error {
				for _, event := range events {
					published = append(published, event.IsEventType())
				}
				return nil
			}))

			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				return repos.Subscribers.Add(ctx, subscription.Register(9, "fan@example.com", level(1), now, true, now))
			}))

			require.NoError(t, uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
				s, err := repos.Subscribers.Get(ctx, 9)
				if err != nil {
					return err
				}
				s.Expire(now.Add(time.Minute))
				return repos.Subscribers.Save(ctx, s)
			}))

			assert.Equal(t, []string{
				subscription.SubscriberRegisteredEventType,
				subscription.SubscriptionExpiredEventType,
			}, published)
		})
	}
}

func Test_Migrate_Is_Repeatable(t *testing.T) {
	db := helper.OpenSQLiteDB(t)

	require.NoError(t, storage.Migrate(context.Background(), db, sqlengine.DialectSQLite))
	assert.NoError(t, storage.Migrate(context.Background(), db, sqlengine.DialectSQLite))
}

func Test_Schema_Fails_When_Dialect_Is_Unsupported(t *testing.T) {
	_, err := storage.Schema(sqlengine.Dialect("oracle"))

	assert.ErrorIs(t, err, sqlengine.ErrUnsupportedDialect)
}

func subscriberIDs(subscribers []*subscription.Subscriber) []int64 {
	ids := make([]int64, 0, len(subscribers))
	for _, s := range subscribers {
		ids = append(ids, s.AggregateID())
	}

	return ids
}
