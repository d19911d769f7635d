// Package storage maps the user and subscriber aggregates to tables, for the SQL engine and
// for the in-memory engine, and creates the schema.
//
// Repositories groups the repositories one unit of work binds to its transaction:
//
//	uow, err := storage.NewSQLUnitOfWork(transactor, bus)
//	err = uow.Execute(ctx, func(ctx context.Context, repos storage.Repositories) error {
//		u, err := repos.Users.Get(ctx, telegramID)
//		...
//	})
package storage
