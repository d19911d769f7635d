// Package persistence provides the backend-agnostic core of the storage layer:
// a query specification algebra, aggregates with pending domain events,
// repositories that track the aggregates they touch, and a unit of work that
// commits a transaction and then publishes the captured events.
//
// Specifications are immutable trees built from typed field handles:
//
//	verified := persistence.NewField[bool]("verified")
//	count := persistence.NewField[int]("email_count")
//
//	spec := verified.Eq(true).And(count.Gt(1)).Or(count.Eq(0).Not())
//
// The tree is compiled by a backend (see the sqlengine and memengine packages)
// through Compile, which is the single place where the variants are interpreted.
//
// A unit of work binds a set of repositories to one transaction:
//
//	uow, err := persistence.NewUnitOfWork(transactor, newRepositories, bus)
//	if err != nil {
//		// handle error
//	}
//
//	err = uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
//		user, err := repos.Users.Get(ctx, id)
//		if err != nil {
//			return err
//		}
//
//		user.VerifyEmail(email, code, now)
//
//		return repos.Users.Save(ctx, user)
//	})
//
// Events are published only after the transaction committed, ordered by the
// time they occurred.
package persistence
