package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"
)

const (
	logMsgBeginFailed      = "unit of work: begin failed"
	logMsgCommitFailed     = "unit of work: commit failed"
	logMsgRollbackFailed   = "unit of work: rollback failed"
	logMsgPublishFailed    = "unit of work: publishing events failed"
	logMsgCommitted        = "unit of work: committed"
	logMsgRolledBack       = "unit of work: rolled back"
	logAttrEventCount      = "event_count"
	logAttrDurationMS      = "duration_ms"
	spanNameCommit         = "unit_of_work.commit"
	spanAttrEventCount     = "event_count"
	operationBegin         = "begin"
	operationCommit        = "commit"
	operationRollback      = "rollback"
	operationPublish       = "publish"
	metricCommitDuration   = "unit_of_work_commit_duration_seconds"
	metricEventsPublished  = "unit_of_work_events_published"
	metricUnitOfWorkErrors = "unit_of_work_errors_total"
	errorTypeBegin         = "begin_failed"
	errorTypeCommit        = "commit_failed"
	errorTypeRollback      = "rollback_failed"
	errorTypePublish       = "publish_failed"
)

// Tx is a transaction handle produced by a Transactor.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transactor starts transactions of type T.
type Transactor[T Tx] interface {
	Begin(ctx context.Context) (T, error)
}

// Publisher receives the events of a committed unit of work.
type Publisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, events ...DomainEvent) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, events ...DomainEvent) error {
	return f(ctx, events...)
}

// RepositorySet is the group of repositories a unit of work binds to its transaction.
type RepositorySet interface {
	EventCollectors() []EventCollector
}

// State is the lifecycle state of a UnitOfWork.
type State int

const (
	StateClosed State = iota
	StateOpen
)

// String returns "closed" or "open".
func (s State) String() string {
	if s == StateOpen {
		return "open"
	}

	return "closed"
}

// UnitOfWork scopes a transaction and the repositories bound to it.
//
// The lifecycle is Begin, any number of repository operations, an optional Commit or Rollback,
// and End. End rolls back when nothing was committed. One instance serves one scope at a time
// and must not be shared between goroutines; use one instance per concurrent operation.
type UnitOfWork[T Tx, R RepositorySet] struct {
	transactor      Transactor[T]
	newRepositories func(tx T) R
	publisher       Publisher
	instrumentation Instrumentation

	state        State
	tx           T
	repositories R
	finished     bool
}

// NewUnitOfWork creates a closed UnitOfWork.
// newRepositories builds the repository set for every transaction the transactor starts.
func NewUnitOfWork[T Tx, R RepositorySet](
	transactor Transactor[T],
	newRepositories func(tx T) R,
	publisher Publisher,
	options ...Option,
) (*UnitOfWork[T, R], error) {

	if transactor == nil {
		return nil, ErrNilTransactor
	}

	if newRepositories == nil {
		return nil, ErrNilRepositoryFactory
	}

	if publisher == nil {
		return nil, ErrNilPublisher
	}

	instrumentation, err := NewInstrumentation(options...)
	if err != nil {
		return nil, err
	}

	return &UnitOfWork[T, R]{
		transactor:      transactor,
		newRepositories: newRepositories,
		publisher:       publisher,
		instrumentation: instrumentation,
	}, nil
}

// State returns the current lifecycle state.
func (u *UnitOfWork[T, R]) State() State {
	return u.state
}

// Begin opens the scope: it starts a transaction and binds a fresh repository set to it.
func (u *UnitOfWork[T, R]) Begin(ctx context.Context) error {
	if u.state == StateOpen {
		return ErrAlreadyOpen
	}

	tx, err := u.transactor.Begin(ctx)
	if err != nil {
		u.instrumentation.LogError(ctx, logMsgBeginFailed, err)
		u.instrumentation.RecordError(ctx, metricUnitOfWorkErrors, operationBegin, errorTypeBegin)

		return err
	}

	u.tx = tx
	u.repositories = u.newRepositories(tx)
	u.finished = false
	u.state = StateOpen

	return nil
}

// Repositories returns the repository set bound to the open transaction.
func (u *UnitOfWork[T, R]) Repositories() (R, error) {
	if u.state != StateOpen {
		var empty R
		return empty, ErrNotOpen
	}

	return u.repositories, nil
}

// Commit commits the transaction, then publishes the pending events of every aggregate
// the repositories tracked, ordered by the time the events occurred.
//
// Publication happens after the data is durable. When a handler fails, Commit returns
// ErrPublishingEventsFailed and the committed data stays in place; there is no outbox.
func (u *UnitOfWork[T, R]) Commit(ctx context.Context) error {
	if u.state != StateOpen {
		return ErrNotOpen
	}

	if u.finished {
		return ErrTransactionFinished
	}

	ctx, span := u.instrumentation.StartSpan(ctx, spanNameCommit, map[string]string{LabelOperation: operationCommit})
	start := time.Now()

	u.finished = true

	if err := u.tx.Commit(ctx); err != nil {
		duration := time.Since(start)
		u.instrumentation.LogError(ctx, logMsgCommitFailed, err, logAttrDurationMS, ToMilliseconds(duration))
		u.instrumentation.RecordDuration(ctx, metricCommitDuration, duration, operationCommit, StatusError)
		u.instrumentation.RecordError(ctx, metricUnitOfWorkErrors, operationCommit, errorTypeCommit)
		u.instrumentation.FinishSpan(span, StatusError, map[string]string{LabelErrorType: errorTypeCommit})

		return errors.Join(ErrCommitFailed, err)
	}

	events := u.collectEvents()
	SortByOccurrence(events)

	if len(events) > 0 {
		if err := u.publisher.Publish(ctx, events...); err != nil {
			duration := time.Since(start)
			u.instrumentation.LogError(ctx, logMsgPublishFailed, err, logAttrEventCount, len(events))
			u.instrumentation.RecordDuration(ctx, metricCommitDuration, duration, operationCommit, StatusError)
			u.instrumentation.RecordError(ctx, metricUnitOfWorkErrors, operationPublish, errorTypePublish)
			u.instrumentation.FinishSpan(span, StatusError, map[string]string{LabelErrorType: errorTypePublish})

			return errors.Join(ErrPublishingEventsFailed, err)
		}
	}

	duration := time.Since(start)
	u.instrumentation.LogInfo(ctx, logMsgCommitted, logAttrEventCount, len(events), logAttrDurationMS, ToMilliseconds(duration))
	u.instrumentation.RecordDuration(ctx, metricCommitDuration, duration, operationCommit, StatusSuccess)
	u.instrumentation.RecordValue(ctx, metricEventsPublished, float64(len(events)), operationPublish, StatusSuccess)
	u.instrumentation.FinishSpan(span, StatusSuccess, map[string]string{spanAttrEventCount: strconv.Itoa(len(events))})

	return nil
}

// Rollback discards the changes of the open transaction. Pending events are dropped, nothing is published.
// Rolling back an already committed or rolled back transaction does nothing.
func (u *UnitOfWork[T, R]) Rollback(ctx context.Context) error {
	if u.state != StateOpen {
		return ErrNotOpen
	}

	if u.finished {
		return nil
	}

	u.finished = true
	dropped := len(u.collectEvents())

	if err := u.tx.Rollback(ctx); err != nil {
		u.instrumentation.LogError(ctx, logMsgRollbackFailed, err)
		u.instrumentation.RecordError(ctx, metricUnitOfWorkErrors, operationRollback, errorTypeRollback)

		return errors.Join(ErrRollbackFailed, err)
	}

	u.instrumentation.LogDebug(ctx, logMsgRolledBack, logAttrEventCount, dropped)

	return nil
}

// End closes the scope. Without a prior Commit the transaction is rolled back.
// The scope is closed even when that rollback fails.
func (u *UnitOfWork[T, R]) End(ctx context.Context) error {
	if u.state != StateOpen {
		return ErrNotOpen
	}

	var rollbackErr error
	if !u.finished {
		rollbackErr = u.Rollback(ctx)
	}

	var emptyTx T
	var emptyRepositories R

	u.tx = emptyTx
	u.repositories = emptyRepositories
	u.finished = false
	u.state = StateClosed

	return rollbackErr
}

// Execute runs work inside a fresh scope and commits when work succeeds.
// The scope is always ended.
func (u *UnitOfWork[T, R]) Execute(ctx context.Context, work func(ctx context.Context, repositories R) error) (err error) {
	if beginErr := u.Begin(ctx); beginErr != nil {
		return beginErr
	}

	defer func() {
		if endErr := u.End(ctx); endErr != nil {
			err = errors.Join(err, endErr)
		}
	}()

	if workErr := work(ctx, u.repositories); workErr != nil {
		return workErr
	}

	return u.Commit(ctx)
}

func (u *UnitOfWork[T, R]) collectEvents() DomainEvents {
	var events DomainEvents

	for _, collector := range u.repositories.EventCollectors() {
		events = append(events, collector.CollectEvents()...)
	}

	return events
}
