// Package service implements the use cases of the bot on top of a unit of work: managing the
// email addresses of users and mirroring the subscribers of the subscription platform.
//
// Every use case runs in its own transaction. Events recorded by the aggregates are published
// to the handlers of NewBus after the transaction committed.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/internal/user"
	"github.com/bruhsty/bruhsty/persistence"
)

const (
	logMsgUseCaseCompleted = "service: use case completed"
	logMsgUseCaseFailed    = "service: use case failed"
	logAttrUseCase         = "use_case"
	logAttrDurationMS      = "duration_ms"
	spanNamePrefix         = "service."
	metricUseCaseDuration  = "service_use_case_duration_seconds"
	metricUseCaseErrors    = "service_use_case_errors_total"
	errorTypeDomain        = "domain_error"
	errorTypeNotFound      = "not_found"
	errorTypeInternal      = "internal_error"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrNilUnitOfWork      = errors.New("nil unit of work factory supplied")
)

// UnitOfWork runs work in a transaction and commits when work succeeds.
// *storage.SQLUnitOfWork and *storage.MemoryUnitOfWork satisfy it.
type UnitOfWork interface {
	Execute(ctx context.Context, work func(ctx context.Context, repos storage.Repositories) error) error
}

// UnitOfWorkFactory creates the unit of work of one use case run.
// A unit of work is never shared between runs, so use cases may be called concurrently.
type UnitOfWorkFactory func() (UnitOfWork, error)

// Option configures a Service.
type Option func(*Service) error

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.now = now
		return nil
	}
}

// WithCodeGenerator replaces user.GenerateCode.
func WithCodeGenerator(generate func() (string, error)) Option {
	return func(s *Service) error {
		s.generateCode = generate
		return nil
	}
}

// WithInstrumentation applies persistence options to the logging, metrics and tracing of the use cases.
func WithInstrumentation(options ...persistence.Option) Option {
	return func(s *Service) error {
		for _, option := range options {
			if err := option(&s.instrumentation); err != nil {
				return err
			}
		}

		return nil
	}
}

// WithChannels sets the channels granted by subscription levels.
func WithChannels(channels ...Channel) Option {
	return func(s *Service) error {
		s.channels = append([]Channel(nil), channels...)
		return nil
	}
}

// Service implements the use cases.
type Service struct {
	newUnitOfWork   UnitOfWorkFactory
	channels        []Channel
	now             func() time.Time
	generateCode    func() (string, error)
	instrumentation persistence.Instrumentation
}

// New creates a Service running each use case in a unit of work from newUnitOfWork.
func New(newUnitOfWork UnitOfWorkFactory, options ...Option) (*Service, error) {
	if newUnitOfWork == nil {
		return nil, ErrNilUnitOfWork
	}

	s := &Service{
		newUnitOfWork: newUnitOfWork,
		now:           time.Now,
		generateCode:  user.GenerateCode,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// run executes work in a fresh unit of work and records the outcome of useCase.
func (s *Service) run(ctx context.Context, useCase string, work func(ctx context.Context, repos storage.Repositories) error) error {
	ctx, span := s.instrumentation.StartSpan(ctx, spanNamePrefix+useCase, map[string]string{persistence.LabelOperation: useCase})
	start := time.Now()

	uow, err := s.newUnitOfWork()
	if err == nil {
		err = uow.Execute(ctx, work)
	}

	duration := time.Since(start)
	if err != nil {
		errorType := classify(err)
		s.instrumentation.LogError(ctx, logMsgUseCaseFailed, err, logAttrUseCase, useCase, logAttrDurationMS, persistence.ToMilliseconds(duration))
		s.instrumentation.RecordDuration(ctx, metricUseCaseDuration, duration, useCase, persistence.StatusError)
		s.instrumentation.RecordError(ctx, metricUseCaseErrors, useCase, errorType)
		s.instrumentation.FinishSpan(span, persistence.StatusError, map[string]string{persistence.LabelErrorType: errorType})

		return err
	}

	s.instrumentation.LogInfo(ctx, logMsgUseCaseCompleted, logAttrUseCase, useCase, logAttrDurationMS, persistence.ToMilliseconds(duration))
	s.instrumentation.RecordDuration(ctx, metricUseCaseDuration, duration, useCase, persistence.StatusSuccess)
	s.instrumentation.FinishSpan(span, persistence.StatusSuccess, nil)

	return nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrSubscriberNotFound), errors.Is(err, ErrChannelNotFound):
		return errorTypeNotFound
	case errors.Is(err, user.ErrEmailNotLinked),
		errors.Is(err, user.ErrInvalidCode),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrCodeAlreadyReplaced):
		return errorTypeDomain
	default:
		return errorTypeInternal
	}
}
