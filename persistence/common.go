package persistence

import (
	"errors"
)

var (
	ErrUnknownField             = errors.New("unknown field")
	ErrUnsupportedSpecification = errors.New("unsupported specification")
	ErrNoRowsAffected           = errors.New("no rows affected")
	ErrNotFound                 = errors.New("aggregate not found")
	ErrAlreadyOpen              = errors.New("unit of work is already open")
	ErrNotOpen                  = errors.New("unit of work is not open")
	ErrTransactionFinished      = errors.New("transaction was already committed or rolled back")
	ErrCommitFailed             = errors.New("committing the transaction failed")
	ErrRollbackFailed           = errors.New("rolling back the transaction failed")
	ErrPublishingEventsFailed   = errors.New("publishing domain events failed")
	ErrNilTransactor            = errors.New("nil transactor supplied")
	ErrNilRepositoryFactory     = errors.New("nil repository factory supplied")
	ErrNilPublisher             = errors.New("nil publisher supplied")
)
