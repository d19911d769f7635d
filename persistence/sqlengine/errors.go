package sqlengine

import "errors"

var (
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrUnsupportedDialect        = errors.New("unsupported sql dialect")
	ErrBeginTransactionFailed    = errors.New("beginning the database transaction failed")
	ErrBuildingQueryFailed       = errors.New("building the sql statement failed")
	ErrQueryingFailed            = errors.New("querying the database failed")
	ErrScanningDBRowFailed       = errors.New("scanning the database row failed")
	ErrExecutingFailed           = errors.New("executing the sql statement failed")
	ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")
	ErrMappingAggregateFailed    = errors.New("mapping the aggregate failed")
)
