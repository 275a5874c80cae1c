package sqlp

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// Sentinels for errors.Is checks.
var (
	// ErrConnection means the store could not be reached. Never retried.
	ErrConnection = errors.New("database connection error")

	// ErrQuery means the store rejected a statement.
	ErrQuery = errors.New("query error")

	// ErrUniqueViolation means the store rejected a statement for breaking a unique constraint.
	// Such errors also match ErrQuery.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// ConnectionError wraps a failure to reach the store.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// QueryError wraps a rejected statement with everything needed to reproduce it.
type QueryError struct {
	Query string
	Args  []any
	Err   error

	unique bool
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sql query failed: %v (query: %s, args: %v)", e.Err, e.Query, e.Args)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQuery || (e.unique && target == ErrUniqueViolation)
}

// isConnectionError reports whether err means the store is unreachable, rather than a
// statement being rejected.
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapError classifies err from running query against a store speaking dialect d.
// Errors that are already classified come back unchanged.
func WrapError(d *Dialect, query string, args []any, err error) error {
	if err == nil {
		return nil
	}
	var connErr *ConnectionError
	var qErr *QueryError
	if errors.As(err, &connErr) || errors.As(err, &qErr) {
		return err
	}
	if isConnectionError(err) {
		return &ConnectionError{Err: err}
	}
	return &QueryError{Query: query, Args: args, Err: err, unique: d != nil && d.IsUniqueViolation(err)}
}
