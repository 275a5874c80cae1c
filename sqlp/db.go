package sqlp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Result is the outcome of a single statement.
// RowCount is the number of returned rows for queries, or affected rows otherwise.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	RowCount int64
}

// DB extends sqlx.DB to act as a Connection Gateway.
type DB struct {
	*sqlx.DB
	dialect *Dialect
	logger  *zap.Logger
}

type Option func(db *DB)

// WithLogger logs every statement at debug, and failures at warn.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithDialect overrides the dialect picked from the driver name.
func WithDialect(d *Dialect) Option {
	return func(db *DB) {
		if d != nil {
			db.dialect = d
		}
	}
}

// NewDB builds a new sqlp.DB for when you already have an existing sql.DB.
func NewDB(db *sql.DB, driverName string, opts ...Option) (*DB, error) {
	out := &DB{DB: sqlx.NewDb(db, driverName), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(out)
	}
	if out.dialect == nil {
		d, err := DialectFor(driverName)
		if err != nil {
			return nil, err
		}
		out.dialect = d
	}
	return out, nil
}

func Open(driverName, dataSourceName string, opts ...Option) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	out, err := NewDB(db, driverName, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return out, nil
}

// Dialect returns the dialect statements for this DB should be generated in.
func (db *DB) Dialect() *Dialect {
	return db.dialect
}

// Ping checks the store can be reached.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.DB.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Shutdown closes this DB's pool. Other DBs are unaffected.
func (db *DB) Shutdown() error {
	db.logger.Debug("shutting down", zap.String("dialect", db.dialect.Name))
	return db.DB.Close()
}

////////////////////////////////////////////////////////////////////////////////
// Standardized APIs

// Execute runs a single statement, one call in and one outcome out. It never retries.
// Statements that return rows are queried and every row is scanned into a map, the rest
// are executed and report affected rows.
func (db *DB) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	db.logger.Debug("executing statement", zap.String("query", query), zap.Int("args", len(args)))

	var res *Result
	var err error
	if returnsRows(query) {
		res, err = db.query(ctx, query, args)
	} else {
		res, err = db.exec(ctx, query, args)
	}
	if err != nil {
		err = db.wrap(query, args, err)
		db.logger.Warn("statement failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (db *DB) query(ctx context.Context, query string, args []any) (*Result, error) {
	rows, err := db.queryer(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			row[k] = db.dialect.Normalize(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	res.RowCount = int64(len(res.Rows))
	return res, nil
}

func (db *DB) exec(ctx context.Context, query string, args []any) (*Result, error) {
	sqlRes, err := db.queryer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := sqlRes.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return &Result{RowCount: affected}, nil
}

func (db *DB) wrap(query string, args []any, err error) error {
	return WrapError(db.dialect, query, args, err)
}

// returnsRows reports whether a statement produces a result set.
func returnsRows(query string) bool {
	words := keywords(query)
	if len(words) == 0 {
		return false
	}
	switch words[0] {
	case "SELECT", "WITH", "VALUES", "SHOW", "EXPLAIN", "PRAGMA":
		return true
	}
	for _, w := range words {
		if w == "RETURNING" {
			return true
		}
	}
	return false
}

// keywords returns the upper cased bare words of query. Quoted identifiers and string
// literals are skipped, so a column named "returning" is not a keyword.
func keywords(query string) []string {
	var sb strings.Builder
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			r = ' '
		case r == '"' || r == '\'' || r == '`':
			quote = r
			r = ' '
		}
		sb.WriteRune(r)
	}
	return strings.FieldsFunc(strings.ToUpper(sb.String()), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
}

////////////////////////////////////////////////////////////////////////////////
// Transactional APIs

type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

type contextKeyType string

const (
	ctxKey = contextKeyType("sqlp")
)

// RunInTx runs the callback fxn in a transaction.
// If context already has a transaction, it will use that one, and leave committing to
// whoever started it.
// You can return an error from the callback to trigger the transaction to rollback.
func (db *DB) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	// Outer transaction owns the commit.
	if db.txContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return db.wrap("BEGIN", nil, err)
	}
	defer func() {
		err := tx.Rollback()
		if err != nil && err != sql.ErrTxDone {
			// Rolled back due to error, but errored on rollback.
			db.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()
	ctx = context.WithValue(ctx, ctxKey, tx)

	if err := fn(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// queryer returns the proper queryer for context, whether a Tx or normal DB.
func (db *DB) queryer(ctx context.Context) Queryer {
	if tx := db.txContext(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// txContext returns contexts current transaction if any.
func (db *DB) txContext(ctx context.Context) *sqlx.Tx {
	if tx := ctx.Value(ctxKey); tx != nil {
		return tx.(*sqlx.Tx)
	}
	return nil
}
