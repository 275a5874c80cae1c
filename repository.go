package entityp

import (
	"context"
	"fmt"

	"github.com/greghart/entityp/sqlp"
	"go.uber.org/zap"
)

// Gateway runs single statements against a store. *sqlp.DB is the standard implementation.
type Gateway interface {
	Execute(ctx context.Context, query string, args ...any) (*sqlp.Result, error)
}

// dialecter is implemented by gateways that know their own dialect.
type dialecter interface {
	Dialect() *sqlp.Dialect
}

// Repository persists the records of one entity.
//
// A Repository holds no mutable state once built, so it is safe for concurrent use as
// long as its Gateway is.
type Repository struct {
	gateway Gateway
	def     Definition
	builder *Builder
	mapper  *Mapper
	logger  *zap.Logger
}

type options struct {
	dialect         *sqlp.Dialect
	logger          *zap.Logger
	literalIdentity bool
}

type Option func(o *options)

// WithDialect picks the dialect statements are generated in. Defaults to the gateway's own
// dialect if it has one, otherwise Postgres.
func WithDialect(d *sqlp.Dialect) Option {
	return func(o *options) {
		o.dialect = d
	}
}

// WithLogger logs failed operations at warn, and executed statements at debug.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLiteralIdentity embeds integer identities into statement text rather than binding them.
func WithLiteralIdentity() Option {
	return func(o *options) {
		o.literalIdentity = true
	}
}

// New builds a repository for def, which must be valid.
func New(gateway Gateway, def Definition, opts ...Option) (*Repository, error) {
	if gateway == nil {
		return nil, invalid("gateway", "must not be nil")
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition of %q: %w", def.Name, err)
	}
	o := options{logger: zap.NewNop()}
	if d, ok := gateway.(dialecter); ok {
		o.dialect = d.Dialect()
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository{
		gateway: gateway,
		def:     def,
		builder: NewBuilder(def, o.dialect).LiteralIdentity(o.literalIdentity),
		mapper:  NewMapper(def),
		logger:  o.logger.With(zap.String("entity", def.Name)),
	}, nil
}

func (r *Repository) Definition() Definition {
	return r.def
}

// Builder returns the statement builder of r. Its LiteralIdentity returns a copy, so r is
// unaffected.
func (r *Repository) Builder() *Builder {
	return r.builder
}

// Save creates rec if it has no identity, otherwise updates it.
func (r *Repository) Save(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, r.fail("save", invalid("record", "must not be nil"))
	}
	if rec.HasID() {
		return r.Update(ctx, rec)
	}
	return r.Create(ctx, rec)
}

// Create inserts rec and returns a copy carrying the assigned identity. rec is not modified.
func (r *Repository) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, r.fail("create", invalid("record", "must not be nil"))
	}
	out := r.mapper.Tag(rec)
	stmt, err := r.builder.Insert(out)
	if err != nil {
		return nil, r.fail("create", err)
	}
	res, err := r.execute(ctx, "create", stmt)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, r.fail("create", &EmptyResultError{Op: "create", Entity: r.def.Name})
	}
	out.ID = res.Rows[0][IDField]
	return out, nil
}

// Update writes rec's declared fields to the row with its identity and returns that row as
// stored. Fails with an EmptyResultError when no row has the identity.
func (r *Repository) Update(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, r.fail("update", invalid("record", "must not be nil"))
	}
	if !rec.HasID() {
		return nil, r.fail("update", &EmptyResultError{Op: "update", Entity: r.def.Name})
	}
	stmt, err := r.builder.Update(r.mapper.Tag(rec))
	if err != nil {
		return nil, r.fail("update", err)
	}
	res, err := r.execute(ctx, "update", stmt)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, r.fail("update", &EmptyResultError{Op: "update", Entity: r.def.Name, ID: rec.ID})
	}
	return r.mapper.FromRow(res.Rows[0]), nil
}

// Load returns the first record matching filter, or nil if none do. A nil or empty filter
// matches every record.
func (r *Repository) Load(ctx context.Context, filter *Record) (*Record, error) {
	recs, err := r.List(ctx, Query{Filter: filter})
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// Find returns the record with the given identity, or nil if there is none.
func (r *Repository) Find(ctx context.Context, id any) (*Record, error) {
	filter := &Record{ID: id}
	if !filter.HasID() {
		return nil, r.fail("find", invalid(IDField, "find of %s requires an identity", r.def.Name))
	}
	return r.Load(ctx, filter)
}

// List returns every record matching q, nil if none do.
func (r *Repository) List(ctx context.Context, q Query) ([]*Record, error) {
	stmt, err := r.builder.Select(q)
	if err != nil {
		return nil, r.fail("list", err)
	}
	res, err := r.execute(ctx, "list", stmt)
	if err != nil {
		return nil, err
	}
	return r.mapper.FromResult(res), nil
}

// Count returns the number of records matching filter.
func (r *Repository) Count(ctx context.Context, filter *Record) (int64, error) {
	stmt, err := r.builder.Count(filter)
	if err != nil {
		return 0, r.fail("count", err)
	}
	res, err := r.execute(ctx, "count", stmt)
	if err != nil {
		return 0, err
	}
	n, err := count(res)
	if err != nil {
		return 0, r.fail("count", err)
	}
	return n, nil
}

// Delete removes the records matching filter and returns how many went. A nil or empty
// filter removes every record.
func (r *Repository) Delete(ctx context.Context, filter *Record) (int64, error) {
	stmt, err := r.builder.Delete(filter)
	if err != nil {
		return 0, r.fail("delete", err)
	}
	res, err := r.execute(ctx, "delete", stmt)
	if err != nil {
		return 0, err
	}
	return res.RowCount, nil
}

// CreateTable creates the entity's table.
func (r *Repository) CreateTable(ctx context.Context) error {
	stmt, err := r.builder.CreateTable()
	if err != nil {
		return r.fail("create table", err)
	}
	_, err = r.execute(ctx, "create table", stmt)
	return err
}

// DropTable drops the entity's table if it exists.
func (r *Repository) DropTable(ctx context.Context) error {
	stmt, err := r.builder.DropTable()
	if err != nil {
		return r.fail("drop table", err)
	}
	_, err = r.execute(ctx, "drop table", stmt)
	return err
}

////////////////////////////////////////////////////////////////////////////////

// execute runs stmt, making sure failures carry the statement whatever the gateway.
func (r *Repository) execute(ctx context.Context, op string, stmt Statement) (*sqlp.Result, error) {
	r.logger.Debug("executing", zap.String("op", op), zap.String("query", stmt.Query))
	res, err := r.gateway.Execute(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return nil, r.fail(op, sqlp.WrapError(r.builder.Dialect(), stmt.Query, stmt.Args, err))
	}
	if res == nil {
		res = &sqlp.Result{}
	}
	return res, nil
}

// fail logs err at warn and prefixes it with op. Every failure of an operation goes through
// here, whether the builder rejected its input or the gateway failed.
func (r *Repository) fail(op string, err error) error {
	r.logger.Warn("operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("failed to %s %s: %w", op, r.def.Name, err)
}
