package entityp

import (
	"fmt"
	"strings"

	"github.com/greghart/entityp/queryp"
	"github.com/greghart/entityp/sqlp"
)

// Statement is SQL text and its bound values.
type Statement struct {
	Query string
	Args  []any
}

func (s Statement) String() string {
	return s.Query
}

// Builder generates the statements of one entity in one dialect.
// Every identifier is quoted, and every value is bound, except literal identities when
// enabled.
type Builder struct {
	def             Definition
	dialect         *sqlp.Dialect
	mapper          *Mapper
	literalIdentity bool
}

// NewBuilder defaults to the Postgres dialect.
func NewBuilder(def Definition, dialect *sqlp.Dialect) *Builder {
	if dialect == nil {
		dialect = sqlp.Postgres
	}
	return &Builder{def: def, dialect: dialect, mapper: NewMapper(def)}
}

// LiteralIdentity returns a copy of b that embeds identities into statement text instead
// of binding them. Only integer identities are accepted then. b is not modified.
func (b *Builder) LiteralIdentity(enabled bool) *Builder {
	out := *b
	out.literalIdentity = enabled
	return &out
}

func (b *Builder) Dialect() *sqlp.Dialect {
	return b.dialect
}

// Insert writes the declared fields of rec and returns the assigned identity.
func (b *Builder) Insert(rec *Record) (Statement, error) {
	if rec == nil {
		return Statement{}, invalid("record", "must not be nil")
	}
	args := b.args()
	p := b.mapper.Prepare(args, rec)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(p.Table)
	if len(p.Fields) == 0 {
		sb.WriteString(" DEFAULT VALUES")
	} else {
		fmt.Fprintf(&sb, " (%s) VALUES (%s)", strings.Join(p.Fields, ", "), strings.Join(p.Placeholders, ", "))
	}
	sb.WriteString(" RETURNING id")
	return Statement{Query: sb.String(), Args: args.Args()}, nil
}

// Update sets the declared fields of rec on the row with its identity, returning the row.
func (b *Builder) Update(rec *Record) (Statement, error) {
	if rec == nil {
		return Statement{}, invalid("record", "must not be nil")
	}
	if !rec.HasID() {
		return Statement{}, invalid(IDField, "update of %s requires an identity", b.def.Name)
	}
	args := b.args()
	p := b.mapper.Prepare(args, rec)
	if len(p.Fields) == 0 {
		return Statement{}, invalid("fields", "update of %s has no declared fields to set", b.def.Name)
	}
	sets := make([]string, len(p.Fields))
	for i := range p.Fields {
		sets[i] = p.Fields[i] + "=" + p.Placeholders[i]
	}
	id, err := b.identity(args, rec.ID)
	if err != nil {
		return Statement{}, err
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s=%s RETURNING *", p.Table, strings.Join(sets, ", "), IDField, id)
	return Statement{Query: q, Args: args.Args()}, nil
}

// Select reads the rows matching q.
func (b *Builder) Select(q Query) (Statement, error) {
	data, params, err := b.filter(q.Filter)
	if err != nil {
		return Statement{}, err
	}
	if data.Order, err = b.orderBy(q.Sort); err != nil {
		return Statement{}, err
	}
	if data.Page, err = b.page(q.Limit, q.Offset); err != nil {
		return Statement{}, err
	}
	return b.render(selectTemplate, data, params)
}

// Delete removes the rows matching filter. A nil or empty filter removes every row.
func (b *Builder) Delete(filter *Record) (Statement, error) {
	data, params, err := b.filter(filter)
	if err != nil {
		return Statement{}, err
	}
	return b.render(deleteTemplate, data, params)
}

// Count counts the rows matching filter.
func (b *Builder) Count(filter *Record) (Statement, error) {
	data, params, err := b.filter(filter)
	if err != nil {
		return Statement{}, err
	}
	return b.render(countTemplate, data, params)
}

// whereClause renders equality conditions, each value bound as a named param.
const whereClause = `{{with .Data.Conditions}} WHERE ` +
	`{{range $i, $c := .}}{{if $i}} AND {{end}}{{$c.Column}}` +
	`{{if $c.Null}} IS NULL{{else if $c.Literal}}={{$c.Literal}}{{else}}={{$.Param $c.Key}}{{end}}` +
	`{{end}}{{end}}`

var selectTemplate = queryp.Must(queryp.NewTemplate(
	`SELECT * FROM {{quote .Data.Table}}` + whereClause + `{{.Data.Order}}{{.Data.Page}}`,
))

var deleteTemplate = queryp.Must(queryp.NewTemplate(
	`DELETE FROM {{quote .Data.Table}}` + whereClause,
))

var countTemplate = queryp.Must(queryp.NewTemplate(
	`SELECT count(*) FROM {{quote .Data.Table}}` + whereClause,
))

// condition is one equality of a WHERE clause. Its value is bound as the param Key.
type condition struct {
	Column  string
	Key     string
	Null    bool
	Literal string
}

type filterData struct {
	Table      string
	Conditions []condition
	Order      string
	Page       string
}

var createTableTemplate = queryp.Must(queryp.NewTemplate(
	`CREATE TABLE {{quote .Data.Table}} (` +
		`{{range .Data.Attributes}}{{quote .Column}} {{.Type}}{{if .Unique}} UNIQUE{{end}}, {{end}}` +
		`id {{.Data.IdentityType}}, CONSTRAINT {{quote .Data.PrimaryKey}} PRIMARY KEY (id))`,
))

var dropTableTemplate = queryp.Must(queryp.NewTemplate(
	`DROP TABLE IF EXISTS {{quote .Data.Table}}{{if .Data.Cascade}} CASCADE{{end}}`,
))

type tableData struct {
	Table        string
	Attributes   []Attribute
	IdentityType string
	PrimaryKey   string
	Cascade      bool
}

// CreateTable creates the entity's table: one column per attribute, in order, then the
// identity as primary key.
func (b *Builder) CreateTable() (Statement, error) {
	return b.ddl(createTableTemplate)
}

// DropTable drops the entity's table if it exists.
func (b *Builder) DropTable() (Statement, error) {
	return b.ddl(dropTableTemplate)
}

func (b *Builder) ddl(t *queryp.Template) (Statement, error) {
	return b.render(t, tableData{
		Table:        b.def.Name,
		Attributes:   b.def.Attributes,
		IdentityType: b.dialect.IdentityType,
		PrimaryKey:   "pk_" + b.def.Name + "_" + IDField,
		Cascade:      b.dialect.DropCascade,
	}, nil)
}

// render executes t in this dialect, binding params in the order the template emits them.
func (b *Builder) render(t *queryp.Template, data any, params map[string]any) (Statement, error) {
	tb := t.Data(data).Placeholderer(b.dialect.Placeholderer)
	for k, v := range params {
		tb.Param(k, v)
	}
	q, args, err := tb.Execute()
	if err != nil {
		return Statement{}, fmt.Errorf("failed to build statement for %s: %w", b.def.Name, err)
	}
	return Statement{Query: q, Args: args}, nil
}

////////////////////////////////////////////////////////////////////////////////

func (b *Builder) args() *queryp.Args {
	return queryp.NewArgs().WithPlaceholderer(b.dialect.Placeholderer)
}

// filter collects the equality conditions of filter and the values they bind, keyed by
// attribute name. Nil values match NULL.
func (b *Builder) filter(filter *Record) (filterData, map[string]any, error) {
	data := filterData{Table: b.def.Name}
	if filter == nil {
		return data, nil, nil
	}
	if name, ok := b.mapper.Undeclared(filter); ok {
		return data, nil, invalid("filter", "%s has no attribute %s", b.def.Name, name)
	}
	params := make(map[string]any)
	for _, a := range b.mapper.Present(filter) {
		c := condition{Column: queryp.Quote(a.Column()), Key: a.Name}
		if v := filter.Fields[a.Name]; v == nil {
			c.Null = true
		} else {
			params[a.Name] = v
		}
		data.Conditions = append(data.Conditions, c)
	}
	if filter.HasID() {
		c := condition{Column: IDField, Key: IDField}
		if b.literalIdentity {
			lit, err := literal(filter.ID)
			if err != nil {
				return data, nil, err
			}
			c.Literal = lit
		} else {
			params[IDField] = filter.ID
		}
		data.Conditions = append(data.Conditions, c)
	}
	return data, params, nil
}

func (b *Builder) orderBy(sorts []Sort) (string, error) {
	if len(sorts) == 0 {
		return "", nil
	}
	keys := make([]string, len(sorts))
	for i, s := range sorts {
		col := IDField
		if s.Field != IDField {
			a, ok := b.def.Attribute(s.Field)
			if !ok {
				return "", invalid("sort", "%s has no attribute %s", b.def.Name, s.Field)
			}
			col = a.Column()
		}
		dir := "ASC"
		if s.Direction.IsDesc() {
			dir = "DESC"
		}
		keys[i] = queryp.Quote(col) + " " + dir
	}
	return " ORDER BY " + strings.Join(keys, ", "), nil
}

func (b *Builder) page(limit, offset *int) (string, error) {
	if limit != nil && *limit < 0 {
		return "", invalid("limit", "must not be negative, got %d", *limit)
	}
	if offset != nil && *offset < 0 {
		return "", invalid("offset", "must not be negative, got %d", *offset)
	}
	var out string
	if limit != nil {
		out += fmt.Sprintf(" LIMIT %d", *limit)
	} else if offset != nil && b.dialect.OffsetNeedsLimit {
		out += " LIMIT -1"
	}
	if offset != nil {
		out += fmt.Sprintf(" OFFSET %d", *offset)
	}
	return out, nil
}

// identity binds id, or renders it as an integer literal.
func (b *Builder) identity(args *queryp.Args, id any) (string, error) {
	if !b.literalIdentity {
		return args.Add(id), nil
	}
	return literal(id)
}

func literal(id any) (string, error) {
	switch v := id.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return queryp.Escape(v), nil
	}
	return "", invalid(IDField, "literal identity must be an integer, got %T", id)
}
