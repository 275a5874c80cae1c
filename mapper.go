package entityp

import (
	"fmt"
	"strconv"

	"github.com/greghart/entityp/queryp"
	"github.com/greghart/entityp/sqlp"
)

// Prepared is a record bound for a statement: quoted columns, their placeholders and
// their values, aligned by index.
type Prepared struct {
	Table        string
	Fields       []string
	Placeholders []string
	Values       []any
}

// Mapper converts between records and store rows for one entity.
type Mapper struct {
	def Definition
}

func NewMapper(def Definition) *Mapper {
	return &Mapper{def: def}
}

// Present returns the declared attributes rec has a value for, in definition order.
// Undeclared fields, metadata included, are left out.
func (m *Mapper) Present(rec *Record) []Attribute {
	if rec == nil {
		return nil
	}
	var out []Attribute
	for _, a := range m.def.Attributes {
		if _, ok := rec.Fields[a.Name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Undeclared returns the first non metadata field of rec the definition does not declare.
func (m *Mapper) Undeclared(rec *Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	for name := range rec.Fields {
		if IsMetadata(name) {
			continue
		}
		if _, ok := m.def.Attribute(name); !ok {
			return name, true
		}
	}
	return "", false
}

// Prepare binds every present attribute of rec to args.
func (m *Mapper) Prepare(args *queryp.Args, rec *Record) Prepared {
	out := Prepared{Table: queryp.Quote(m.def.Name)}
	for _, a := range m.Present(rec) {
		v := rec.Fields[a.Name]
		out.Fields = append(out.Fields, queryp.Quote(a.Column()))
		out.Placeholders = append(out.Placeholders, args.Add(v))
		out.Values = append(out.Values, v)
	}
	return out
}

// Tag returns a copy of rec marked as this entity.
func (m *Mapper) Tag(rec *Record) *Record {
	out := rec.Clone()
	out.Type = m.def.Name
	return out
}

// FromRow builds a record from a row keyed by column name. The id column becomes the
// identity, every other column becomes a field.
func (m *Mapper) FromRow(row map[string]any) *Record {
	out := &Record{Type: m.def.Name, Fields: make(Fields, len(row))}
	for col, v := range row {
		if col == IDField {
			out.ID = v
			continue
		}
		out.Fields[FromStorage(col)] = v
	}
	return out
}

// FromResult maps every row of res. No rows maps to nil.
func (m *Mapper) FromResult(res *sqlp.Result) []*Record {
	if res == nil || len(res.Rows) == 0 {
		return nil
	}
	out := make([]*Record, len(res.Rows))
	for i, row := range res.Rows {
		out[i] = m.FromRow(row)
	}
	return out
}

// count reads the single value of a count(*) result. Drivers disagree on both the column
// name and the type.
func count(res *sqlp.Result) (int64, error) {
	if res == nil || len(res.Rows) == 0 {
		return 0, nil
	}
	row := res.Rows[0]
	var v any
	switch {
	case len(res.Columns) > 0:
		v = row[res.Columns[0]]
	case len(row) == 1:
		for _, only := range row {
			v = only
		}
	default:
		v = row["count"]
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count %v (%T)", v, v)
}
