package entityp

import "strings"

// Direction orders a sort key. Only "desc", in any case, sorts descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsDesc reports whether d sorts descending.
func (d Direction) IsDesc() bool {
	return strings.EqualFold(string(d), string(Desc))
}

// Sort is one ordering key.
type Sort struct {
	Field     string
	Direction Direction
}

// Query selects records. Filter fields are combined as equalities joined by AND, and a
// filter ID adds an equality on the identity. A nil or empty filter matches every row.
// Nil Limit or Offset means none.
type Query struct {
	Filter *Record
	Sort   []Sort
	Limit  *int
	Offset *int
}

// All matches every record.
func All() Query {
	return Query{}
}

// Where filters on field equality.
func Where(fields Fields) Query {
	return Query{Filter: NewRecord(fields)}
}

// WhereID filters on the identity.
func WhereID(id any) Query {
	return Query{Filter: &Record{ID: id}}
}

// OrderBy appends a sort key.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.Sort = append(q.Sort[:len(q.Sort):len(q.Sort)], Sort{Field: field, Direction: dir})
	return q
}

// WithLimit caps the number of rows returned.
func (q Query) WithLimit(n int) Query {
	q.Limit = &n
	return q
}

// WithOffset skips leading rows.
func (q Query) WithOffset(n int) Query {
	q.Offset = &n
	return q
}
