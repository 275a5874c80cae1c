package sqlp

import (
	"errors"
	"fmt"

	"github.com/greghart/entityp/queryp"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures what differs between the stores we generate SQL for.
type Dialect struct {
	Name string
	// Placeholderer renders bound parameter placeholders.
	Placeholderer queryp.Placeholderer
	// IdentityType is the column type of the generated identity column.
	IdentityType string
	// DropCascade appends CASCADE to DROP TABLE.
	DropCascade bool
	// OffsetNeedsLimit means OFFSET is only valid after a LIMIT.
	OffsetNeedsLimit bool

	uniqueViolation func(err error) bool
	normalize       func(v any) any
}

// IsUniqueViolation reports whether err is the store rejecting a duplicate unique value.
func (d *Dialect) IsUniqueViolation(err error) bool {
	if d.uniqueViolation == nil {
		return false
	}
	return d.uniqueViolation(err)
}

// Normalize converts a scanned value to the shape records should carry.
func (d *Dialect) Normalize(v any) any {
	if d.normalize == nil {
		return v
	}
	return d.normalize(v)
}

func (d *Dialect) String() string {
	return d.Name
}

////////////////////////////////////////////////////////////////////////////////

var Postgres = &Dialect{
	Name:          "postgres",
	Placeholderer: queryp.PostgresPlaceholderer,
	IdentityType:  "SERIAL",
	DropCascade:   true,
	uniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
	},
}

// SQLite uses an INTEGER identity, which aliases the rowid so the store assigns it.
var SQLite = &Dialect{
	Name:             "sqlite3",
	Placeholderer:    queryp.SqlitePlaceholderer,
	IdentityType:     "INTEGER",
	OffsetNeedsLimit: true,
	uniqueViolation: func(err error) bool {
		var sqliteErr sqlite3.Error
		if !errors.As(err, &sqliteErr) {
			return false
		}
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	},
	normalize: func(v any) any {
		// TEXT may come back as bytes depending on declared type.
		if b, ok := v.([]byte); ok {
			return string(b)
		}
		return v
	},
}

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driverName string) (*Dialect, error) {
	switch driverName {
	case "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	}
	return nil, fmt.Errorf("no dialect for driver %q", driverName)
}
