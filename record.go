package entityp

import (
	"maps"
	"reflect"
	"strings"
)

// Fields holds a record's attribute values keyed by field name.
type Fields map[string]any

// Record is the in-memory form of one entity row.
//
// ID is absent when nil or the zero value of its type. Type names the entity the record
// belongs to and is set whenever a Repository writes or reads it. Fields not declared by
// the entity's Definition are never persisted, and fields prefixed with "_" are metadata.
type Record struct {
	ID     any
	Type   string
	Fields Fields
}

// NewRecord returns a record without an identity.
func NewRecord(fields Fields) *Record {
	return &Record{Fields: fields}
}

// HasID reports whether the record carries an identity.
func (r *Record) HasID() bool {
	if r == nil || r.ID == nil {
		return false
	}
	return !reflect.ValueOf(r.ID).IsZero()
}

// Get returns the named field, nil if unset.
func (r *Record) Get(field string) any {
	if r == nil {
		return nil
	}
	return r.Fields[field]
}

// Clone returns a copy with its own Fields map. Field values themselves are shared.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Fields = maps.Clone(r.Fields)
	if out.Fields == nil {
		out.Fields = Fields{}
	}
	return &out
}

// IsMetadata reports whether a field name is reserved for metadata, and never persisted.
func IsMetadata(field string) bool {
	return strings.HasPrefix(field, "_")
}
