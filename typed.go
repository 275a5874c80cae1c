package entityp

import (
	"context"
	"fmt"
	"reflect"

	"github.com/greghart/entityp/internal/reflectp"
)

// TypedRepository persists entities as structs of type E rather than as records.
//
// Struct fields map to record fields by their `entityp` tag, or by their lower camel cased
// Go name. The field named id carries the identity. Embedded structs are flattened.
//
//	type Widget struct {
//		ID    int64
//		Label string `entityp:"label"`
//	}
type TypedRepository[E any] struct {
	records *Repository
	fields  *reflectp.Fields
}

// NewTyped builds a typed repository. E must be a struct type.
func NewTyped[E any](gateway Gateway, def Definition, opts ...Option) (*TypedRepository[E], error) {
	var entity E
	fields, err := reflectp.FieldsFactory(reflect.TypeOf(entity))
	if err != nil {
		return nil, fmt.Errorf("failed to reflect fields for %T: %w", entity, err)
	}
	for _, a := range def.Attributes {
		if _, ok := fields.ByName[a.Name]; !ok {
			return nil, invalid(a.Name, "%T has no field for attribute %s", entity, a.Name)
		}
	}
	records, err := New(gateway, def, opts...)
	if err != nil {
		return nil, err
	}
	return &TypedRepository[E]{records: records, fields: fields}, nil
}

// Records returns the underlying record repository.
func (r *TypedRepository[E]) Records() *Repository {
	return r.records
}

// Encode converts an entity to a record.
func (r *TypedRepository[E]) Encode(entity E) *Record {
	out := &Record{Type: r.records.def.Name, Fields: make(Fields, len(r.fields.Names))}
	for name, v := range r.fields.Values(reflect.ValueOf(&entity)) {
		if name == IDField {
			out.ID = v
			continue
		}
		out.Fields[name] = v
	}
	return out
}

// Decode converts a record to an entity. Fields E does not have are ignored.
func (r *TypedRepository[E]) Decode(rec *Record) (E, error) {
	var entity E
	if rec == nil {
		return entity, nil
	}
	v := reflect.ValueOf(&entity)
	if _, err := r.fields.Set(v, IDField, rec.ID); err != nil {
		return entity, err
	}
	for name, value := range rec.Fields {
		if _, err := r.fields.Set(v, name, value); err != nil {
			return entity, err
		}
	}
	return entity, nil
}

// Save creates entity if its identity is zero, otherwise updates it, and returns it as
// stored.
func (r *TypedRepository[E]) Save(ctx context.Context, entity E) (E, error) {
	return r.write(ctx, r.records.Save, entity)
}

func (r *TypedRepository[E]) Create(ctx context.Context, entity E) (E, error) {
	return r.write(ctx, r.records.Create, entity)
}

func (r *TypedRepository[E]) Update(ctx context.Context, entity E) (E, error) {
	return r.write(ctx, r.records.Update, entity)
}

// Load returns the first entity matching filter, nil if none do.
func (r *TypedRepository[E]) Load(ctx context.Context, filter *Record) (*E, error) {
	return r.one(r.records.Load(ctx, filter))
}

// Find returns the entity with the given identity, nil if there is none.
func (r *TypedRepository[E]) Find(ctx context.Context, id any) (*E, error) {
	return r.one(r.records.Find(ctx, id))
}

func (r *TypedRepository[E]) List(ctx context.Context, q Query) ([]E, error) {
	recs, err := r.records.List(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []E
	for _, rec := range recs {
		entity, err := r.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", r.records.def.Name, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (r *TypedRepository[E]) Count(ctx context.Context, filter *Record) (int64, error) {
	return r.records.Count(ctx, filter)
}

func (r *TypedRepository[E]) Delete(ctx context.Context, filter *Record) (int64, error) {
	return r.records.Delete(ctx, filter)
}

////////////////////////////////////////////////////////////////////////////////

func (r *TypedRepository[E]) write(
	ctx context.Context,
	fn func(context.Context, *Record) (*Record, error),
	entity E,
) (E, error) {
	in := r.Encode(entity)
	out, err := fn(ctx, in)
	if err != nil {
		var zero E
		return zero, err
	}
	// Inserts only return the identity, the rest is what we sent.
	for name, v := range in.Fields {
		if _, ok := out.Fields[name]; !ok {
			out.Fields[name] = v
		}
	}
	decoded, err := r.Decode(out)
	if err != nil {
		return decoded, fmt.Errorf("failed to decode %s: %w", r.records.def.Name, err)
	}
	return decoded, nil
}

func (r *TypedRepository[E]) one(rec *Record, err error) (*E, error) {
	if err != nil || rec == nil {
		return nil, err
	}
	entity, err := r.Decode(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.records.def.Name, err)
	}
	return &entity, nil
}
