package reflectp

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Field represents a Field in a struct, keyed by the record field name it maps to.
// Adapted from json package reflection, flattened since records are flat.
type Field struct {
	Name string

	Tag   bool
	Index []int
	Type  reflect.Type
}

// Fields represents the fields of a struct.
type Fields struct {
	ByName map[string]*Field
	Names  []string // declaration order
	Type   reflect.Type
}

// Internally, all types are stored in a cache to avoid repeated work.
func FieldsFactory(t reflect.Type) (*Fields, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("given %v, expected struct", t.Kind())
	}
	if f, ok := fieldsCache.Load(t); ok {
		return f.(*Fields), nil
	}
	f, err := newFields(t)
	if err != nil {
		return nil, err
	}
	fCache, _ := fieldsCache.LoadOrStore(t, f)
	return fCache.(*Fields), nil
}

// newFields returns the reflected fields of a struct, with embedded structs promoted.
// Other struct typed fields (time.Time, etc.) are plain values.
func newFields(t reflect.Type) (*Fields, error) {
	out := &Fields{Type: t, ByName: make(map[string]*Field, t.NumField())}
	add := func(field *Field) error {
		if _, ok := out.ByName[field.Name]; ok {
			return fmt.Errorf("duplicate field name %s", field.Name)
		}
		out.ByName[field.Name] = field
		out.Names = append(out.Names, field.Name)
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			t := sf.Type
			if t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if !sf.IsExported() && t.Kind() != reflect.Struct {
				// Ignore embedded fields of unexported non-struct types.
				continue
			}
			// Do not ignore embedded fields of unexported struct types
			// since they may have exported fields.
		} else if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("entityp")
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)
		if !isValidTag(name) {
			name = ""
		}
		tagged := name != ""

		ft := sf.Type
		if ft.Name() == "" && ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		// Whether to "promote" field: normal go embeds or opt-ins
		promote := (opts.Contains("promote") || (sf.Anonymous && !tagged)) && ft.Kind() == reflect.Struct
		if promote {
			if sf.Type.Kind() == reflect.Pointer {
				return nil, fmt.Errorf("embedded struct %s must not be a pointer", sf.Name)
			}
			embedded, err := newFields(ft)
			if err != nil {
				return nil, fmt.Errorf("failed to process sub struct %s: %w", sf.Name, err)
			}
			for _, k := range embedded.Names {
				f := *embedded.ByName[k]
				f.Index = append([]int{i}, f.Index...)
				if err := add(&f); err != nil {
					return nil, fmt.Errorf("failed to promote %s: %w", sf.Name, err)
				}
			}
			continue
		}

		if !tagged {
			name = defaultName(sf.Name)
		}
		if err := add(&Field{Name: name, Tag: tagged, Index: []int{i}, Type: sf.Type}); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Values reads every field of strct, keyed by name. Nil pointers read as nil, others are
// dereferenced.
func (f *Fields) Values(strct reflect.Value) map[string]any {
	strct = reflect.Indirect(strct)
	out := make(map[string]any, len(f.Names))
	for _, name := range f.Names {
		fv := strct.FieldByIndex(f.ByName[name].Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[name] = nil
				continue
			}
			fv = fv.Elem()
		}
		out[name] = fv.Interface()
	}
	return out
}

// Set assigns value to the named field of strct, which must be addressable.
// Returns false when strct has no such field.
func (f *Fields) Set(strct reflect.Value, name string, value any) (bool, error) {
	field, ok := f.ByName[name]
	if !ok {
		return false, nil
	}
	fv := reflect.Indirect(strct).FieldByIndex(field.Index)
	if err := assign(fv, value); err != nil {
		return true, fmt.Errorf("failed to set %s: %w", name, err)
	}
	return true, nil
}

////////////////////////////////////////////////////////////////////////////////

// assign sets dst from value, allocating pointers and converting between numeric kinds
// or between string kinds. Nil zeroes dst.
func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return assign(dst, src.Elem().Interface())
	}
	if src.Type().ConvertibleTo(dst.Type()) && compatible(src.Kind(), dst.Kind()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %v", value, dst.Type())
}

// compatible stops reflect's int -> string rune conversion and friends.
func compatible(a, b reflect.Kind) bool {
	return a == b || (isNumber(a) && isNumber(b)) || (isText(a) && isText(b))
}

func isNumber(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}

func isText(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice
}

// defaultName lower cases the leading letter of a go field name, or all of it if it is an
// initialism (ID -> id, FirstName -> firstName).
func defaultName(goName string) string {
	if strings.ToUpper(goName) == goName {
		return strings.ToLower(goName)
	}
	r := []rune(goName)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

////////////////////////////////////////////////////////////////////////////////

// tagOptions is the string following a comma in a struct field's "entityp"
// tag, or the empty string. It does not include the leading comma.
type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	tag, opt, _ := strings.Cut(tag, ",")
	return tag, tagOptions(opt)
}

// Contains reports whether a comma-separated list of options
// contains a particular substr flag. substr must be surrounded by a
// string boundary or commas.
func (o tagOptions) Contains(optionName string) bool {
	if len(o) == 0 {
		return false
	}
	s := string(o)
	for s != "" {
		var name string
		name, s, _ = strings.Cut(s, ",")
		if name == optionName {
			return true
		}
	}
	return false
}

func isValidTag(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

var fieldsCache sync.Map // map[reflect.Type]*Fields
