// Package record provides the typed record capability grouping reads from:
// dotted attribute lookup plus the attribute-or-relation tests needed to walk
// relationship paths.
package record

import (
	"database/sql/driver"
	"reflect"
	"strings"

	"github.com/pthm/nestgroup/pkg/schema"
)

// Record is a single row as seen by the grouping layer.
type Record interface {
	schema.Entity

	// Get looks up a value by attribute name or dotted path through loaded
	// relations. ok is false when the path does not exist.
	Get(path string) (value any, ok bool)

	// Model returns the record's model descriptor, or nil if untyped.
	Model() *schema.Model
}

// Row is a map-backed Record. Loaded relations are stored as nested
// map[string]any, *Row or []any values under the relation name.
type Row struct {
	model  *schema.Model
	values map[string]any
}

var _ Record = (*Row)(nil)

// New creates a row for model. model may be nil for untyped data.
func New(model *schema.Model, values map[string]any) *Row {
	if values == nil {
		values = make(map[string]any)
	}
	return &Row{model: model, values: values}
}

// Model returns the row's model descriptor.
func (r *Row) Model() *schema.Model {
	return r.model
}

// Values returns the underlying value map.
func (r *Row) Values() map[string]any {
	return r.values
}

// Set stores a value under name.
func (r *Row) Set(name string, value any) *Row {
	r.values[name] = value
	return r
}

// Get resolves path against the row. An exact key match wins over dotted
// traversal, so flat keys such as "customer.region" are honored.
func (r *Row) Get(path string) (any, bool) {
	if v, ok := r.values[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var current any = r
	for _, segment := range strings.Split(path, ".") {
		next, ok := lookup(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// HasAttribute reports whether name holds a plain (non-relation) value on
// the row, or is a declared attribute of its model.
func (r *Row) HasAttribute(name string) bool {
	if v, ok := r.values[name]; ok && !isNested(v) {
		return true
	}
	return r.model != nil && r.model.HasAttribute(name)
}

// IsRelation reports whether name is a relation of the row's model.
func (r *Row) IsRelation(name string) bool {
	return r.model != nil && r.model.IsRelation(name)
}

// Relation returns the relation descriptor declared under name.
func (r *Row) Relation(name string) (*schema.Relation, bool) {
	if r.model == nil {
		return nil, false
	}
	return r.model.Relation(name)
}

func lookup(container any, key string) (any, bool) {
	switch c := container.(type) {
	case nil:
		return nil, false
	case *Row:
		if c == nil {
			return nil, false
		}
		v, ok := c.values[key]
		return v, ok
	case Record:
		return c.Get(key)
	case map[string]any:
		v, ok := c[key]
		return v, ok
	}
	return nil, false
}

func isNested(v any) bool {
	switch v.(type) {
	case map[string]any, *Row, Record:
		return true
	}
	return false
}

// Unwrap reduces enumerated values to their primitive representation.
// Values implementing driver.Valuer are asked for their stored value, and
// named string and integer types become their underlying string, int64 or
// uint64. Everything else is returned unchanged.
func Unwrap(v any) any {
	if valuer, ok := v.(driver.Valuer); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		prim, err := valuer.Value()
		if err != nil {
			return nil
		}
		return prim
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type().PkgPath() == "" {
		return v
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	}
	return v
}

// Blank reports whether v carries no meaningful value: nil, a
// whitespace-only string of any string type, or an empty slice or map.
func Blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []byte:
		return strings.TrimSpace(string(t)) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// Filled is the negation of Blank.
func Filled(v any) bool {
	return !Blank(v)
}
