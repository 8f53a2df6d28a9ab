package grouping

import (
	"encoding/json"
	"strings"

	"github.com/google/safehtml"

	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/record"
	"github.com/pthm/nestgroup/pkg/schema"
)

// Grouper is a table grouping: it keys and titles records at render time
// and shapes queries at query time. Keys returned by DeriveKey are the ones
// ScopeToKey accepts.
type Grouper interface {
	ID() string
	Label() string
	Column() string
	Levels() []Level

	DeriveKey(rec record.Record) (string, bool)
	RenderTitle(rec record.Record) string
	RenderTitleHTML(rec record.Record) safehtml.HTML

	ApplyGrouping(q query.Query, model schema.Entity)
	ApplyOrdering(q query.Query, dir query.Direction)
	ScopeToKey(q query.Query, key string)
}

var (
	_ Grouper = (*Group)(nil)
	_ Grouper = (*NestedGroup)(nil)
)

// Group groups records by a single column. Its key is the normalized
// column value itself, not a JSON array.
type Group struct {
	column string
	opts   options
}

// NewGroup creates a single-level group on column.
func NewGroup(column string, opts ...Option) *Group {
	return &Group{column: column, opts: buildOptions(column, opts)}
}

// ID returns the group identity.
func (g *Group) ID() string { return g.opts.id }

// Label returns the display label.
func (g *Group) Label() string { return g.opts.label }

// Column returns the grouped column path.
func (g *Group) Column() string { return g.column }

// IsDate reports whether the group buckets by date.
func (g *Group) IsDate() bool { return g.opts.date }

// Level returns the group's column as a level description.
func (g *Group) Level() Level {
	if g.opts.date {
		return Level{Column: g.column, Kind: Date, Precision: g.opts.precision}
	}
	return Level{Column: g.column, Kind: Plain}
}

// Levels returns the single level of the group.
func (g *Group) Levels() []Level {
	return []Level{g.Level()}
}

// Value returns the normalized key segment of rec's value at l, or nil
// when the value is blank.
func (g *Group) Value(l Level, rec record.Record) any {
	return g.normalize(l, g.extract(rec, l.Column))
}

// DeriveKey returns the normalized column value. ok is false when blank.
func (g *Group) DeriveKey(rec record.Record) (string, bool) {
	v := g.Value(g.Level(), rec)
	if v == nil {
		return "", false
	}
	return v.(string), true
}

// RenderTitle renders the record's group title. A configured title
// function is used verbatim.
func (g *Group) RenderTitle(rec record.Record) string {
	if g.opts.titleFunc != nil {
		return g.opts.titleFunc(rec).String()
	}
	return g.format(g.Level(), g.extract(rec, g.column))
}

// RenderTitleHTML renders the title as HTML. A configured title function
// is used verbatim; formatted values are escaped.
func (g *Group) RenderTitleHTML(rec record.Record) safehtml.HTML {
	if g.opts.titleFunc != nil {
		return g.opts.titleFunc(rec)
	}
	return safehtml.HTMLEscaped(g.format(g.Level(), g.extract(rec, g.column)))
}

// ApplyGrouping groups q by the column, qualified onto the relationship join
// when it is a relationship path and truncated when it is a date.
func (g *Group) ApplyGrouping(q query.Query, model schema.Entity) {
	g.groupLevel(q, model, g.Level())
}

// ApplyOrdering orders q by the column, left-joining through a
// relationship path so rows without the related entity are kept.
func (g *Group) ApplyOrdering(q query.Query, dir query.Direction) {
	if ResolveRelationship(entityOf(q), g.column) != nil {
		q.OrderByLeftJoin(g.column, dir)
		return
	}
	q.OrderBy(g.column, dir)
}

// ScopeToKey restricts q to rows whose column value matches key.
// A blank key matches rows where the value is absent.
func (g *Group) ScopeToKey(q query.Query, key string) {
	var value any
	if strings.TrimSpace(key) != "" {
		value = key
	}
	g.scopeBase(q, value)
}

// scopeBase applies the base-level constraint for one decoded value.
func (g *Group) scopeBase(q query.Query, value any) {
	rel := ResolveRelationship(entityOf(q), g.column)
	if rel == nil {
		scopeDefault(q, g.Level(), g.column, value)
		return
	}
	g.scopeRelation(q, g.Level(), value)
}

// scopeRelation constrains a relationship path through an existential
// filter. A blank value also admits rows with no related entity.
func (g *Group) scopeRelation(q query.Query, l Level, value any) {
	name := ResolveRelationshipName(l.Column)
	attr := ResolveRelationshipAttribute(l.Column)

	has := func(sub query.Query) {
		sub.WhereHas(name, func(related query.Query) {
			scopeDefault(related, l, attr, value)
		})
	}
	if !record.Blank(value) {
		has(q)
		return
	}
	q.WhereNested(func(sub query.Query) {
		has(sub)
		sub.OrWhereDoesntHave(name)
	})
}

func (g *Group) groupLevel(q query.Query, model schema.Entity, l Level) {
	column := qualify(q, model, l.Column)
	if l.IsDate() {
		q.GroupByRaw(l.truncExpr(column))
		return
	}
	q.GroupBy(column)
}

// scopeDefault constrains column to value, matching by period for dates.
func scopeDefault(q query.Query, l Level, column string, value any) {
	if record.Blank(value) {
		value = nil
	}
	switch {
	case !l.IsDate():
		q.Where(column, value)
	case l.precision() == Day:
		q.WhereDate(column, value)
	default:
		q.WhereExpr(l.truncExpr(column), value)
	}
}

// encodeKey serializes key segments as a JSON array with unicode and HTML
// characters left unescaped.
func encodeKey(values []any) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return ""
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// decodeKey reads key segments back. A blank key has none; a key that is
// not a JSON array is a single base value.
func decodeKey(key string) ([]any, bool) {
	if strings.TrimSpace(key) == "" {
		return nil, true
	}
	var decoded []any
	if err := json.Unmarshal([]byte(key), &decoded); err != nil || decoded == nil {
		return []any{key}, false
	}
	for i, v := range decoded {
		if v != nil {
			decoded[i] = record.Stringify(v)
		}
	}
	return decoded, true
}
