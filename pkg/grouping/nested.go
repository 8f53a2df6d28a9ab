package grouping

import (
	"strings"

	"github.com/google/safehtml"

	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/record"
	"github.com/pthm/nestgroup/pkg/schema"
)

// titleSeparator joins per-level titles.
const titleSeparator = " / "

// NestedGroup groups by a base column and then by further levels in
// order. Its key is a JSON array with one slot per level, base first;
// blank levels are explicit nulls so positions always line up with
// Levels.
type NestedGroup struct {
	base   *Group
	levels []Level
	frozen bool
}

// New creates a nested group on the base column. Add levels with ThenBy
// and ThenByDate.
func New(column string, opts ...Option) *NestedGroup {
	return &NestedGroup{base: NewGroup(column, opts...)}
}

// ThenBy appends a plain level.
func (g *NestedGroup) ThenBy(column string) *NestedGroup {
	return g.then(Level{Column: column, Kind: Plain})
}

// ThenByDate appends a date level. An empty precision is Day.
func (g *NestedGroup) ThenByDate(column string, precision Precision) *NestedGroup {
	if precision == "" {
		precision = Day
	}
	return g.then(Level{Column: column, Kind: Date, Precision: precision})
}

// Then appends a level as described.
func (g *NestedGroup) Then(l Level) *NestedGroup {
	if l.IsDate() {
		return g.ThenByDate(l.Column, l.Precision)
	}
	return g.ThenBy(l.Column)
}

func (g *NestedGroup) then(l Level) *NestedGroup {
	if g.frozen {
		g.base.opts.logger.Warn("ignoring level added after configuration",
			"group", g.ID(), "column", l.Column)
		return g
	}
	g.levels = append(g.levels, l)
	return g
}

// Freeze ends configuration. Levels added afterwards are ignored.
func (g *NestedGroup) Freeze() *NestedGroup {
	g.frozen = true
	return g
}

// Frozen reports whether configuration has ended.
func (g *NestedGroup) Frozen() bool { return g.frozen }

// Base returns the base level group.
func (g *NestedGroup) Base() *Group { return g.base }

// ID returns the group identity.
func (g *NestedGroup) ID() string { return g.base.ID() }

// Label returns the display label.
func (g *NestedGroup) Label() string { return g.base.Label() }

// Column returns the base column path.
func (g *NestedGroup) Column() string { return g.base.Column() }

// HasNested reports whether any level beyond the base is configured.
func (g *NestedGroup) HasNested() bool { return len(g.levels) > 0 }

// Nested returns the levels beyond the base, in order.
func (g *NestedGroup) Nested() []Level {
	out := make([]Level, len(g.levels))
	copy(out, g.levels)
	return out
}

// Levels returns every level, base first.
func (g *NestedGroup) Levels() []Level {
	return append([]Level{g.base.Level()}, g.levels...)
}

// DeriveKey returns the composite key of rec. ok is false when every level
// is blank.
func (g *NestedGroup) DeriveKey(rec record.Record) (string, bool) {
	values := g.Values(rec)
	for _, v := range values {
		if v != nil {
			return encodeKey(values), true
		}
	}
	return "", false
}

// Values returns the normalized segment for every level, base first.
func (g *NestedGroup) Values(rec record.Record) []any {
	values := make([]any, 0, len(g.levels)+1)
	for _, l := range g.Levels() {
		values = append(values, g.base.Value(l, rec))
	}
	return values
}

// RenderTitle joins the base title and each level's formatted value.
func (g *NestedGroup) RenderTitle(rec record.Record) string {
	parts := []string{g.base.RenderTitle(rec)}
	for _, l := range g.levels {
		parts = append(parts, g.base.format(l, g.base.extract(rec, l.Column)))
	}
	return strings.Join(parts, titleSeparator)
}

// RenderTitleHTML is RenderTitle with the base title kept as markup and
// every other part escaped.
func (g *NestedGroup) RenderTitleHTML(rec record.Record) safehtml.HTML {
	parts := []safehtml.HTML{g.base.RenderTitleHTML(rec)}
	for _, l := range g.levels {
		parts = append(parts,
			safehtml.HTMLEscaped(titleSeparator),
			safehtml.HTMLEscaped(g.base.format(l, g.base.extract(rec, l.Column))))
	}
	return safehtml.HTMLConcat(parts...)
}

// ApplyGrouping adds one grouping key per level, base first.
func (g *NestedGroup) ApplyGrouping(q query.Query, model schema.Entity) {
	g.base.ApplyGrouping(q, model)
	for _, l := range g.levels {
		g.base.groupLevel(q, model, l)
	}
}

// ApplyOrdering orders by every level, base first. Date levels order by
// the raw timestamp; relationship levels left-join.
func (g *NestedGroup) ApplyOrdering(q query.Query, dir query.Direction) {
	g.base.ApplyOrdering(q, dir)
	for _, l := range g.levels {
		switch {
		case ResolveRelationship(entityOf(q), l.Column) != nil:
			q.OrderByLeftJoin(l.Column, dir)
		case l.IsDate():
			q.OrderBy(l.Column, dir)
		default:
			q.OrderBy(ResolveRelationshipAttribute(l.Column), dir)
		}
	}
}

// ScopeToKey restricts q to the group a composite key identifies. Malformed
// keys are read as a single base value; segments beyond the configured
// levels are ignored and levels beyond the key stay unconstrained.
func (g *NestedGroup) ScopeToKey(q query.Query, key string) {
	parts, ok := decodeKey(key)
	if !ok {
		g.base.opts.logger.Debug("group key is not a JSON array, scoping base level only",
			"group", g.ID(), "key", key)
	}

	var first any
	if len(parts) > 0 {
		first = parts[0]
	}
	g.base.scopeBase(q, first)

	for i := 1; i < len(parts); i++ {
		if i > len(g.levels) {
			g.base.opts.logger.Debug("group key longer than configured levels",
				"group", g.ID(), "segments", len(parts), "levels", len(g.levels)+1)
			break
		}
		g.scopeLevel(q, g.levels[i-1], parts[i])
	}
}

func (g *NestedGroup) scopeLevel(q query.Query, l Level, value any) {
	if l.IsDate() {
		scopeDefault(q, l, qualify(q, entityOf(q), l.Column), value)
		return
	}
	if ResolveRelationship(entityOf(q), l.Column) != nil {
		g.base.scopeRelation(q, l, value)
		return
	}
	scopeDefault(q, l, l.Column, value)
}
