// Package nestgroup provides multi-level (hierarchical) grouping for tables
// of records, on top of a single-level "group rows by one column" model.
//
// # Module Structure
//
//   - pkg/grouping: Level, the single-level Group and the NestedGroup core.
//   - pkg/query: the query-builder protocol and a SQL-rendering builder.
//   - pkg/schema, pkg/record: the entity graph and record capability.
//   - pkg/table: configuration pass, render-time partitioning, query assembly.
//   - pkg/definition, pkg/executor: YAML definitions and database execution.
//
// # Core Concepts
//
// A NestedGroup has a base column plus ordered nested levels. Each record
// produces a composite key, a JSON array with one slot per level:
//
//	g := grouping.New("category").
//	    ThenBy("customer.region").
//	    ThenByDate("created_at", grouping.Day)
//
//	key, ok := g.DeriveKey(rec)   // ["A","EU","2024-01-05"]
//	title := g.RenderTitle(rec)   // A / EU / Jan 2024
//
// At query time the same group drives grouping, ordering and re-scoping of a
// query builder:
//
//	q := query.New(orders)
//	g.ScopeToKey(q, key)
//	sql, err := q.ToSQL()
//
// Dotted paths resolve through the model's relations; a name that is a
// declared attribute is never treated as a relation.
//
// # Host Integration
//
// Plugin carries the identity and lifecycle hooks a host panel calls when it
// registers nested grouping support.
package nestgroup

// PluginID is the identity string the plugin registers under.
const PluginID = "nested-grouping"

// Panel is the host surface a plugin is registered against.
type Panel interface {
	ID() string
}

// Plugin is the host integration point for nested grouping.
// Register and Boot are reserved for cross-cutting setup and do nothing.
type Plugin struct {
	registered []string
}

// NewPlugin creates a plugin instance.
func NewPlugin() *Plugin {
	return &Plugin{}
}

// ID returns the plugin identity.
func (p *Plugin) ID() string {
	return PluginID
}

// Register is called when the host registers the plugin with a panel.
func (p *Plugin) Register(panel Panel) {
	p.registered = append(p.registered, panel.ID())
}

// Boot is called once the host panel has finished registering plugins.
func (p *Plugin) Boot(Panel) {}

// Panels returns the ids of panels the plugin was registered with.
func (p *Plugin) Panels() []string {
	out := make([]string, len(p.registered))
	copy(out, p.registered)
	return out
}
