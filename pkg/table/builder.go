// Package table assembles grouped tables: a configuration pass that
// attaches groupings to tables, render-time partitioning of records into
// group buckets, and the grouped, ordered and key-scoped queries behind
// them.
package table

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/internal/logging"
	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/registry"
	"github.com/pthm/nestgroup/pkg/schema"
)

// ErrNoActiveTable is returned when groups are attached outside a Table
// configuration callback.
var ErrNoActiveTable = errors.New("nestgroup: no table under construction")

// Builder runs configuration passes. Each Builder owns its level registry
// and active-table stack; independent builders share nothing.
type Builder struct {
	levels *registry.Registry[grouping.Level]
	active registry.Stack[*Table]
	tables map[string]*Table
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for configuration and query assembly.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a builder with an empty registry.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		levels: registry.New[grouping.Level](),
		tables: make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewDiscardLogger()
	}
	return b
}

// Table configures a table over model. The table is the active table while
// configure runs; groups it attaches are frozen once configure returns.
func (b *Builder) Table(name string, model *schema.Model, configure func(*Builder) error) (*Table, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: table %q has no model", nestgroup.ErrUnknownModel, name)
	}
	if _, exists := b.tables[name]; exists {
		return nil, fmt.Errorf("%w: table %q configured twice", nestgroup.ErrInvalidDefinition, name)
	}

	t := &Table{name: name, model: model, levels: b.levels, logger: b.logger}
	b.active.Push(t)
	defer b.active.Pop()

	if configure != nil {
		if err := configure(b); err != nil {
			return nil, fmt.Errorf("configuring table %q: %w", name, err)
		}
	}
	if t.defaultID != "" {
		if _, err := t.Group(t.defaultID); err != nil {
			return nil, fmt.Errorf("default group of table %q: %w", name, err)
		}
	}
	for _, g := range t.groups {
		if ng, ok := g.(*grouping.NestedGroup); ok {
			ng.Freeze()
		}
	}

	b.tables[name] = t
	b.logger.Debug("configured table", "table", name, "model", model.Name, "groups", len(t.groups))
	return t, nil
}

// Groups attaches groups to the active table and registers their nested
// levels under the handle "table/groupID" and under the base column.
func (b *Builder) Groups(groups ...grouping.Grouper) error {
	t, ok := b.active.Last()
	if !ok {
		return ErrNoActiveTable
	}
	for _, g := range groups {
		if _, err := t.Group(g.ID()); err == nil {
			return fmt.Errorf("%w: duplicate group %q on table %q", nestgroup.ErrInvalidDefinition, g.ID(), t.name)
		}
		t.groups = append(t.groups, g)
		b.levels.Register(t.handle(g.ID()), g.Levels()[1:], g.Column())
	}
	return nil
}

// DefaultGroup selects the active table's default group by id.
func (b *Builder) DefaultGroup(id string) error {
	t, ok := b.active.Last()
	if !ok {
		return ErrNoActiveTable
	}
	t.defaultID = id
	return nil
}

// Current returns the table under construction.
func (b *Builder) Current() (*Table, bool) {
	return b.active.Last()
}

// Reset clears the active-table stack. Configured tables are kept.
func (b *Builder) Reset() {
	b.active.Reset()
}

// Registry returns the level registry tables were configured into.
func (b *Builder) Registry() *registry.Registry[grouping.Level] {
	return b.levels
}

// Lookup returns a configured table by name.
func (b *Builder) Lookup(name string) (*Table, error) {
	t, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", nestgroup.ErrUnknownTable, name)
	}
	return t, nil
}

// Tables returns configured tables sorted by name.
func (b *Builder) Tables() []*Table {
	out := make([]*Table, 0, len(b.tables))
	for _, t := range b.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
