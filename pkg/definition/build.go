package definition

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/goodsign/monday"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/internal/logging"
	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/schema"
	"github.com/pthm/nestgroup/pkg/table"
)

// Definition is a built definition: the model graph plus configured tables.
type Definition struct {
	Panel   string
	Models  map[string]*schema.Model
	Builder *table.Builder
	Plugin  *nestgroup.Plugin
}

// Option configures how a definition is built.
type Option func(*buildOptions)

type buildOptions struct {
	locale monday.Locale
	logger *slog.Logger
}

// WithLocale sets the locale groups render month names in.
func WithLocale(locale monday.Locale) Option {
	return func(o *buildOptions) { o.locale = locale }
}

// WithLogger sets the logger handed to tables and groups.
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) { o.logger = logger }
}

type panel string

func (p panel) ID() string { return string(p) }

// Build validates f and constructs its models and tables. Every problem
// found is reported, joined; each wraps nestgroup.ErrInvalidDefinition.
func (f *File) Build(opts ...Option) (*Definition, error) {
	o := buildOptions{locale: grouping.DefaultLocale}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewDiscardLogger()
	}

	models, errs := f.buildModels()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	b := table.NewBuilder(table.WithLogger(o.logger))
	for _, name := range sortedKeys(f.Tables) {
		if err := f.buildTable(b, models, name, o); err != nil {
			errs = append(errs, err)
		}
	}
	b.Reset()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	plugin := nestgroup.NewPlugin()
	plugin.Register(panel(f.Panel))
	plugin.Boot(panel(f.Panel))

	o.logger.Debug("built definition", "panel", f.Panel, "models", len(models), "tables", len(f.Tables))
	return &Definition{Panel: f.Panel, Models: models, Builder: b, Plugin: plugin}, nil
}

func (f *File) buildModels() (map[string]*schema.Model, []error) {
	models := make(map[string]*schema.Model, len(f.Models))
	names := sortedKeys(f.Models)
	for _, name := range names {
		def := f.Models[name]
		m := schema.NewModel(name, def.Table, def.Attributes...)
		if def.PrimaryKey != "" {
			m.PrimaryKey = def.PrimaryKey
		}
		models[name] = m
	}

	var errs []error
	for _, name := range names {
		m := models[name]
		rels := f.Models[name].Relations
		for _, relName := range sortedKeys(rels) {
			def := rels[relName]
			where := fmt.Sprintf("models.%s.relations.%s", name, relName)

			related, ok := models[def.Model]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s: %w %q",
					nestgroup.ErrInvalidDefinition, where, nestgroup.ErrUnknownModel, def.Model))
				continue
			}

			var rel *schema.Relation
			switch schema.RelationKind(def.Kind) {
			case schema.BelongsTo:
				rel = m.BelongsTo(relName, related, def.ForeignKey)
			case schema.HasOne:
				rel = m.HasOne(relName, related, def.ForeignKey)
			case schema.HasMany:
				rel = m.HasMany(relName, related, def.ForeignKey)
			default:
				errs = append(errs, fmt.Errorf("%w: %s: unknown relation kind %q",
					nestgroup.ErrInvalidDefinition, where, def.Kind))
				continue
			}
			if def.OwnerKey != "" {
				rel.OwnerKey = def.OwnerKey
			}
		}
	}
	return models, errs
}

func (f *File) buildTable(b *table.Builder, models map[string]*schema.Model, name string, o buildOptions) error {
	def := f.Tables[name]
	model, ok := models[def.Model]
	if !ok {
		return fmt.Errorf("%w: tables.%s: %w %q", nestgroup.ErrInvalidDefinition, name, nestgroup.ErrUnknownModel, def.Model)
	}

	groups := make([]grouping.Grouper, 0, len(def.Groups))
	for i, gd := range def.Groups {
		g, err := gd.build(o)
		if err != nil {
			return fmt.Errorf("%w: tables.%s.groups[%d]: %w", nestgroup.ErrInvalidDefinition, name, i, err)
		}
		groups = append(groups, g)
	}

	_, err := b.Table(name, model, func(b *table.Builder) error {
		if err := b.Groups(groups...); err != nil {
			return err
		}
		if def.DefaultGroup != "" {
			return b.DefaultGroup(def.DefaultGroup)
		}
		return nil
	})
	if err != nil && !nestgroup.IsInvalidDefinitionErr(err) {
		err = fmt.Errorf("%w: %w", nestgroup.ErrInvalidDefinition, err)
	}
	return err
}

func (gd GroupDef) build(o buildOptions) (grouping.Grouper, error) {
	if gd.Column == "" {
		return nil, errors.New("column is required")
	}

	opts := []grouping.Option{
		grouping.WithID(gd.ID),
		grouping.WithLabel(gd.Label),
		grouping.WithLocale(o.locale),
		grouping.WithLogger(o.logger),
	}
	if gd.Date {
		p, err := grouping.ParsePrecision(gd.Precision)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grouping.WithDate(p))
	}

	if len(gd.Levels) == 0 {
		return grouping.NewGroup(gd.Column, opts...), nil
	}

	g := grouping.New(gd.Column, opts...)
	for j, ld := range gd.Levels {
		if ld.Column == "" {
			return nil, fmt.Errorf("levels[%d]: column is required", j)
		}
		kind, err := grouping.ParseKind(ld.Kind)
		if err != nil {
			return nil, fmt.Errorf("levels[%d]: %w", j, err)
		}
		var precision grouping.Precision
		if kind == grouping.Date {
			if precision, err = grouping.ParsePrecision(ld.Precision); err != nil {
				return nil, fmt.Errorf("levels[%d]: %w", j, err)
			}
		}
		g.Then(grouping.Level{Column: ld.Column, Kind: kind, Precision: precision})
	}
	return g, nil
}

// Table returns a configured table by name.
func (d *Definition) Table(name string) (*table.Table, error) {
	return d.Builder.Lookup(name)
}

// Model returns a declared model by name.
func (d *Definition) Model(name string) (*schema.Model, error) {
	m, ok := d.Models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", nestgroup.ErrUnknownModel, name)
	}
	return m, nil
}

// Group resolves a table and one of its groups. An empty id selects the
// table's default group.
func (d *Definition) Group(tableName, id string) (*table.Table, grouping.Grouper, error) {
	t, err := d.Table(tableName)
	if err != nil {
		return nil, nil, err
	}
	if id == "" {
		g, ok := t.DefaultGroup()
		if !ok {
			return nil, nil, fmt.Errorf("%w: table %q has no groups", nestgroup.ErrUnknownGroup, tableName)
		}
		return t, g, nil
	}
	g, err := t.Group(id)
	if err != nil {
		return nil, nil, err
	}
	return t, g, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
