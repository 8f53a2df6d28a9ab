package table

import (
	"fmt"
	"log/slog"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/record"
	"github.com/pthm/nestgroup/pkg/registry"
	"github.com/pthm/nestgroup/pkg/schema"
)

// Table is a configured table: a model plus the groupings offered on it.
type Table struct {
	name      string
	model     *schema.Model
	groups    []grouping.Grouper
	defaultID string
	levels    *registry.Registry[grouping.Level]
	logger    *slog.Logger
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Model returns the model rows are read from.
func (t *Table) Model() *schema.Model { return t.model }

// Groups returns the attached groups in configuration order.
func (t *Table) Groups() []grouping.Grouper {
	out := make([]grouping.Grouper, len(t.groups))
	copy(out, t.groups)
	return out
}

// Group returns the group with id.
func (t *Table) Group(id string) (grouping.Grouper, error) {
	for _, g := range t.groups {
		if g.ID() == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on table %q", nestgroup.ErrUnknownGroup, id, t.name)
}

// DefaultGroup returns the configured default group, else the first one.
func (t *Table) DefaultGroup() (grouping.Grouper, bool) {
	if t.defaultID != "" {
		if g, err := t.Group(t.defaultID); err == nil {
			return g, true
		}
	}
	if len(t.groups) == 0 {
		return nil, false
	}
	return t.groups[0], true
}

// Levels returns the nested levels registered for group id.
func (t *Table) Levels(id string) []grouping.Level {
	return t.levels.ByOwner(t.handle(id))
}

// Nesting returns every nested level registered under a base column,
// across all tables of the same configuration pass.
func (t *Table) Nesting(column string) []grouping.Level {
	return t.levels.ByColumn(column)
}

func (t *Table) handle(id string) string {
	return t.name + "/" + id
}

// Bucket is one rendered group: its key, title and member records.
type Bucket struct {
	Key     string
	HasKey  bool
	Title   string
	Records []record.Record
}

// Partition buckets records by group key in first-seen order. Records
// with no key share one bucket with HasKey false.
func (t *Table) Partition(g grouping.Grouper, records []record.Record) []Bucket {
	type slot struct {
		key string
		ok  bool
	}
	var buckets []Bucket
	index := make(map[slot]int)

	for _, rec := range records {
		key, ok := g.DeriveKey(rec)
		s := slot{key: key, ok: ok}
		i, seen := index[s]
		if !seen {
			buckets = append(buckets, Bucket{Key: key, HasKey: ok, Title: g.RenderTitle(rec)})
			i = len(buckets) - 1
			index[s] = i
		}
		buckets[i].Records = append(buckets[i].Records, rec)
	}

	t.logger.Debug("partitioned records", "table", t.name, "group", g.ID(),
		"records", len(records), "buckets", len(buckets))
	return buckets
}

// SummaryQuery selects one row per group with its grouping values and a
// count(*) aggregate.
func (t *Table) SummaryQuery(g grouping.Grouper) *query.Builder {
	q := query.New(t.model)
	g.ApplyGrouping(q, t.model)
	return q
}

// ListQuery selects every row ordered by the group's levels.
func (t *Table) ListQuery(g grouping.Grouper, dir query.Direction) *query.Builder {
	q := query.New(t.model)
	g.ApplyOrdering(q, dir)
	return q
}

// ScopedQuery selects the rows of the group key identifies, ordered by the
// group's levels.
func (t *Table) ScopedQuery(g grouping.Grouper, key string, dir query.Direction) *query.Builder {
	q := query.New(t.model)
	g.ScopeToKey(q, key)
	g.ApplyOrdering(q, dir)
	return q
}
