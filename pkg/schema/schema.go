// Package schema describes the entity graph grouping paths resolve against:
// models (a table plus declared attributes) and the relations between them.
//
// Models are plain descriptors with no database access. They answer the
// three questions relationship resolution asks of any entity: is this name a
// declared attribute, is it a relation, and where does the relation lead.
package schema

import "strings"

// Entity is anything a dotted relationship path can be walked through.
// Both models and loaded records implement it.
type Entity interface {
	// HasAttribute reports whether name is a plain attribute of the entity.
	HasAttribute(name string) bool
	// IsRelation reports whether name is a relation of the entity.
	IsRelation(name string) bool
	// Relation returns the relation descriptor for name.
	Relation(name string) (*Relation, bool)
}

// RelationKind identifies how two models are linked.
type RelationKind string

const (
	// BelongsTo links a child row to its parent: child.foreign_key = parent.owner_key.
	BelongsTo RelationKind = "belongs_to"
	// HasOne links a parent to at most one child: child.foreign_key = parent.owner_key.
	HasOne RelationKind = "has_one"
	// HasMany links a parent to its children: child.foreign_key = parent.owner_key.
	HasMany RelationKind = "has_many"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	switch k {
	case BelongsTo, HasOne, HasMany:
		return true
	}
	return false
}

// Model describes one entity type backed by a table.
type Model struct {
	Name       string
	Table      string
	PrimaryKey string // defaults to "id"
	Attributes []string

	relations map[string]*Relation
	order     []string
}

// NewModel creates a model for a table with the given declared attributes.
func NewModel(name, table string, attributes ...string) *Model {
	if table == "" {
		table = name
	}
	return &Model{
		Name:       name,
		Table:      table,
		PrimaryKey: "id",
		Attributes: attributes,
		relations:  make(map[string]*Relation),
	}
}

// Key returns the primary key column name.
func (m *Model) Key() string {
	if m.PrimaryKey == "" {
		return "id"
	}
	return m.PrimaryKey
}

// QualifyColumn prefixes column with the model's table.
// A column that already contains a dot is returned unchanged.
func (m *Model) QualifyColumn(column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return m.Table + "." + column
}

// HasAttribute reports whether name is a declared attribute.
func (m *Model) HasAttribute(name string) bool {
	for _, a := range m.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// IsRelation reports whether name is a declared relation.
func (m *Model) IsRelation(name string) bool {
	_, ok := m.relations[name]
	return ok
}

// Relation returns the relation declared under name.
func (m *Model) Relation(name string) (*Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

// Relations returns declared relations in declaration order.
func (m *Model) Relations() []*Relation {
	out := make([]*Relation, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.relations[name])
	}
	return out
}

// BelongsTo declares a belongs-to relation. An empty foreignKey defaults to
// name + "_id".
func (m *Model) BelongsTo(name string, related *Model, foreignKey string) *Relation {
	if foreignKey == "" {
		foreignKey = name + "_id"
	}
	return m.addRelation(&Relation{
		Name:       name,
		Kind:       BelongsTo,
		Parent:     m,
		Related:    related,
		ForeignKey: foreignKey,
		OwnerKey:   related.Key(),
	})
}

// HasOne declares a has-one relation. An empty foreignKey defaults to the
// parent model name + "_id".
func (m *Model) HasOne(name string, related *Model, foreignKey string) *Relation {
	return m.addRelation(m.childRelation(name, HasOne, related, foreignKey))
}

// HasMany declares a has-many relation. An empty foreignKey defaults to the
// parent model name + "_id".
func (m *Model) HasMany(name string, related *Model, foreignKey string) *Relation {
	return m.addRelation(m.childRelation(name, HasMany, related, foreignKey))
}

func (m *Model) childRelation(name string, kind RelationKind, related *Model, foreignKey string) *Relation {
	if foreignKey == "" {
		foreignKey = m.Name + "_id"
	}
	return &Relation{
		Name:       name,
		Kind:       kind,
		Parent:     m,
		Related:    related,
		ForeignKey: foreignKey,
		OwnerKey:   m.Key(),
	}
}

func (m *Model) addRelation(r *Relation) *Relation {
	if m.relations == nil {
		m.relations = make(map[string]*Relation)
	}
	if _, exists := m.relations[r.Name]; !exists {
		m.order = append(m.order, r.Name)
	}
	m.relations[r.Name] = r
	return r
}

// Relation is a descriptor for one traversal between models.
type Relation struct {
	Name       string
	Kind       RelationKind
	Parent     *Model
	Related    *Model
	ForeignKey string
	OwnerKey   string
}

// RelatedModel returns the model at the far end of the relation.
func (r *Relation) RelatedModel() *Model {
	return r.Related
}

// JoinColumns returns the (related, parent) column pair that links the two
// tables, each qualified with the given table references.
func (r *Relation) JoinColumns(parentRef, relatedRef string) (related, parent string) {
	if r.Kind == BelongsTo {
		return relatedRef + "." + r.OwnerKey, parentRef + "." + r.ForeignKey
	}
	return relatedRef + "." + r.ForeignKey, parentRef + "." + r.OwnerKey
}
