// Package definition loads grouped table definitions from YAML.
//
// A definition declares the model graph (tables, attributes and relations)
// and the tables built over it, each with the groupings it offers:
//
//	panel: admin
//	models:
//	  order:
//	    table: orders
//	    attributes: [category, created_at, customer_id]
//	    relations:
//	      customer: {kind: belongs_to, model: customer}
//	  customer:
//	    table: customers
//	    attributes: [name, region]
//	tables:
//	  orders:
//	    model: order
//	    default_group: nested
//	    groups:
//	      - id: nested
//	        column: category
//	        levels:
//	          - column: customer.region
//	          - {column: created_at, kind: date, precision: day}
//
// # Basic Usage
//
//	def, err := definition.Load("nestgroup.def.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	orders, err := def.Table("orders")
package definition

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/pthm/nestgroup"
)

// File is the on-disk shape of a definition.
type File struct {
	Panel  string              `json:"panel,omitempty"`
	Models map[string]ModelDef `json:"models"`
	Tables map[string]TableDef `json:"tables"`
}

// ModelDef declares one model.
type ModelDef struct {
	Table      string                 `json:"table,omitempty"`
	PrimaryKey string                 `json:"primary_key,omitempty"`
	Attributes []string               `json:"attributes,omitempty"`
	Relations  map[string]RelationDef `json:"relations,omitempty"`
}

// RelationDef declares one relation from a model.
type RelationDef struct {
	Kind       string `json:"kind"`
	Model      string `json:"model"`
	ForeignKey string `json:"foreign_key,omitempty"`
	OwnerKey   string `json:"owner_key,omitempty"`
}

// TableDef declares one table and its groups.
type TableDef struct {
	Model        string     `json:"model"`
	DefaultGroup string     `json:"default_group,omitempty"`
	Groups       []GroupDef `json:"groups,omitempty"`
}

// GroupDef declares one group. A group with levels is nested.
type GroupDef struct {
	ID        string     `json:"id,omitempty"`
	Column    string     `json:"column"`
	Label     string     `json:"label,omitempty"`
	Date      bool       `json:"date,omitempty"`
	Precision string     `json:"precision,omitempty"`
	Levels    []LevelDef `json:"levels,omitempty"`
}

// LevelDef declares one nested level.
type LevelDef struct {
	Column    string `json:"column"`
	Kind      string `json:"kind,omitempty"`
	Precision string `json:"precision,omitempty"`
}

// DefaultPanel is the panel a definition without one is registered with.
const DefaultPanel = "admin"

// ParseFile reads and parses a definition file.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}
	return Parse(content)
}

// Parse decodes definition YAML. Unknown fields are rejected.
func Parse(content []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalStrict(content, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", nestgroup.ErrInvalidDefinition, err)
	}
	if f.Panel == "" {
		f.Panel = DefaultPanel
	}
	return &f, nil
}

// Load reads, parses and builds a definition file.
func Load(path string, opts ...Option) (*Definition, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return f.Build(opts...)
}

// Marshal renders f back to YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
