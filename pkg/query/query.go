// Package query defines the query-builder protocol the grouping layer drives
// and a builder that renders it to SQL.
//
// # Protocol
//
// Query is deliberately small: grouping, ordering (plain and left-join
// ordering through a relationship path), equality and date predicates, and
// existential filters over relations. Every method mutates the receiver so
// callers can thread one builder through several grouping levels.
//
// # Rendering
//
//	q := query.New(orders)
//	q.Where("category", "A")
//	q.WhereHas("customer", func(sub query.Query) { sub.Where("region", "EU") })
//	sql, err := q.ToSQL()
//
// renders:
//
//	SELECT orders.*
//	FROM orders
//	WHERE category = 'A' AND EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id AND region = 'EU')
package query

import (
	"fmt"
	"strings"

	"github.com/pthm/nestgroup/pkg/schema"
)

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection normalizes a direction string. Anything other than "desc"
// (case-insensitive) is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Query is the query-builder protocol consumed by the grouping layer.
type Query interface {
	// Model returns the model the query selects from.
	Model() *schema.Model

	// GroupBy appends a grouping key on a column.
	GroupBy(column string)
	// GroupByRaw appends a raw SQL grouping expression.
	GroupByRaw(expr string)

	// OrderBy appends an ordering on a column.
	OrderBy(column string, dir Direction)
	// OrderByLeftJoin orders by "relation[.relation].attribute", left-joining
	// each relation so rows without the related entity are kept.
	OrderByLeftJoin(path string, dir Direction)
	// JoinRelation left-joins each relation along a dotted relation path and
	// returns the table reference of the last one.
	JoinRelation(path string) (string, error)

	// Where constrains column = value; a nil value constrains IS NULL.
	Where(column string, value any)
	// WhereDate constrains date(column) = value; nil means IS NULL.
	WhereDate(column string, value any)
	// WhereExpr constrains a raw SQL expression = value; nil means IS NULL.
	WhereExpr(expr string, value any)
	// WhereHas requires a related row through relation matching fn's constraints.
	WhereHas(relation string, fn func(Query))
	// OrWhereDoesntHave allows rows with no related row through relation.
	OrWhereDoesntHave(relation string)
	// WhereNested groups fn's constraints in parentheses.
	WhereNested(fn func(Query))
}

// literal renders a non-nil value as a SQL string literal.
func literal(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case *string:
		return *v
	}
	return fmt.Sprint(value)
}

// isNull reports whether value means SQL NULL, including typed nil pointers.
func isNull(value any) bool {
	if value == nil {
		return true
	}
	if p, ok := value.(*string); ok && p == nil {
		return true
	}
	return false
}
