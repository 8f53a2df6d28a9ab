package sqldsl

import "strings"

// Comparison operators

// Eq represents an equality comparison (=).
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return e.Left.SQL() + " = " + e.Right.SQL() }

// IsNull represents IS NULL check.
type IsNull struct {
	Expr Expr
}

func (i IsNull) SQL() string { return i.Expr.SQL() + " IS NULL" }

// Exists represents an EXISTS subquery.
type Exists struct {
	Query interface{ SQL() string }
}

func (e Exists) SQL() string { return "EXISTS (" + e.Query.SQL() + ")" }

// NotExists represents a NOT EXISTS subquery.
type NotExists struct {
	Query interface{ SQL() string }
}

func (n NotExists) SQL() string { return "NOT EXISTS (" + n.Query.SQL() + ")" }

// Connector joins a link to the links before it.
type Connector string

const (
	ConnAnd Connector = "AND"
	ConnOr  Connector = "OR"
)

// Link is one predicate in a Chain together with the connector that
// attaches it to its predecessor. The first link's connector is ignored.
type Link struct {
	Conn Connector
	Expr Expr
}

// Chain renders predicates left to right with their own connectors, the
// way a where-clause accumulates: a AND b OR c. Callers that need grouping
// wrap a nested Chain in Paren.
type Chain struct {
	Links []Link
}

func (c Chain) SQL() string {
	var sb strings.Builder
	n := 0
	for _, l := range c.Links {
		if l.Expr == nil {
			continue
		}
		if n > 0 {
			conn := l.Conn
			if conn == "" {
				conn = ConnAnd
			}
			sb.WriteString(" " + string(conn) + " ")
		}
		sb.WriteString(l.Expr.SQL())
		n++
	}
	if n == 0 {
		return "TRUE"
	}
	return sb.String()
}

// Len returns the number of non-nil links.
func (c Chain) Len() int {
	n := 0
	for _, l := range c.Links {
		if l.Expr != nil {
			n++
		}
	}
	return n
}
