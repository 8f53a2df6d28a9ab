package sqldsl

import (
	"strconv"
	"strings"
)

// Expr is the interface that all SQL expression types implement.
type Expr interface {
	SQL() string
}

// Col represents a table column reference (e.g., orders.category).
type Col struct {
	Table  string
	Column string
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// Ident is a column reference that is already qualified, or deliberately
// left unqualified, by the caller.
type Ident string

// SQL renders the identifier as-is.
func (i Ident) SQL() string {
	return string(i)
}

// Lit represents a literal string value (auto-quoted with single quotes).
type Lit string

// SQL renders the literal with single quotes.
func (l Lit) SQL() string {
	// Escape single quotes by doubling them
	escaped := strings.ReplaceAll(string(l), "'", "''")
	return "'" + escaped + "'"
}

// Raw is an escape hatch for arbitrary SQL expressions.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// Int represents an integer literal.
type Int int

// SQL renders the integer.
func (i Int) SQL() string {
	return strconv.Itoa(int(i))
}

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " AS " + a.Name
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

// =============================================================================
// Date Functions
// =============================================================================

// DateOf truncates a timestamp expression to its calendar day: date(expr).
type DateOf struct {
	Expr Expr
}

// SQL renders the date() call.
func (d DateOf) SQL() string {
	return "date(" + d.Expr.SQL() + ")"
}

// DateTrunc truncates a timestamp to the start of a unit:
// date_trunc('month', expr).
type DateTrunc struct {
	Unit string
	Expr Expr
}

// SQL renders the date_trunc() call.
func (d DateTrunc) SQL() string {
	return "date_trunc(" + Lit(d.Unit).SQL() + ", " + d.Expr.SQL() + ")"
}

// CountAll renders count(*).
type CountAll struct{}

// SQL renders count(*).
func (CountAll) SQL() string {
	return "count(*)"
}
