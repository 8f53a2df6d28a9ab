package sqldsl

import (
	"fmt"
	"strings"
)

// Optf returns formatted string if condition is true, empty string otherwise.
// Useful for optional SQL clauses.
func Optf(cond bool, format string, args ...any) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type      string // "INNER", "LEFT", etc.
	TableExpr TableExpr
	On        Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	joinKeyword := j.Type + " JOIN"
	if j.Type == "" {
		joinKeyword = "JOIN"
	}
	if j.On == nil {
		return joinKeyword + " " + j.TableExpr.TableSQL()
	}
	return joinKeyword + " " + j.TableExpr.TableSQL() + " ON " + j.On.SQL()
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr      Expr
	Desc      bool
	NullsLast bool
}

// SQL renders the ordering term.
func (o OrderItem) SQL() string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return o.Expr.SQL() + " " + dir + Optf(o.NullsLast, " NULLS LAST")
}

// SelectStmt represents a SELECT query.
type SelectStmt struct {
	ColumnExprs []Expr
	FromExpr    TableExpr
	Joins       []JoinClause
	Where       Expr
	GroupBy     []Expr
	OrderBy     []OrderItem
	Limit       int
}

// SQL renders the SELECT statement, one clause per line.
func (s SelectStmt) SQL() string {
	clauses := []string{
		"SELECT " + s.columnsSQL(),
		s.fromSQL(),
		s.joinsSQL(),
		s.whereSQL(),
		s.groupBySQL(),
		s.orderBySQL(),
		s.limitSQL(),
	}
	lines := clauses[:0]
	for _, c := range clauses {
		if c != "" {
			lines = append(lines, c)
		}
	}
	return strings.Join(lines, "\n")
}

// Inline renders the statement on a single line, for use inside EXISTS.
func (s SelectStmt) Inline() string {
	return strings.Join(strings.Split(s.SQL(), "\n"), " ")
}

func (s SelectStmt) columnsSQL() string {
	if len(s.ColumnExprs) == 0 {
		return "*"
	}
	return joinSQL(s.ColumnExprs, ", ")
}

func (s SelectStmt) fromSQL() string {
	if s.FromExpr == nil {
		return ""
	}
	return "FROM " + s.FromExpr.TableSQL()
}

func (s SelectStmt) joinsSQL() string {
	if len(s.Joins) == 0 {
		return ""
	}
	parts := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		parts[i] = j.SQL()
	}
	return strings.Join(parts, "\n")
}

func (s SelectStmt) whereSQL() string {
	if s.Where == nil {
		return ""
	}
	return "WHERE " + s.Where.SQL()
}

func (s SelectStmt) groupBySQL() string {
	if len(s.GroupBy) == 0 {
		return ""
	}
	return "GROUP BY " + joinSQL(s.GroupBy, ", ")
}

func (s SelectStmt) orderBySQL() string {
	if len(s.OrderBy) == 0 {
		return ""
	}
	parts := make([]string, len(s.OrderBy))
	for i, o := range s.OrderBy {
		parts[i] = o.SQL()
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (s SelectStmt) limitSQL() string {
	if s.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf("LIMIT %d", s.Limit)
}

func joinSQL(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}

// Subquery renders a statement on a single line for embedding in a
// predicate such as EXISTS.
type Subquery struct {
	Stmt SelectStmt
}

// SQL renders the inline statement.
func (s Subquery) SQL() string {
	return s.Stmt.Inline()
}
