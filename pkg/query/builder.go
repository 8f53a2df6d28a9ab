package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/internal/sqldsl"
	"github.com/pthm/nestgroup/pkg/schema"
)

// Builder accumulates a SELECT over one model and renders it to SQL.
// Misuse such as an unknown relation path is recorded on the builder and
// reported by ToSQL and Err; builder methods never panic.
type Builder struct {
	model   *schema.Model
	table   sqldsl.TableRef
	columns []sqldsl.Expr
	joins   []join
	where   sqldsl.Chain
	groups  []sqldsl.Expr
	orders  []sqldsl.OrderItem
	limit   int

	root  *Builder // owner of errs and alias counters; nil on the root itself
	outer *Builder // statement a nested group renders into; nil when b renders its own
	errs  []error
	alias int
}

var _ Query = (*Builder)(nil)

type join struct {
	path   string
	table  string
	ref    string
	clause sqldsl.JoinClause
}

// New creates a builder selecting from model's table.
func New(model *schema.Model) *Builder {
	return &Builder{
		model: model,
		table: sqldsl.TableRef{Name: model.Table},
	}
}

func (b *Builder) owner() *Builder {
	if b.root != nil {
		return b.root
	}
	return b
}

// stmt returns the builder whose statement b's joins render into.
func (b *Builder) stmt() *Builder {
	if b.outer != nil {
		return b.outer
	}
	return b
}

func (b *Builder) fail(err error) {
	o := b.owner()
	o.errs = append(o.errs, err)
}

// Model returns the model the query selects from.
func (b *Builder) Model() *schema.Model {
	return b.model
}

// Select sets explicit select columns, replacing the default list.
func (b *Builder) Select(columns ...string) *Builder {
	for _, c := range columns {
		b.columns = append(b.columns, sqldsl.Ident(c))
	}
	return b
}

// Limit caps the number of rows. Zero means no limit.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// GroupBy appends a grouping key on a column.
func (b *Builder) GroupBy(column string) {
	b.groups = append(b.groups, b.column(column))
}

// GroupByRaw appends a raw SQL grouping expression.
func (b *Builder) GroupByRaw(expr string) {
	b.groups = append(b.groups, sqldsl.Raw(expr))
}

// Groups returns the grouping expressions in the order they were added.
func (b *Builder) Groups() []string {
	out := make([]string, len(b.groups))
	for i, g := range b.groups {
		out[i] = g.SQL()
	}
	return out
}

// OrderBy appends an ordering on a column.
func (b *Builder) OrderBy(column string, dir Direction) {
	b.orders = append(b.orders, sqldsl.OrderItem{Expr: b.column(column), Desc: dir == Desc})
}

// OrderByLeftJoin left-joins every relation in path and orders by the final
// attribute on the joined table, with rows lacking the related entity last
// in either direction. A path without a relation orders directly.
func (b *Builder) OrderByLeftJoin(path string, dir Direction) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		b.OrderBy(path, dir)
		return
	}

	ref, err := b.JoinRelation(path[:idx])
	if err != nil {
		b.fail(err)
		b.OrderBy(path, dir)
		return
	}
	b.orders = append(b.orders, sqldsl.OrderItem{
		Expr:      sqldsl.Col{Table: ref, Column: path[idx+1:]},
		Desc:      dir == Desc,
		NullsLast: true,
	})
}

// JoinRelation left-joins each relation along a dotted relation path and
// returns the table reference of the last one. Joins are shared between
// callers asking for the same path.
func (b *Builder) JoinRelation(path string) (string, error) {
	s := b.stmt()
	model := s.model
	parentRef := s.table.Ref()
	var prefix string

	for _, segment := range strings.Split(path, ".") {
		rel, ok := model.Relation(segment)
		if !ok {
			return "", fmt.Errorf("%w: %q on model %s", nestgroup.ErrUnknownRelation, segment, model.Name)
		}
		if prefix == "" {
			prefix = segment
		} else {
			prefix += "." + segment
		}

		ref, found := s.joinRef(prefix)
		if !found {
			ref = s.tableRefFor(rel.Related.Table, prefix)
			relatedCol, parentCol := rel.JoinColumns(parentRef, ref)
			s.joins = append(s.joins, join{
				path:  prefix,
				table: rel.Related.Table,
				ref:   ref,
				clause: sqldsl.JoinClause{
					Type:      "LEFT",
					TableExpr: sqldsl.TableAs(rel.Related.Table, ref),
					On:        sqldsl.Eq{Left: sqldsl.Ident(relatedCol), Right: sqldsl.Ident(parentCol)},
				},
			})
		}

		model = rel.Related
		parentRef = ref
	}
	return parentRef, nil
}

func (b *Builder) joinRef(path string) (string, bool) {
	for _, j := range b.joins {
		if j.path == path {
			return j.ref, true
		}
	}
	return "", false
}

// tableRefFor picks the reference for a newly joined table: its own name,
// unless that name is already taken in this statement.
func (b *Builder) tableRefFor(table, path string) string {
	taken := table == b.table.Ref()
	for _, j := range b.joins {
		if j.ref == table {
			taken = true
		}
	}
	if !taken {
		return table
	}
	return strings.ReplaceAll(path, ".", "_")
}

// selfJoined reports whether the statement joins its base table to itself,
// which makes bare column names ambiguous.
func (b *Builder) selfJoined() bool {
	for _, j := range b.joins {
		if j.table == b.table.Name {
			return true
		}
	}
	return false
}

// column references a column of the builder's own table.
func (b *Builder) column(name string) sqldsl.Expr {
	return tableColumn{b: b, name: name}
}

// tableColumn renders a bare column name, qualified with its table's
// reference once the statement joins the base table to itself. Columns are
// rendered lazily so joins added later are taken into account.
type tableColumn struct {
	b    *Builder
	name string
}

func (c tableColumn) SQL() string {
	if strings.Contains(c.name, ".") || !c.b.stmt().selfJoined() {
		return c.name
	}
	return sqldsl.Col{Table: c.b.table.Ref(), Column: c.name}.SQL()
}

// Where constrains column = value; a nil value constrains IS NULL.
func (b *Builder) Where(column string, value any) {
	b.and(compare(b.column(column), value))
}

// WhereDate constrains date(column) = value; nil means IS NULL.
func (b *Builder) WhereDate(column string, value any) {
	b.and(compare(sqldsl.DateOf{Expr: b.column(column)}, value))
}

// WhereExpr constrains a raw SQL expression = value; nil means IS NULL.
func (b *Builder) WhereExpr(expr string, value any) {
	b.and(compare(sqldsl.Raw(expr), value))
}

// WhereHas requires at least one related row through relation (dotted
// paths nest) satisfying fn's constraints. fn may be nil.
func (b *Builder) WhereHas(relation string, fn func(Query)) {
	sub, err := b.existsQuery(relation, fn)
	if err != nil {
		b.fail(err)
		return
	}
	b.and(sqldsl.Exists{Query: sub})
}

// OrWhereDoesntHave ORs in rows that have no related row through relation.
func (b *Builder) OrWhereDoesntHave(relation string) {
	sub, err := b.existsQuery(relation, nil)
	if err != nil {
		b.fail(err)
		return
	}
	b.where.Links = append(b.where.Links, sqldsl.Link{Conn: sqldsl.ConnOr, Expr: sqldsl.NotExists{Query: sub}})
}

// WhereNested groups fn's constraints in parentheses.
func (b *Builder) WhereNested(fn func(Query)) {
	nested := b.scoped(b.model, b.table)
	nested.outer = b.stmt()
	fn(nested)
	if nested.where.Len() == 0 {
		return
	}
	b.and(sqldsl.Paren{Expr: nested.where})
}

func (b *Builder) and(expr sqldsl.Expr) {
	b.where.Links = append(b.where.Links, sqldsl.Link{Conn: sqldsl.ConnAnd, Expr: expr})
}

func (b *Builder) scoped(model *schema.Model, table sqldsl.TableRef) *Builder {
	return &Builder{model: model, table: table, root: b.owner()}
}

// existsQuery builds the correlated subquery for relation. For a dotted
// path the remaining segments nest inside the first relation's subquery.
func (b *Builder) existsQuery(relation string, fn func(Query)) (sqldsl.Subquery, error) {
	first, rest, nested := strings.Cut(relation, ".")

	rel, ok := b.model.Relation(first)
	if !ok {
		return sqldsl.Subquery{}, fmt.Errorf("%w: %q on model %s", nestgroup.ErrUnknownRelation, first, b.model.Name)
	}

	ref := rel.Related.Table
	if ref == b.table.Ref() {
		o := b.owner()
		o.alias++
		ref = rel.Related.Table + "_" + strconv.Itoa(o.alias)
	}

	sub := b.scoped(rel.Related, sqldsl.TableAs(rel.Related.Table, ref))
	switch {
	case nested:
		sub.WhereHas(rest, fn)
	case fn != nil:
		fn(sub)
	}

	relatedCol, parentCol := rel.JoinColumns(b.table.Ref(), ref)
	link := sqldsl.Eq{Left: sqldsl.Ident(relatedCol), Right: sqldsl.Ident(parentCol)}

	var where sqldsl.Expr = link
	if sub.where.Len() > 0 {
		where = sqldsl.Chain{Links: []sqldsl.Link{
			{Expr: link},
			{Conn: sqldsl.ConnAnd, Expr: wrapChain(sub.where)},
		}}
	}

	return sqldsl.Subquery{Stmt: sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{sqldsl.Int(1)},
		FromExpr:    sub.table,
		Joins:       sub.joinClauses(),
		Where:       where,
	}}, nil
}

// wrapChain parenthesizes a chain that mixes connectors so it keeps its
// meaning when ANDed onto another predicate.
func wrapChain(c sqldsl.Chain) sqldsl.Expr {
	for i, l := range c.Links {
		if i > 0 && l.Expr != nil && l.Conn == sqldsl.ConnOr {
			return sqldsl.Paren{Expr: c}
		}
	}
	return c
}

func compare(left sqldsl.Expr, value any) sqldsl.Expr {
	if isNull(value) {
		return sqldsl.IsNull{Expr: left}
	}
	return sqldsl.Eq{Left: left, Right: sqldsl.Lit(literal(value))}
}

// Statement assembles the SELECT. Without explicit columns a grouped query
// selects its grouping expressions plus count(*) AS aggregate, and an
// ungrouped query selects every column of the base table.
func (b *Builder) Statement() sqldsl.SelectStmt {
	stmt := sqldsl.SelectStmt{
		ColumnExprs: b.columns,
		FromExpr:    b.table,
		GroupBy:     b.groups,
		OrderBy:     b.orders,
		Limit:       b.limit,
	}
	if len(stmt.ColumnExprs) == 0 {
		if len(b.groups) > 0 {
			stmt.ColumnExprs = append(append([]sqldsl.Expr{}, b.groups...), sqldsl.Alias{Expr: sqldsl.CountAll{}, Name: "aggregate"})
		} else {
			stmt.ColumnExprs = []sqldsl.Expr{sqldsl.Raw(b.table.Ref() + ".*")}
		}
	}
	stmt.Joins = b.joinClauses()
	if b.where.Len() > 0 {
		stmt.Where = b.where
	}
	return stmt
}

func (b *Builder) joinClauses() []sqldsl.JoinClause {
	var out []sqldsl.JoinClause
	for _, j := range b.joins {
		out = append(out, j.clause)
	}
	return out
}

// Err returns the errors recorded while building, joined.
func (b *Builder) Err() error {
	return errors.Join(b.owner().errs...)
}

// ToSQL renders the statement and reports any recorded misuse.
func (b *Builder) ToSQL() (string, error) {
	return b.Statement().SQL(), b.Err()
}

// WhereSQL renders only the accumulated predicate, or "" when unconstrained.
func (b *Builder) WhereSQL() string {
	if b.where.Len() == 0 {
		return ""
	}
	return b.where.SQL()
}
