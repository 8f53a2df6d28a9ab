// Package sqldsl provides typed building blocks for rendering SQL fragments.
//
// # Overview
//
// Rather than concatenating SQL strings at every call site, the query layer
// composes small typed values that each know how to render themselves. The
// DSL stays close to SQL syntax so generated statements are easy to read.
//
// # Core Interfaces
//
//   - Expr: SQL expressions (columns, literals, operators, function calls)
//   - TableExpr: sources usable in FROM and JOIN clauses
//
// # Expression Types
//
//	Col{Table: "orders", Column: "id"}   // orders.id
//	Ident("customers.region")            // customers.region (pre-qualified)
//	Lit("EU")                            // 'EU'
//	Raw("count(*)")                      // escape hatch
//	DateOf{Expr: col}                    // date(col)
//	DateTrunc{Unit: "month", Expr: col}  // date_trunc('month', col)
//
// Operators:
//
//	Eq{Left: col, Right: Lit("A")}       // col = 'A'
//	IsNull{Expr: col}                    // col IS NULL
//	Exists{Query: stmt} / NotExists{Query: stmt}
//	Chain{Links: []Link{...}}            // a AND b OR c, left to right
//
// # Statements
//
//	SelectStmt{
//	    ColumnExprs: []Expr{Ident("category"), Raw("count(*)")},
//	    FromExpr:    TableRef{Name: "orders"},
//	    Joins:       []JoinClause{{Type: "LEFT", TableExpr: TableRef{Name: "customers"}, On: cond}},
//	    Where:       cond,
//	    GroupBy:     []Expr{Ident("category")},
//	    OrderBy:     []OrderItem{{Expr: Ident("category"), Desc: true}},
//	}
package sqldsl
