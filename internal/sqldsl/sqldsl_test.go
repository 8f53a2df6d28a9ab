package sqldsl

import "testing"

func TestExpr_SQL(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"qualified column", Col{Table: "orders", Column: "category"}, "orders.category"},
		{"bare column", Col{Column: "category"}, "category"},
		{"ident", Ident("customers.region"), "customers.region"},
		{"literal", Lit("EU"), "'EU'"},
		{"literal with quote", Lit("O'Brien"), "'O''Brien'"},
		{"int", Int(42), "42"},
		{"date of", DateOf{Expr: Ident("created_at")}, "date(created_at)"},
		{"date trunc", DateTrunc{Unit: "month", Expr: Ident("created_at")}, "date_trunc('month', created_at)"},
		{"alias", Alias{Expr: CountAll{}, Name: "aggregate"}, "count(*) AS aggregate"},
		{"paren", Paren{Expr: Raw("a OR b")}, "(a OR b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperators_SQL(t *testing.T) {
	a := Eq{Left: Ident("a"), Right: Lit("1")}
	b := IsNull{Expr: Ident("b")}

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"eq", a, "a = '1'"},
		{"is null", b, "b IS NULL"},
		{"exists", Exists{Query: Raw("SELECT 1")}, "EXISTS (SELECT 1)"},
		{"not exists", NotExists{Query: Raw("SELECT 1")}, "NOT EXISTS (SELECT 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain_SQL(t *testing.T) {
	c := Chain{Links: []Link{
		{Conn: ConnOr, Expr: Raw("a")},
		{Expr: Raw("b")},
		{Conn: ConnOr, Expr: Raw("c")},
		{Conn: ConnAnd, Expr: nil},
	}}

	if got, want := c.SQL(), "a AND b OR c"; got != want {
		t.Errorf("Chain.SQL() = %q, want %q", got, want)
	}
	if c.Len() != 3 {
		t.Errorf("Chain.Len() = %d, want 3", c.Len())
	}
	if got := (Chain{}).SQL(); got != "TRUE" {
		t.Errorf("empty Chain.SQL() = %q, want TRUE", got)
	}
}

func TestSelectStmt_SQL(t *testing.T) {
	stmt := SelectStmt{
		ColumnExprs: []Expr{Ident("category"), Alias{Expr: CountAll{}, Name: "aggregate"}},
		FromExpr:    TableRef{Name: "orders"},
		Joins: []JoinClause{{
			Type:      "LEFT",
			TableExpr: TableRef{Name: "customers"},
			On:        Eq{Left: Col{Table: "customers", Column: "id"}, Right: Col{Table: "orders", Column: "customer_id"}},
		}},
		Where:   Eq{Left: Ident("category"), Right: Lit("A")},
		GroupBy: []Expr{Ident("category"), DateOf{Expr: Ident("created_at")}},
		OrderBy: []OrderItem{{Expr: Ident("category")}, {Expr: Ident("created_at"), Desc: true, NullsLast: true}},
		Limit:   10,
	}

	want := "SELECT category, count(*) AS aggregate\n" +
		"FROM orders\n" +
		"LEFT JOIN customers ON customers.id = orders.customer_id\n" +
		"WHERE category = 'A'\n" +
		"GROUP BY category, date(created_at)\n" +
		"ORDER BY category ASC, created_at DESC NULLS LAST\n" +
		"LIMIT 10"

	if got := stmt.SQL(); got != want {
		t.Errorf("SelectStmt.SQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestSubquery_SQL(t *testing.T) {
	stmt := SelectStmt{
		ColumnExprs: []Expr{Int(1)},
		FromExpr:    TableRef{Name: "customers"},
		Where:       Eq{Left: Col{Table: "customers", Column: "id"}, Right: Col{Table: "orders", Column: "customer_id"}},
	}

	got := Exists{Query: Subquery{Stmt: stmt}}.SQL()
	want := "EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id)"
	if got != want {
		t.Errorf("Exists(Subquery).SQL() = %q, want %q", got, want)
	}
}

func TestTableRef(t *testing.T) {
	if got := TableAs("customers", "c").TableSQL(); got != "customers AS c" {
		t.Errorf("TableSQL() = %q", got)
	}
	if got := (TableRef{Name: "customers"}).Ref(); got != "customers" {
		t.Errorf("Ref() = %q", got)
	}
	if got := TableAs("customers", "c").Ref(); got != "c" {
		t.Errorf("Ref() = %q", got)
	}
}
