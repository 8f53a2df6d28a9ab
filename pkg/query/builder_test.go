package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/nestgroup"
	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/schema"
)

func testModels() (orders, customers *schema.Model) {
	countries := schema.NewModel("country", "countries", "code", "name")
	customers = schema.NewModel("customer", "customers", "name", "region")
	customers.BelongsTo("country", countries, "")
	orders = schema.NewModel("order", "orders", "category", "created_at", "status")
	orders.BelongsTo("customer", customers, "")
	customers.HasMany("orders", orders, "")
	return orders, customers
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want query.Direction
	}{
		{"desc", query.Desc},
		{" DESC ", query.Desc},
		{"asc", query.Asc},
		{"", query.Asc},
		{"sideways", query.Asc},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, query.ParseDirection(tt.in))
		})
	}
}

func TestBuilderDefaultSelect(t *testing.T) {
	orders, _ := testModels()
	sql, err := query.New(orders).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT orders.*\nFROM orders", sql)
}

func TestBuilderWhere(t *testing.T) {
	orders, _ := testModels()

	tests := []struct {
		name  string
		build func(q *query.Builder)
		want  string
	}{
		{
			name:  "equality",
			build: func(q *query.Builder) { q.Where("category", "A") },
			want:  "category = 'A'",
		},
		{
			name:  "null",
			build: func(q *query.Builder) { q.Where("category", nil) },
			want:  "category IS NULL",
		},
		{
			name: "typed nil pointer",
			build: func(q *query.Builder) {
				var s *string
				q.Where("category", s)
			},
			want: "category IS NULL",
		},
		{
			name:  "quotes escaped",
			build: func(q *query.Builder) { q.Where("category", "O'Brien") },
			want:  "category = 'O''Brien'",
		},
		{
			name:  "date",
			build: func(q *query.Builder) { q.WhereDate("created_at", "2024-01-05") },
			want:  "date(created_at) = '2024-01-05'",
		},
		{
			name:  "raw expression",
			build: func(q *query.Builder) { q.WhereExpr("date(date_trunc('month', created_at))", "2024-01-01") },
			want:  "date(date_trunc('month', created_at)) = '2024-01-01'",
		},
		{
			name: "has",
			build: func(q *query.Builder) {
				q.WhereHas("customer", func(sub query.Query) { sub.Where("region", "EU") })
			},
			want: "EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id AND region = 'EU')",
		},
		{
			name:  "has without constraint",
			build: func(q *query.Builder) { q.WhereHas("customer", nil) },
			want:  "EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id)",
		},
		{
			name: "nested relation path",
			build: func(q *query.Builder) {
				q.WhereHas("customer.country", func(sub query.Query) { sub.Where("code", "DE") })
			},
			want: "EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id AND " +
				"EXISTS (SELECT 1 FROM countries WHERE countries.id = customers.country_id AND code = 'DE'))",
		},
		{
			name: "nested group keeps or inside parentheses",
			build: func(q *query.Builder) {
				q.Where("category", "A")
				q.WhereNested(func(sub query.Query) {
					sub.WhereHas("customer", func(c query.Query) { c.Where("region", nil) })
					sub.OrWhereDoesntHave("customer")
				})
				q.WhereDate("created_at", "2024-01-05")
			},
			want: "category = 'A' AND (" +
				"EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id AND region IS NULL) OR " +
				"NOT EXISTS (SELECT 1 FROM customers WHERE customers.id = orders.customer_id)" +
				") AND date(created_at) = '2024-01-05'",
		},
		{
			name:  "empty nested group adds nothing",
			build: func(q *query.Builder) { q.WhereNested(func(query.Query) {}) },
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query.New(orders)
			tt.build(q)
			require.NoError(t, q.Err())
			assert.Equal(t, tt.want, q.WhereSQL())
		})
	}
}

func TestBuilderSelfRelationAlias(t *testing.T) {
	employees := schema.NewModel("employee", "employees", "name")
	employees.BelongsTo("manager", employees, "")

	q := query.New(employees)
	q.WhereHas("manager", func(sub query.Query) { sub.Where("name", "Ada") })

	assert.Equal(t,
		"EXISTS (SELECT 1 FROM employees AS employees_1 WHERE employees_1.id = employees.manager_id AND name = 'Ada')",
		q.WhereSQL())
}

func TestBuilderSelfJoinQualifiesColumns(t *testing.T) {
	employees := schema.NewModel("employee", "employees", "name", "team")
	employees.BelongsTo("manager", employees, "")

	q := query.New(employees)
	q.Where("name", "Ada")
	q.WhereNested(func(sub query.Query) {
		sub.Where("team", "core")
		sub.OrWhereDoesntHave("manager")
	})
	q.WhereHas("manager", func(sub query.Query) { sub.Where("name", "Grace") })
	q.OrderByLeftJoin("manager.name", query.Desc)
	q.OrderBy("name", query.Asc)

	sql, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT employees.*
FROM employees
LEFT JOIN employees AS manager ON manager.id = employees.manager_id
WHERE employees.name = 'Ada' AND (employees.team = 'core' OR NOT EXISTS (SELECT 1 FROM employees AS employees_1 WHERE employees_1.id = employees.manager_id)) AND EXISTS (SELECT 1 FROM employees AS employees_2 WHERE employees_2.id = employees.manager_id AND name = 'Grace')
ORDER BY manager.name DESC NULLS LAST, employees.name ASC`, sql)
}

func TestBuilderNestedJoinsOuterStatement(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	var ref string
	q.WhereNested(func(sub query.Query) {
		var err error
		ref, err = sub.JoinRelation("customer")
		require.NoError(t, err)
		sub.Where(ref+".region", "EU")
	})

	sql, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "customers", ref)
	assert.Equal(t, `SELECT orders.*
FROM orders
LEFT JOIN customers ON customers.id = orders.customer_id
WHERE (customers.region = 'EU')`, sql)
}

func TestBuilderUnknownRelation(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	q.WhereHas("supplier", nil)
	q.OrderByLeftJoin("warehouse.city", query.Asc)

	sql, err := q.ToSQL()
	require.Error(t, err)
	assert.True(t, nestgroup.IsUnknownRelationErr(err))
	assert.Contains(t, err.Error(), "supplier")
	assert.Contains(t, err.Error(), "warehouse")
	assert.Contains(t, sql, "ORDER BY warehouse.city ASC")
	assert.NotContains(t, sql, "WHERE")
}

func TestBuilderOrderByLeftJoin(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	q.OrderBy("category", query.Asc)
	q.OrderByLeftJoin("customer.region", query.Desc)
	q.OrderByLeftJoin("customer.country.name", query.Asc)
	q.OrderByLeftJoin("created_at", query.Asc)

	sql, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT orders.*
FROM orders
LEFT JOIN customers ON customers.id = orders.customer_id
LEFT JOIN countries ON countries.id = customers.country_id
ORDER BY category ASC, customers.region DESC NULLS LAST, countries.name ASC NULLS LAST, created_at ASC`, sql)
}

func TestBuilderJoinRelationDeduplicates(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	first, err := q.JoinRelation("customer")
	require.NoError(t, err)
	second, err := q.JoinRelation("customer")
	require.NoError(t, err)

	assert.Equal(t, "customers", first)
	assert.Equal(t, first, second)
	assert.Len(t, q.Statement().Joins, 1)
}

func TestBuilderJoinRelationAliasesTakenTable(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	ref, err := q.JoinRelation("customer.orders")
	require.NoError(t, err)

	assert.Equal(t, "customer_orders", ref)
	sql, _ := q.ToSQL()
	assert.Contains(t, sql, "LEFT JOIN orders AS customer_orders ON customer_orders.customer_id = customers.id")
}

func TestBuilderGroupedSelect(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders)
	_, err := q.JoinRelation("customer")
	require.NoError(t, err)
	q.GroupBy("category")
	q.GroupBy("customers.region")
	q.GroupByRaw("date(created_at)")
	q.Limit(10)

	sql, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT category, customers.region, date(created_at), count(*) AS aggregate
FROM orders
LEFT JOIN customers ON customers.id = orders.customer_id
GROUP BY category, customers.region, date(created_at)
LIMIT 10`, sql)
	assert.Equal(t, []string{"category", "customers.region", "date(created_at)"}, q.Groups())
}

func TestBuilderExplicitColumns(t *testing.T) {
	orders, _ := testModels()

	q := query.New(orders).Select("orders.id", "category")
	q.GroupBy("category")

	sql, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT orders.id, category\nFROM orders\nGROUP BY category", sql)
}
