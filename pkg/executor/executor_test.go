package executor_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/nestgroup/pkg/executor"
	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/schema"
	"github.com/pthm/nestgroup/pkg/table"
)

// cannedDriver answers every query with the configured result and records
// the SQL it was asked to run.
type cannedDriver struct {
	mu      sync.Mutex
	columns []string
	rows    [][]driver.Value
	err     error
	queries []string
}

var canned = &cannedDriver{}

func init() {
	sql.Register("nestgroup-canned", canned)
}

func (d *cannedDriver) respond(columns []string, rows ...[]driver.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.columns, d.rows, d.err, d.queries = columns, rows, nil, nil
}

func (d *cannedDriver) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err, d.queries = err, nil
}

func (d *cannedDriver) lastQuery() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queries) == 0 {
		return ""
	}
	return d.queries[len(d.queries)-1]
}

func (d *cannedDriver) Open(string) (driver.Conn, error) { return cannedConn{d}, nil }

type cannedConn struct{ d *cannedDriver }

func (c cannedConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c cannedConn) Close() error                         { return nil }
func (c cannedConn) Begin() (driver.Tx, error)            { return nil, errors.New("not supported") }

func (c cannedConn) QueryContext(_ context.Context, q string, _ []driver.NamedValue) (driver.Rows, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.queries = append(c.d.queries, q)
	if c.d.err != nil {
		return nil, c.d.err
	}
	return &cannedRows{columns: c.d.columns, rows: c.d.rows}, nil
}

type cannedRows struct {
	columns []string
	rows    [][]driver.Value
	next    int
}

func (r *cannedRows) Columns() []string { return r.columns }
func (r *cannedRows) Close() error      { return nil }

func (r *cannedRows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.next])
	r.next++
	return nil
}

func openCanned(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("nestgroup-canned", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ordersTable(t *testing.T) (*table.Table, grouping.Grouper) {
	t.Helper()
	customers := schema.NewModel("customer", "customers", "region")
	orders := schema.NewModel("order", "orders", "category", "created_at", "customer_id")
	orders.BelongsTo("customer", customers, "")

	g := grouping.New("category", grouping.WithID("nested")).
		ThenBy("customer.region").
		ThenByDate("created_at", grouping.Day)

	tbl, err := table.NewBuilder().Table("orders", orders, func(b *table.Builder) error {
		return b.Groups(g)
	})
	require.NoError(t, err)
	return tbl, g
}

func TestSummaries(t *testing.T) {
	tbl, g := ordersTable(t)
	day := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	canned.respond([]string{"category", "region", "date", "aggregate"},
		[]driver.Value{"A", "EU", day, int64(2)},
		[]driver.Value{[]byte("A"), nil, day, int64(1)},
		[]driver.Value{nil, nil, nil, int64(3)},
	)

	got, err := executor.Summaries(context.Background(), openCanned(t), tbl, g)
	require.NoError(t, err)

	want, _ := tbl.SummaryQuery(g).ToSQL()
	assert.Equal(t, want, canned.lastQuery())

	require.Len(t, got, 3)
	assert.Equal(t, executor.Summary{
		Key:    `["A","EU","2024-01-05"]`,
		HasKey: true,
		Title:  "A / EU / Jan 2024",
		Values: []any{"A", "EU", day},
		Count:  2,
	}, got[0])
	assert.Equal(t, `["A",null,"2024-01-05"]`, got[1].Key)
	assert.Equal(t, "A", got[1].Values[0])
	assert.False(t, got[2].HasKey)
	assert.Equal(t, int64(3), got[2].Count)
}

func TestSummariesQueryError(t *testing.T) {
	tbl, g := ordersTable(t)
	canned.fail(errors.New("connection refused"))

	_, err := executor.Summaries(context.Background(), openCanned(t), tbl, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying summaries")
}

func TestRows(t *testing.T) {
	tbl, g := ordersTable(t)
	canned.respond([]string{"id", "category"},
		[]driver.Value{int64(1), "A"},
		[]driver.Value{int64(2), []byte("A")},
	)

	rows, err := executor.Rows(context.Background(), openCanned(t), tbl, g, `["A","EU"]`, query.Desc, 5)
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{
		{"id": int64(1), "category": "A"},
		{"id": int64(2), "category": "A"},
	}, rows)

	q := canned.lastQuery()
	assert.Contains(t, q, "WHERE category = 'A' AND EXISTS (")
	assert.Contains(t, q, "ORDER BY category DESC")
	assert.Contains(t, q, "LIMIT 5")
}

func TestRunReportsBuilderErrors(t *testing.T) {
	orders := schema.NewModel("order", "orders")
	q := query.New(orders)
	q.WhereHas("nothing", nil)

	_, err := executor.Run(context.Background(), openCanned(t), q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building query")
}

func TestOpen(t *testing.T) {
	t.Run("lib/pq", func(t *testing.T) {
		db, err := executor.Open("postgres", "postgres://localhost/shop?sslmode=disable")
		require.NoError(t, err)
		assert.NoError(t, db.Close())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := executor.Open("mysql", "root@/shop")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
