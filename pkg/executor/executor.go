// Package executor runs grouped table queries over database/sql.
//
// Both PostgreSQL drivers are linked in: "pgx" (jackc/pgx stdlib, the
// default) and "postgres" (lib/pq).
//
//	db, err := executor.Open("pgx", "postgres://localhost/shop")
//	summaries, err := executor.Summaries(ctx, db, orders, group)
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/record"
	"github.com/pthm/nestgroup/pkg/table"
)

// Queryer is the minimal interface needed to read grouped rows.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DefaultDriver is the driver Open uses when none is named.
const DefaultDriver = "pgx"

// Open opens a database handle with one of the linked drivers.
func Open(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	switch driver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use pgx or postgres)", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// Summary is one group as counted by the database.
type Summary struct {
	Key    string
	HasKey bool
	Title  string
	Values []any
	Count  int64
}

// Summaries runs the table's summary query for g and returns one entry per
// group. Keys and titles are derived from the returned grouping values
// with the same rules used for in-memory records, so they can be passed
// straight back to Rows.
func Summaries(ctx context.Context, db Queryer, t *table.Table, g grouping.Grouper) ([]Summary, error) {
	text, err := t.SummaryQuery(g).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building summary query: %w", err)
	}

	rows, err := db.QueryContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	levels := g.Levels()
	var out []Summary
	for rows.Next() {
		dest := make([]any, len(levels)+1)
		ptrs := make([]any, len(dest))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}

		values := make(map[string]any, len(levels))
		for i, l := range levels {
			dest[i] = normalizeScanned(dest[i])
			values[l.Column] = dest[i]
		}
		rec := record.New(t.Model(), values)

		count, err := toInt64(dest[len(levels)])
		if err != nil {
			return nil, fmt.Errorf("scanning summary count: %w", err)
		}

		key, ok := g.DeriveKey(rec)
		out = append(out, Summary{
			Key:    key,
			HasKey: ok,
			Title:  g.RenderTitle(rec),
			Values: dest[:len(levels)],
			Count:  count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return out, nil
}

// Rows returns the rows of the group key identifies, ordered by the
// group's levels. A limit of zero returns every row.
func Rows(ctx context.Context, db Queryer, t *table.Table, g grouping.Grouper, key string, dir query.Direction, limit int) ([]map[string]any, error) {
	return Run(ctx, db, t.ScopedQuery(g, key, dir).Limit(limit))
}

// Run executes an assembled query and returns each row keyed by column name.
func Run(ctx context.Context, db Queryer, q *query.Builder) ([]map[string]any, error) {
	text, err := q.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := db.QueryContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		dest := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = normalizeScanned(dest[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// normalizeScanned converts driver byte slices to strings.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	}
	return 0, fmt.Errorf("unexpected count type %T", v)
}
