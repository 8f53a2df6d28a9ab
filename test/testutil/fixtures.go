package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Fixtures provides factory functions for creating shop test data.
type Fixtures struct {
	db  *sql.DB
	ctx context.Context
}

// NewFixtures creates a new Fixtures instance.
func NewFixtures(ctx context.Context, db *sql.DB) *Fixtures {
	return &Fixtures{db: db, ctx: ctx}
}

// CreateCountry inserts a country and returns its id.
func (f *Fixtures) CreateCountry(code, name string) (int64, error) {
	var id int64
	err := f.db.QueryRowContext(f.ctx,
		"INSERT INTO countries (code, name) VALUES ($1, $2) RETURNING id", code, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert country: %w", err)
	}
	return id, nil
}

// CreateCustomer inserts a customer and returns its id. A nil region or
// country is stored as NULL.
func (f *Fixtures) CreateCustomer(name string, region *string, countryID *int64) (int64, error) {
	var id int64
	err := f.db.QueryRowContext(f.ctx,
		"INSERT INTO customers (name, region, country_id) VALUES ($1, $2, $3) RETURNING id",
		name, region, countryID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

// Order is one row for CreateOrders. Nil pointers are stored as NULL.
type Order struct {
	Category   *string
	Status     string
	CreatedAt  *time.Time
	CustomerID *int64
}

// CreateOrders loads orders with COPY FROM through the pgx connection
// underneath the database/sql pool.
func (f *Fixtures) CreateOrders(orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	conn, err := f.db.Conn(f.ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	rows := make([][]any, len(orders))
	for i, o := range orders {
		status := o.Status
		if status == "" {
			status = "pending"
		}
		rows[i] = []any{o.Category, status, o.CreatedAt, o.CustomerID}
	}

	return conn.Raw(func(driverConn any) error {
		stdlibConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("not a pgx connection (got %T)", driverConn)
		}
		_, err := stdlibConn.Conn().CopyFrom(f.ctx,
			pgx.Identifier{"orders"},
			[]string{"category", "status", "created_at", "customer_id"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("COPY FROM orders: %w", err)
		}
		return nil
	})
}

// Ptr returns a pointer to v, for optional fixture fields.
func Ptr[T any](v T) *T {
	return &v
}
