package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/nestgroup/internal/cli"
	"github.com/pthm/nestgroup/pkg/executor"
	"github.com/pthm/nestgroup/pkg/query"
)

var (
	dbURL         string
	rowsKey       string
	rowsLimit     int
	rowsDirection string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Count a table's groups in the database",
	Long:  `Run the grouping query against the database and print each group's key, title and row count.`,
	Example: `  # Count groups of the orders table
  nestgroup groups --table orders --db postgres://localhost/shop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDefinition()
		if err != nil {
			return err
		}
		t, g, err := resolveGroup(def)
		if err != nil {
			return err
		}

		db, err := openDB(dbURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		summaries, err := executor.Summaries(cmd.Context(), db, t, g)
		if err != nil {
			return cli.GeneralError("counting groups", err)
		}

		w := cmd.OutOrStdout()
		for _, s := range summaries {
			key := s.Key
			if !s.HasKey {
				key = "(no key)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", key, s.Title, s.Count)
		}
		return nil
	},
}

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Fetch the rows of one group",
	Long:  `Run the scoped query for a composite group key and print the matching rows.`,
	Example: `  # Rows of one group
  nestgroup rows --table orders --key '["A","EU","2024-01-05"]' --db postgres://localhost/shop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rowsKey == "" {
			return fmt.Errorf("--key is required")
		}

		def, err := loadDefinition()
		if err != nil {
			return err
		}
		t, g, err := resolveGroup(def)
		if err != nil {
			return err
		}

		db, err := openDB(dbURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		dir := query.ParseDirection(resolveString(rowsDirection, cfg.Query.Direction))
		limit := rowsLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Query.Limit
		}

		rows, err := executor.Rows(cmd.Context(), db, t, g, rowsKey, dir, limit)
		if err != nil {
			return cli.GeneralError("fetching rows", err)
		}

		w := cmd.OutOrStdout()
		for _, row := range rows {
			fmt.Fprintln(w, formatRow(row))
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rows\n", len(rows))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{groupsCmd, rowsCmd} {
		c.Flags().StringVar(&dbURL, "db", "", "database URL (default: from config)")
	}
	f := rowsCmd.Flags()
	f.StringVar(&rowsKey, "key", "", "composite group key")
	f.StringVar(&rowsDirection, "direction", "", "order direction: asc or desc (default: from config)")
	f.IntVar(&rowsLimit, "limit", 0, "row limit, 0 for none (default: from config)")
}

// resolveDSN returns the database URL from flag or config.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	if dsn == "" {
		return "", cli.ConfigError("database URL is required (use --db or set in config)", nil)
	}
	return dsn, nil
}

func openDB(flagDSN string) (*sql.DB, error) {
	dsn, err := resolveDSN(flagDSN)
	if err != nil {
		return nil, err
	}

	db, err := executor.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, cli.DBConnectError("connecting to database", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	logger.Debug("database connected", "driver", cfg.Database.Driver)
	return db, nil
}

// formatRow renders a row as space-separated column=value pairs in column order.
func formatRow(row map[string]any) string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s=%v", c, row[c])
	}
	return strings.Join(parts, " ")
}
