package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/nestgroup/internal/cli"
	"github.com/pthm/nestgroup/pkg/query"
)

var (
	sqlKey       string
	sqlDirection string
	sqlSummary   bool
	sqlLimit     int
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the SQL for a group",
	Long: `Print the SQL the selected group produces. By default this is the ordered
list query; --summary prints the grouping query and --key the query scoped to
one group.`,
	Example: `  # Ordered list query for the default group
  nestgroup sql --table orders

  # Grouping query with counts
  nestgroup sql --table orders --summary

  # Rows of one group, newest first
  nestgroup sql --table orders --key '["A","EU","2024-01-05"]' --direction desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sqlSummary && sqlKey != "" {
			return fmt.Errorf("--summary and --key are mutually exclusive")
		}

		def, err := loadDefinition()
		if err != nil {
			return err
		}
		t, g, err := resolveGroup(def)
		if err != nil {
			return err
		}

		dir := query.ParseDirection(resolveString(sqlDirection, cfg.Query.Direction))
		limit := sqlLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.Query.Limit
		}

		var q *query.Builder
		switch {
		case sqlSummary:
			q = t.SummaryQuery(g)
		case sqlKey != "":
			q = t.ScopedQuery(g, sqlKey, dir).Limit(limit)
		default:
			q = t.ListQuery(g, dir).Limit(limit)
		}

		text, err := q.ToSQL()
		if err != nil {
			return cli.DefinitionError("building query", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	f := sqlCmd.Flags()
	f.StringVar(&sqlKey, "key", "", "composite group key to scope to")
	f.StringVar(&sqlDirection, "direction", "", "order direction: asc or desc (default: from config)")
	f.BoolVar(&sqlSummary, "summary", false, "print the grouping query")
	f.IntVar(&sqlLimit, "limit", 0, "row limit, 0 for none (default: from config)")
}
