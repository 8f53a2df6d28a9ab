package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/nestgroup/pkg/record"
	"github.com/pthm/nestgroup/pkg/schema"
)

var keysRecords string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Derive group keys and titles for records",
	Long: `Read a YAML list of records, partition them by the selected group and print
each bucket's composite key, title and size. Related records are nested maps
keyed by relation name.`,
	Example: `  # Partition records by the default group of the orders table
  nestgroup keys --table orders --records testdata/orders.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if keysRecords == "" {
			return fmt.Errorf("--records is required")
		}

		def, err := loadDefinition()
		if err != nil {
			return err
		}
		t, g, err := resolveGroup(def)
		if err != nil {
			return err
		}

		records, err := readRecords(keysRecords, t.Model())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, b := range t.Partition(g, records) {
			key := b.Key
			if !b.HasKey {
				key = "(no key)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", key, b.Title, len(b.Records))
		}
		return nil
	},
}

func init() {
	keysCmd.Flags().StringVar(&keysRecords, "records", "", "YAML file holding a list of records")
}

// readRecords loads a YAML list of attribute maps as records of model.
func readRecords(path string, model *schema.Model) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing records %s: %w", path, err)
	}

	out := make([]record.Record, len(raw))
	for i, values := range raw {
		out[i] = record.New(model, values)
	}
	return out, nil
}
