package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a definition file",
	Long:  `Load a definition file, build its models and tables, and list the configured groups.`,
	Example: `  # Validate a specific definition file
  nestgroup validate --definition defs/shop.yaml

  # Validate using config file settings
  nestgroup validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDefinition()
		if err != nil {
			return err
		}
		if quiet {
			return nil
		}

		w := cmd.OutOrStdout()
		tables := def.Builder.Tables()
		fmt.Fprintf(w, "Definition is valid. Panel %q, %d models, %d tables:\n", def.Panel, len(def.Models), len(tables))
		for _, t := range tables {
			fmt.Fprintf(w, "  - %s (model %s)\n", t.Name(), t.Model().Name)
			for _, g := range t.Groups() {
				fmt.Fprintf(w, "      %s %q:", g.ID(), g.Label())
				for i, l := range g.Levels() {
					if i > 0 {
						fmt.Fprint(w, " >")
					}
					fmt.Fprintf(w, " %s", l)
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	},
}
