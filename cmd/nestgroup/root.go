package main

import (
	"log/slog"
	"os"

	"github.com/goodsign/monday"
	"github.com/spf13/cobra"

	"github.com/pthm/nestgroup/internal/cli"
	"github.com/pthm/nestgroup/internal/logging"
	"github.com/pthm/nestgroup/pkg/definition"
	"github.com/pthm/nestgroup/pkg/grouping"
	"github.com/pthm/nestgroup/pkg/table"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     *slog.Logger

	// Persistent flags
	cfgFile        string
	definitionFile string
	tableName      string
	groupID        string
	verbose        int
	quiet          bool
)

var rootCmd = &cobra.Command{
	Use:   "nestgroup",
	Short: "Multi-level table grouping",
	Long: `nestgroup - Multi-level table grouping

nestgroup groups table records by a base column and any number of nested
levels, deriving composite group keys and titles and the SQL needed to
group, order and re-scope queries by them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		level := logging.LevelFromVerbosity(verbose, quiet, logging.LevelFromString(cfg.LogLevel))
		logger = logging.NewLogger(os.Stderr, level)
		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupDefinition = "definition"
	groupDatabase   = "database"
	groupUtility    = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: auto-discover nestgroup.yaml)")
	pf.StringVar(&definitionFile, "definition", "", "definition file (default: from config)")
	pf.StringVar(&tableName, "table", "", "table name (default: the only table in the definition)")
	pf.StringVar(&groupID, "group", "", "group id (default: the table's default group)")
	pf.CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupDefinition, Title: "Definition:"},
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	validateCmd.GroupID = groupDefinition
	keysCmd.GroupID = groupDefinition
	sqlCmd.GroupID = groupDefinition
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(sqlCmd)

	groupsCmd.GroupID = groupDatabase
	rowsCmd.GroupID = groupDatabase
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(rowsCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadDefinition loads the definition file named by flag or config.
func loadDefinition() (*definition.Definition, error) {
	path := resolveString(definitionFile, cfg.Definition)

	var locale monday.Locale = grouping.DefaultLocale
	if cfg.Locale != "" {
		if !grouping.ValidLocale(cfg.Locale) {
			return nil, cli.ConfigError("unsupported locale "+cfg.Locale, nil)
		}
		locale = monday.Locale(cfg.Locale)
	}

	def, err := definition.Load(path, definition.WithLocale(locale), definition.WithLogger(logger))
	if err != nil {
		return nil, cli.DefinitionError("loading definition "+path, err)
	}
	logger.Debug("definition loaded", "path", path, "panel", def.Panel, "tables", len(def.Builder.Tables()))
	return def, nil
}

// resolveGroup picks the table and group selected by flags. Without
// --table a definition holding exactly one table selects it.
func resolveGroup(def *definition.Definition) (*table.Table, grouping.Grouper, error) {
	name := tableName
	if name == "" {
		tables := def.Builder.Tables()
		if len(tables) != 1 {
			return nil, nil, cli.GeneralError("--table is required when the definition has more than one table", nil)
		}
		name = tables[0].Name()
	}

	t, g, err := def.Group(name, groupID)
	if err != nil {
		return nil, nil, cli.GeneralError("resolving group", err)
	}
	return t, g, nil
}
