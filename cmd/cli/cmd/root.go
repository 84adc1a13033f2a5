// Package cmd provides the CLI commands for ifc-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ifc-cost/core/rules"
	"ifc-cost/internal/config"
	"ifc-cost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	noColor  bool
	rulesDir string
	rulesHCL string

	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ifc-cost",
	Short: "Estimate costs for IFC building elements",
	Long: `ifc-cost prices building-model elements with configurable cost rules.

Material, connection, labor and surface-treatment costs are computed per
element from rule tables and aggregated into a project breakdown.

Examples:
  ifc-cost calculate elements.json
  ifc-cost calculate --rules ./rules --format json elements.json
  ifc-cost rules show material_prices --format yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&rulesDir, "rules", "", "rules directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rulesHCL, "rules-hcl", "", "rules.hcl bundle (overrides --rules)")

	// Add subcommands
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if rulesDir != "" {
		cfg.Rules.Dir = rulesDir
	}
	if rulesHCL != "" {
		cfg.Rules.HCLFile = rulesHCL
	}

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// newLoader builds the loader for the configured rule source
func newLoader() *rules.SourceLoader {
	source := rules.NewSource(cfg.Rules.Dir, cfg.Rules.HCLFile)
	logging.Named(logging.ComponentCLI).Debug("using rule source", zap.String("source", source.Name()))
	return rules.NewLoader(source,
		rules.WithSchemaValidation(cfg.Rules.ValidateSchema),
		rules.WithLogger(logging.Named(logging.ComponentRules)))
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ifc-cost version %s\n", Version)
	},
}
