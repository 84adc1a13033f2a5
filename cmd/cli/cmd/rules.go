// Package cmd - rules commands
package cmd

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ifc-cost/core/rules"
	"ifc-cost/core/ui"
	"ifc-cost/internal/errors"
)

var rulesFormat string

// rulesCmd groups rule inspection commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect cost rules",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// rulesShowCmd prints the effective rule set
var rulesShowCmd = &cobra.Command{
	Use:   "show [table]",
	Short: "Print the effective rules, defaults included",
	Long: `Print the rule set the engine would use, or a single table of it.

Tables: ` + strings.Join(rules.Tables, ", "),
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesShow,
}

// rulesValidateCmd checks every table of the configured source
var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rule tables against their schemas",
	Args:  cobra.NoArgs,
	RunE:  runRulesValidate,
}

func init() {
	rulesShowCmd.Flags().StringVarP(&rulesFormat, "format", "f", "json", "output format (json, yaml)")

	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	rs, err := newLoader().Load(cmd.Context())
	if err != nil {
		return err
	}

	var value interface{} = rs
	if len(args) > 0 {
		table, ok := rs.Table(args[0])
		if !ok {
			return errors.NotFound("rule table", args[0])
		}
		value = table
	}

	out := cmd.OutOrStdout()
	switch rulesFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(value)
	}
	return errors.Input("unknown format: " + rulesFormat)
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source := rules.NewSource(cfg.Rules.Dir, cfg.Rules.HCLFile)
	w := ui.NewWriter(cmd.OutOrStdout(), noColor)
	w.SubHeader(source.Name())

	invalid := 0
	for _, table := range rules.Tables {
		data, err := source.Table(ctx, table)
		switch {
		case stderrors.Is(err, rules.ErrSourceUnavailable):
			w.Info("%s: not provided, using defaults", table)
			continue
		case err != nil:
			invalid++
			w.Error("%s: %v", table, err)
			continue
		}

		if err := rules.ValidateTable(table, data); err != nil {
			invalid++
			w.Error("%s: %v", table, err)
			continue
		}
		w.Success("%s", table)
	}

	if invalid > 0 {
		return errors.Newf(errors.TypeRuleDataMalformed, "%d invalid rule tables", invalid)
	}

	// decoding can still fail where the schema is permissive
	if _, err := rules.NewLoader(source, rules.WithSchemaValidation(false)).Load(ctx); err != nil {
		w.Error("%v", err)
		return err
	}
	return nil
}
