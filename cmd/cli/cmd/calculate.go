// Package cmd - calculate command
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"ifc-cost/core/engine"
	"ifc-cost/core/output"
	"ifc-cost/core/provider"
	"ifc-cost/core/types"
	"ifc-cost/internal/errors"
)

var (
	outputFormat string
	projectName  string
	workers      int
	showItems    bool
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate [elements.json]",
	Short: "Calculate costs for a list of building elements",
	Long: `Price every element in an element file and print the project breakdown.

The file holds either a JSON array of elements or an object with an
"elements" array and an optional "project_name". Use "-" or omit the
argument to read from stdin.

Examples:
  ifc-cost calculate elements.json
  ifc-cost calculate --format json --project "Hall A" elements.json
  ifc-cost calculate --rules-hcl rules.hcl --items elements.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	calculateCmd.Flags().StringVarP(&projectName, "project", "p", "", "project name")
	calculateCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default from config)")
	calculateCmd.Flags().BoolVar(&showItems, "items", false, "list every cost item")
}

// elementFile is the object form of an element file
type elementFile struct {
	ProjectName string          `json:"project_name"`
	Elements    []types.Element `json:"elements"`
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	input, err := readElements(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.Format(outputFormat), noColor)
	if err != nil {
		return errors.Wrap(errors.TypeInput, "invalid --format", err)
	}
	if cli, ok := formatter.(*output.CLIFormatter); ok {
		cli.Items = showItems
	}

	n := cfg.Engine.Workers
	if workers > 0 {
		n = workers
	}

	eng := engine.New(newLoader(), provider.DefaultRegistry(),
		engine.WithWorkers(n),
		engine.WithProjectName(cfg.Engine.ProjectName))

	name := input.ProjectName
	if projectName != "" {
		name = projectName
	}

	project, err := eng.Run(ctx, &engine.Request{
		ProjectName: name,
		Elements:    input.Elements,
	})
	if err != nil {
		return err
	}

	return formatter.Render(cmd.OutOrStdout(), project)
}

// readElements accepts a bare element array or an elementFile object
func readElements(stdin io.Reader, path string) (*elementFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read %s", path)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var elements []types.Element
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "invalid element list in %s", path)
		}
		return &elementFile{Elements: elements}, nil
	}

	var file elementFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "invalid element file %s", path)
	}
	if file.Elements == nil {
		return nil, errors.Input(fmt.Sprintf("%s: no \"elements\" array", path))
	}
	return &file, nil
}
