// Package output provides output formatting.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"

	"ifc-cost/core/types"
	"ifc-cost/core/ui"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given breakdown
	Render(w io.Writer, p *types.ProjectCostBreakdown) error
}

// NewFormatter returns the formatter for a format name
func NewFormatter(format Format, noColor bool) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case FormatCLI, "":
		return &CLIFormatter{NoColor: noColor}, nil
	}
	return nil, fmt.Errorf("unknown output format: %s", format)
}

// JSONFormatter writes the output contract as JSON
type JSONFormatter struct {
	Indent bool
}

// Format returns "json"
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the document
func (f *JSONFormatter) Render(w io.Writer, p *types.ProjectCostBreakdown) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(NewDocument(p))
}

// Marshal returns the compact JSON of a breakdown.
// Identical breakdowns yield identical bytes.
func Marshal(p *types.ProjectCostBreakdown) ([]byte, error) {
	return json.Marshal(NewDocument(p))
}

// CLIFormatter renders tables for a terminal
type CLIFormatter struct {
	NoColor bool

	// Items lists every cost item below the element table
	Items bool
}

// Format returns "cli"
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render prints element, category and total sections
func (f *CLIFormatter) Render(w io.Writer, p *types.ProjectCostBreakdown) error {
	out := ui.NewWriter(w, f.NoColor)

	out.Header(p.ProjectName)

	elements := out.NewTable("ELEMENT", "TYPE", "ITEMS", "SUBTOTAL", "WASTE", "TOTAL").AlignRight(2, 3, 4, 5)
	for _, ec := range p.ElementCosts {
		elements.AddRow(
			ec.ElementName,
			ec.ElementType,
			fmt.Sprintf("%d", len(ec.CostItems)),
			ec.Subtotal.StringFixed(2),
			ec.WasteCost.StringFixed(2),
			ec.Total.StringFixed(2),
		)
	}
	elements.Render()

	if f.Items {
		out.Println("")
		out.SubHeader("Cost items")
		items := out.NewTable("ELEMENT", "CATEGORY", "ITEM", "QUANTITY", "UNIT", "UNIT PRICE", "TOTAL").AlignRight(3, 5, 6)
		for _, ec := range p.ElementCosts {
			for _, item := range ec.CostItems {
				items.AddRow(
					ec.ElementID,
					string(item.Category),
					item.ItemType,
					item.Quantity.String(),
					item.Unit,
					item.UnitPrice.StringFixed(2),
					item.TotalPrice.StringFixed(2),
				)
			}
		}
		items.Render()
	}

	out.Header("Totals by category")
	categories := out.NewTable("CATEGORY", "TOTAL").AlignRight(1)
	keys := lo.Map(lo.Keys(p.CategoryTotals), func(c types.Category, _ int) string { return string(c) })
	sort.Strings(keys)
	for _, k := range keys {
		categories.AddRow(k, p.CategoryTotals[types.Category(k)].StringFixed(2))
	}
	categories.Render()
	out.Println("")

	summary := out.NewCostSummary()
	summary.GrandTotal = p.GrandTotal.StringFixed(2)
	summary.Elements = len(p.ElementCosts)
	summary.Items = p.ItemCount()
	summary.Failures = len(p.Failures)
	summary.Render()

	for _, failure := range p.Failures {
		out.Debug("%s: %s", failure.ElementID, failure.Error)
	}
	return nil
}
