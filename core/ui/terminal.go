// Package ui - Terminal user interface
// Rich CLI output with tables and colors.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// palette holds the colors of one writer
type palette struct {
	header  *color.Color
	bold    *color.Color
	dim     *color.Color
	success *color.Color
	warning *color.Color
	err     *color.Color
	info    *color.Color
	money   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		header:  color.New(color.FgCyan, color.Bold),
		bold:    color.New(color.Bold),
		dim:     color.New(color.Faint),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		info:    color.New(color.FgBlue),
		money:   color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.bold, p.dim, p.success, p.warning, p.err, p.info, p.money} {
			c.DisableColor()
		}
	}
	return p
}

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	colors    palette
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		colors:    newPalette(noColor),
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes formatted text with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, w.colors.header.Sprint("━━━ "+title+" ━━━"))
	fmt.Fprintln(w.out)
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	fmt.Fprintln(w.out, w.colors.bold.Sprint("▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	fmt.Fprintln(w.out, w.colors.success.Sprint("✓ ")+fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	fmt.Fprintln(w.out, w.colors.warning.Sprint("⚠ ")+fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintln(w.out, w.colors.err.Sprint("✗ ")+fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	fmt.Fprintln(w.out, w.colors.info.Sprint("ℹ ")+fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	fmt.Fprintln(w.out, w.colors.dim.Sprint("  "+fmt.Sprintf(format, args...)))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
	right   []bool
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runeLen(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
		right:   make([]bool, len(headers)),
	}
}

// AlignRight right-aligns the given columns
func (t *Table) AlignRight(columns ...int) *Table {
	for _, c := range columns {
		if c >= 0 && c < len(t.right) {
			t.right[c] = true
		}
	}
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := runeLen(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	fmt.Fprintln(t.w.out, t.w.colors.bold.Sprint(t.line(t.headers)))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	fmt.Fprintln(t.w.out, strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		fmt.Fprintln(t.w.out, t.line(row))
	}
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", t.widths[i]-runeLen(cell))
		if t.right[i] {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

func runeLen(s string) int {
	return len([]rune(s))
}

// CostSummary renders the totals box
type CostSummary struct {
	w          *Writer
	GrandTotal string
	Elements   int
	Items      int
	Failures   int
}

// NewCostSummary creates a cost summary
func (w *Writer) NewCostSummary() *CostSummary {
	return &CostSummary{w: w}
}

// Render prints the cost summary
func (s *CostSummary) Render() {
	c := s.w.colors
	fmt.Fprintln(s.w.out, c.bold.Sprint("╭─────────────────────────────────────╮"))
	fmt.Fprintln(s.w.out, c.bold.Sprint("│")+c.money.Sprintf("  Grand Total:  %-20s", s.GrandTotal)+c.bold.Sprint("│"))
	fmt.Fprintln(s.w.out, c.bold.Sprint("╰─────────────────────────────────────╯"))
	fmt.Fprintln(s.w.out)

	fmt.Fprintln(s.w.out, c.dim.Sprintf("  Elements: %d  Items: %d", s.Elements, s.Items))
	if s.Failures > 0 {
		s.w.Warning("%d provider failures", s.Failures)
	}
}
