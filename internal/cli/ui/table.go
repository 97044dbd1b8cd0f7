package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders tabular data with padded columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	noColor := false
	if opts != nil {
		noColor = opts.NoColor
	}

	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := t.columnWidths()

	headerColor := color.New(color.Bold, color.FgCyan)
	ruleColor := color.New(color.FgHiBlack)
	if t.noColor {
		headerColor.DisableColor()
		ruleColor.DisableColor()
	}

	for i, header := range t.headers {
		if i > 0 {
			fmt.Fprint(t.writer, "  ")
		}
		headerColor.Fprint(t.writer, padRight(header, widths[i]))
	}
	fmt.Fprintln(t.writer)

	for i, width := range widths {
		if i > 0 {
			ruleColor.Fprint(t.writer, "  ")
		}
		ruleColor.Fprint(t.writer, strings.Repeat("─", width))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				fmt.Fprint(t.writer, "  ")
			}
			fmt.Fprint(t.writer, padRight(cell, widths[i]))
		}
		fmt.Fprintln(t.writer)
	}
}

// columnWidths returns the widest cell of each column, headers included.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
