package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Table is a fixed-width text table.
type Table struct {
	columns []Column
	rows    [][]string
	theme   Theme
}

// NewTable creates a table with the given columns.
func NewTable(theme Theme, columns ...Column) *Table {
	return &Table{columns: columns, theme: theme}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the table as text.
func (t *Table) Render() string {
	var b strings.Builder

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Title
	}
	b.WriteString(t.theme.Header.Render(t.renderRow(headers)))
	b.WriteString("\n")

	width := 0
	for _, col := range t.columns {
		width += col.Width + 3
	}
	if width > 3 {
		width -= 3
	}
	b.WriteString(t.theme.Border.Render(strings.Repeat("-", width)))
	b.WriteString("\n")

	for i, row := range t.rows {
		style := t.theme.Row
		if i%2 == 1 {
			style = t.theme.RowAlt
		}
		b.WriteString(style.Render(t.renderRow(row)))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Table) renderRow(cells []string) string {
	parts := make([]string, len(t.columns))
	for i, col := range t.columns {
		content := ""
		if i < len(cells) {
			content = cells[i]
		}
		if col.Width > 0 && len(content) > col.Width {
			if col.Width > 3 {
				content = content[:col.Width-3] + "..."
			} else {
				content = content[:col.Width]
			}
		}
		if col.Align == lipgloss.Right {
			parts[i] = fmt.Sprintf("%*s", col.Width, content)
		} else {
			parts[i] = fmt.Sprintf("%-*s", col.Width, content)
		}
	}
	return strings.Join(parts, " | ")
}
