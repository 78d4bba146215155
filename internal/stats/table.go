package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	cellGap  = "  "
	ellipsis = "…"
)

type column struct {
	title string
	right bool
	// max limits the cell width; longer cells are truncated. 0 means no limit.
	max int
}

type table struct {
	columns []column
	rows    [][]string
}

func newTable(columns ...column) *table {
	return &table{columns: columns}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// lines renders the header followed by every row. Trailing spaces are
// trimmed from each line.
func (t *table) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = runewidth.StringWidth(t.cell(col, col.title))
	}
	for _, row := range t.rows {
		for i, col := range t.columns {
			if w := runewidth.StringWidth(t.cell(col, cellAt(row, i))); w > widths[i] {
				widths[i] = w
			}
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.title
	}
	out = append(out, t.render(header, widths))
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t *table) render(row []string, widths []int) string {
	var b strings.Builder
	for i, col := range t.columns {
		if i > 0 {
			b.WriteString(cellGap)
		}
		value := t.cell(col, cellAt(row, i))
		pad := widths[i] - runewidth.StringWidth(value)
		if pad < 0 {
			pad = 0
		}
		if col.right {
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(value)
		} else {
			b.WriteString(value)
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func (t *table) cell(col column, value string) string {
	if col.max > 0 && runewidth.StringWidth(value) > col.max {
		return runewidth.Truncate(value, col.max, ellipsis)
	}
	return value
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
