// Package grid turns decoded result rows into a rectangular table of
// display strings ready for any front end (TUI table widget, CSV, plain text).
package grid

import (
	"strconv"

	"github.com/logdeck/logdeck/pkg/models"
)

// Table is a rendered grid. Headers keeps the column order of the first
// source row, duplicates included. Every Cells row has len(Headers) entries.
type Table struct {
	Headers []string
	Cells   [][]string
}

// Render builds a Table from decoded rows. A nil return means there was
// nothing to render; callers show their "no data" state instead of an
// empty grid.
//
// Column order comes from the first row only. Rows missing a column get
// an empty cell; extra columns in later rows are ignored. A duplicated
// column name yields duplicated columns, each showing the first value
// under that name.
func Render(rows []models.Row) *Table {
	if len(rows) == 0 {
		return nil
	}

	headers := make([]string, 0, len(rows[0].Fields))
	for _, f := range rows[0].Fields {
		headers = append(headers, f.Name)
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row.Get(h); ok {
				line[i] = FormatValue(v)
			}
		}
		cells = append(cells, line)
	}

	return &Table{Headers: headers, Cells: cells}
}

// FormatValue converts one value to its display string: floats are fixed
// to three decimals, integers keep their natural digits, SQL NULL becomes
// an empty cell.
func FormatValue(v models.Value) string {
	switch v.Kind {
	case models.KindNull:
		return ""
	case models.KindFloat:
		return strconv.FormatFloat(v.Num, 'f', 3, 64)
	default:
		return v.Str
	}
}
