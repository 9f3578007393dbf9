package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

var (
	tableTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	tableFilterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

// FilteredTable wraps a bubble-table model with a "/" substring filter
// across all cells of a row. Column keys are the header titles, so rows
// built with table.RowData keyed by header render in column order.
type FilteredTable struct {
	title     string
	headers   []string
	model     table.Model
	rows      []table.Row // unfiltered rows
	input     textinput.Model
	filtering bool
	width     int
	height    int
}

func NewFilteredTable(title string, headers []string, width, height int) FilteredTable {
	columns := make([]table.Column, len(headers))
	for i, header := range headers {
		columns[i] = table.NewFlexColumn(header, header, 1)
	}

	input := textinput.New()
	input.Prompt = "/"
	input.CharLimit = 128

	model := table.New(columns).
		WithTargetWidth(width).
		WithPageSize(tablePageSize(height)).
		Focused(true).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left))

	return FilteredTable{
		title:   title,
		headers: headers,
		model:   model,
		input:   input,
		width:   width,
		height:  height,
	}
}

// SetRows replaces the table content. The unfiltered rows are kept so
// clearing the filter restores them.
func (t *FilteredTable) SetRows(rows []table.Row) {
	t.rows = rows
	t.refresh()
}

// HighlightedRow returns the currently highlighted row after filtering.
func (t FilteredTable) HighlightedRow() table.Row {
	return t.model.HighlightedRow()
}

// Filtering reports whether the filter input currently has focus.
func (t FilteredTable) Filtering() bool {
	return t.filtering
}

// TotalRows returns the number of rows before filtering.
func (t FilteredTable) TotalRows() int {
	return len(t.rows)
}

func (t FilteredTable) Update(msg tea.Msg) (FilteredTable, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.model = t.model.WithTargetWidth(msg.Width).WithPageSize(tablePageSize(msg.Height))
		return t, nil

	case tea.KeyMsg:
		if t.filtering {
			switch msg.String() {
			case "esc":
				t.filtering = false
				t.input.Blur()
				t.input.SetValue("")
				t.refresh()
				return t, nil
			case "enter":
				t.filtering = false
				t.input.Blur()
				return t, nil
			}
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(msg)
			t.refresh()
			return t, cmd
		}

		if msg.String() == "/" {
			t.filtering = true
			t.input.Focus()
			return t, textinput.Blink
		}
	}

	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

func (t FilteredTable) View() string {
	var sb strings.Builder

	sb.WriteString(tableTitleStyle.Render(t.title))
	if filter := t.input.Value(); filter != "" && !t.filtering {
		sb.WriteString(" ")
		sb.WriteString(tableFilterStyle.Render("/" + filter))
	}
	sb.WriteString("\n")
	sb.WriteString(t.model.View())

	if t.filtering {
		sb.WriteString("\n")
		sb.WriteString(t.input.View())
	}

	return sb.String()
}

// refresh reapplies the current filter to the stored rows.
func (t *FilteredTable) refresh() {
	filter := strings.ToLower(t.input.Value())
	if filter == "" {
		t.model = t.model.WithRows(t.rows)
		return
	}

	var visible []table.Row
	for _, row := range t.rows {
		if rowMatchesFilter(row, filter) {
			visible = append(visible, row)
		}
	}
	t.model = t.model.WithRows(visible)
}

// rowMatchesFilter checks whether any cell of the row contains the
// lower-cased filter text.
func rowMatchesFilter(row table.Row, filter string) bool {
	for _, v := range row.Data {
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), filter) {
			return true
		}
	}
	return false
}

// tablePageSize leaves room for the title, the table chrome and the
// filter input line.
func tablePageSize(height int) int {
	rows := height - 6
	if rows < 1 {
		rows = 1
	}
	return rows
}
