package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/logdeck/logdeck/pkg/browse"
	"github.com/logdeck/logdeck/pkg/grid"
	"github.com/logdeck/logdeck/pkg/models"
	"github.com/logdeck/logdeck/pkg/tui/widgets"
	"github.com/logdeck/logdeck/pkg/utils"
)

// RowsLoadedMsg carries the rows fetched for the selected table.
type RowsLoadedMsg struct {
	Result browse.RowsResult
}

// ExportRequestedMsg asks the app to open the CSV export for the
// current table in the system browser.
type ExportRequestedMsg struct{}

// ExportOpenedMsg reports the outcome of opening the export URL.
type ExportOpenedMsg struct {
	URL string
	Err error
}

// rowsViewer is the bubbletea model for the data grid page.
type rowsViewer struct {
	table    widgets.FilteredTable
	desc     models.TableDescriptor
	rowCount int
	rendered bool
	empty    bool
	loading  bool
	err      error
	status   string
	width    int
	height   int
}

func newRowsViewer(desc models.TableDescriptor, width, height int) rowsViewer {
	return rowsViewer{
		desc:    desc,
		loading: true,
		width:   width,
		height:  height,
	}
}

func (m rowsViewer) Init() tea.Cmd {
	return nil
}

func (m rowsViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.rendered {
			// The footer and key help take the bottom rows.
			m.table, cmd = m.table.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4})
		}
		return m, cmd

	case RowsLoadedMsg:
		m.loading = false
		m.status = ""
		if msg.Result.Err != nil {
			m.err = msg.Result.Err
			m.rendered = false
			m.empty = false
			return m, nil
		}
		m.err = nil

		rendered := grid.Render(msg.Result.Rows)
		if rendered == nil {
			m.rendered = false
			m.empty = true
			m.rowCount = 0
			return m, nil
		}

		m.empty = false
		m.rendered = true
		m.rowCount = len(rendered.Cells)
		m.table = widgets.NewFilteredTable(m.desc.DisplayName, rendered.Headers, m.width, m.height-4)

		rows := make([]table.Row, 0, len(rendered.Cells))
		for _, cells := range rendered.Cells {
			rowData := make(table.RowData, len(rendered.Headers))
			for i, header := range rendered.Headers {
				rowData[header] = cells[i]
			}
			rows = append(rows, table.NewRow(rowData))
		}
		m.table.SetRows(rows)
		return m, nil

	case ExportOpenedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			m.status = fmt.Sprintf("Opened %s in browser", msg.URL)
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.err != nil {
			switch msg.String() {
			case "r":
				m.loading = true
				m.err = nil
				desc := m.desc
				return m, func() tea.Msg {
					return TableSelectedMsg{Table: desc}
				}
			case "esc", "q":
				return m, func() tea.Msg {
					return TableSelectedMsg{}
				}
			}
			return m, nil
		}
		if m.rendered && m.table.Filtering() {
			break
		}

		switch msg.String() {
		case "e":
			if m.rendered {
				return m, func() tea.Msg {
					return ExportRequestedMsg{}
				}
			}
		case "r":
			m.loading = true
			desc := m.desc
			return m, func() tea.Msg {
				return TableSelectedMsg{Table: desc}
			}
		case "esc", "q":
			return m, func() tea.Msg {
				return TableSelectedMsg{}
			}
		}
	}

	if !m.rendered {
		return m, nil
	}

	// Delegate to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m rowsViewer) View() string {
	if m.loading {
		return "Loading rows, please wait..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error loading rows for %s: %v\n\nPress 'r' to retry, ESC to go back", m.desc.DisplayName, m.err)
	}
	if m.empty {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
		return fmt.Sprintf("%s\n\nNo data\n\nPress ESC to go back", titleStyle.Render(m.desc.DisplayName))
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footer := fmt.Sprintf("%s rows", utils.FormatCount(m.rowCount))
	if m.status != "" {
		footer += "  " + m.status
	}
	help := helpStyle.Render("e: Export CSV | /: Filter | r: Reload | Esc: Back")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.table.View(),
		"",
		footer,
		help,
	)
}
