package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logdeck/logdeck/pkg/browse"
	"github.com/logdeck/logdeck/pkg/models"
	"github.com/logdeck/logdeck/pkg/tui/widgets"
)

// TablesLoadedMsg carries the table list fetched for the selected log.
type TablesLoadedMsg struct {
	Result browse.TablesResult
}

// TableSelectedMsg is sent when the user picks a table. A zero
// descriptor clears the table selection and returns to the table list.
type TableSelectedMsg struct {
	Table models.TableDescriptor
}

// tableSelector is the bubbletea model for the table list page. The
// list shows display names; selection reports the full descriptor so
// row fetches and export always use the raw name.
type tableSelector struct {
	list    widgets.FilteredList
	logID   string
	tables  []models.TableDescriptor
	loading bool
	err     error
	width   int
	height  int
}

func newTableSelector(logID string, width, height int) tableSelector {
	return tableSelector{
		list:    widgets.NewFilteredList(fmt.Sprintf("Tables in %s", logID), nil, width, height),
		logID:   logID,
		loading: true,
		width:   width,
		height:  height,
	}
}

func (m tableSelector) Init() tea.Cmd {
	return nil
}

func (m tableSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TablesLoadedMsg:
		m.loading = false
		if msg.Result.Err != nil {
			m.err = msg.Result.Err
			return m, nil
		}
		m.err = nil
		m.tables = msg.Result.Tables

		names := make([]string, len(m.tables))
		for i, t := range m.tables {
			names[i] = t.DisplayName
		}
		m.list = widgets.NewFilteredList(fmt.Sprintf("Tables in %s", m.logID), names, m.width, m.height)
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
				logID := m.logID
				return m, func() tea.Msg {
					return LogSelectedMsg{LogID: logID}
				}
			case "esc", "q":
				return m, func() tea.Msg {
					return LogSelectedMsg{}
				}
			}
			return m, nil
		}
		if m.list.Filtering() {
			break
		}

		switch msg.String() {
		case "enter":
			selectedIdx := m.list.SelectedIndex()
			if selectedIdx >= 0 && selectedIdx < len(m.tables) {
				selected := m.tables[selectedIdx]
				return m, func() tea.Msg {
					return TableSelectedMsg{Table: selected}
				}
			}
		case "r":
			m.loading = true
			logID := m.logID
			return m, func() tea.Msg {
				return LogSelectedMsg{LogID: logID}
			}
		case "esc", "q":
			return m, func() tea.Msg {
				return LogSelectedMsg{}
			}
		}
	}

	// Delegate to list
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m tableSelector) View() string {
	if m.loading {
		return "Loading tables, please wait..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error loading tables for %s: %v\n\nPress 'r' to retry, ESC to go back", m.logID, m.err)
	}
	if len(m.tables) == 0 {
		return fmt.Sprintf("No tables found in %s.\n\nPress ESC to go back", m.logID)
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	help := helpStyle.Render("Enter: Rows | /: Filter | r: Reload | Esc: Back")

	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), "", help)
}
