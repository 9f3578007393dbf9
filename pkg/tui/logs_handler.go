package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logdeck/logdeck/pkg/browse"
	"github.com/logdeck/logdeck/pkg/tui/widgets"
)

// LogsLoadedMsg carries the result of the log list fetch.
type LogsLoadedMsg struct {
	Result browse.LogsResult
}

// LogsRequestedMsg asks the app to reload the log list.
type LogsRequestedMsg struct{}

// LogSelectedMsg is sent when the user picks a log. A blank LogID
// clears the selection and returns to the log list.
type LogSelectedMsg struct {
	LogID string
}

// logSelector is the bubbletea model for the log list page.
type logSelector struct {
	list    widgets.FilteredList
	ids     []string
	loading bool
	err     error
	width   int
	height  int
}

func newLogSelector(width, height int) logSelector {
	return logSelector{
		list:    widgets.NewFilteredList("Select Log", nil, width, height),
		loading: true,
		width:   width,
		height:  height,
	}
}

func (m logSelector) Init() tea.Cmd {
	return nil
}

func (m logSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LogsLoadedMsg:
		m.loading = false
		if msg.Result.Err != nil {
			m.err = msg.Result.Err
			return m, nil
		}
		m.err = nil
		m.ids = msg.Result.IDs
		m.list = widgets.NewFilteredList("Select Log", m.ids, m.width, m.height)
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
				return m, func() tea.Msg {
					return LogsRequestedMsg{}
				}
			case "q", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
		if m.list.Filtering() {
			break
		}

		switch msg.String() {
		case "enter":
			selectedIdx := m.list.SelectedIndex()
			if selectedIdx >= 0 && selectedIdx < len(m.ids) {
				logID := m.ids[selectedIdx]
				return m, func() tea.Msg {
					return LogSelectedMsg{LogID: logID}
				}
			}
		case "r":
			m.loading = true
			return m, func() tea.Msg {
				return LogsRequestedMsg{}
			}
		case "q", "esc":
			return m, tea.Quit
		}
	}

	// Delegate to list
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m logSelector) View() string {
	if m.loading {
		return "Loading logs, please wait..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error loading logs: %v\n\nPress 'r' to retry, 'q' to quit", m.err)
	}
	if len(m.ids) == 0 {
		return "No logs found.\n\nIngest a log file first, then press 'r' to reload"
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	help := helpStyle.Render("Enter: Tables | /: Filter | r: Reload | q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), "", help)
}
