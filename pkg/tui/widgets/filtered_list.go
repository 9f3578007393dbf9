package widgets

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	listFilterStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	listDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FilteredList is a scrollable item list with a "/" substring filter.
// Filtering is live and case-insensitive; escape clears the filter,
// enter keeps it applied and returns focus to the list.
type FilteredList struct {
	title     string
	items     []string
	filtered  []int // indexes into items matching the current filter
	cursor    int   // position within filtered
	offset    int   // first visible position within filtered
	input     textinput.Model
	filtering bool
	width     int
	height    int
}

func NewFilteredList(title string, items []string, width, height int) FilteredList {
	input := textinput.New()
	input.Prompt = "/"
	input.CharLimit = 128

	l := FilteredList{
		title:  title,
		items:  items,
		input:  input,
		width:  width,
		height: height,
	}
	l.applyFilter()
	return l
}

// SelectedIndex returns the index of the highlighted item within the
// original items slice, or -1 when nothing matches the filter.
func (l FilteredList) SelectedIndex() int {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return -1
	}
	return l.filtered[l.cursor]
}

// Filtering reports whether the filter input currently has focus, so
// parent models can leave enter and escape to the input.
func (l FilteredList) Filtering() bool {
	return l.filtering
}

// MatchCount returns the number of items matching the current filter.
func (l FilteredList) MatchCount() int {
	return len(l.filtered)
}

func (l FilteredList) Update(msg tea.Msg) (FilteredList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
		l.clampCursor()
		return l, nil

	case tea.KeyMsg:
		if l.filtering {
			switch msg.String() {
			case "esc":
				l.filtering = false
				l.input.Blur()
				l.input.SetValue("")
				l.applyFilter()
				return l, nil
			case "enter":
				l.filtering = false
				l.input.Blur()
				return l, nil
			}
			var cmd tea.Cmd
			l.input, cmd = l.input.Update(msg)
			l.applyFilter()
			return l, cmd
		}

		switch msg.String() {
		case "/":
			l.filtering = true
			l.input.Focus()
			return l, textinput.Blink
		case "up", "k":
			l.moveCursor(-1)
		case "down", "j":
			l.moveCursor(1)
		case "pgup":
			l.moveCursor(-l.visibleRows())
		case "pgdown":
			l.moveCursor(l.visibleRows())
		case "home":
			l.moveCursor(-len(l.filtered))
		case "end":
			l.moveCursor(len(l.filtered))
		}
	}

	return l, nil
}

func (l FilteredList) View() string {
	var sb strings.Builder

	sb.WriteString(listTitleStyle.Render(l.title))
	if filter := l.input.Value(); filter != "" && !l.filtering {
		sb.WriteString(" ")
		sb.WriteString(listFilterStyle.Render("/" + filter))
	}
	sb.WriteString("\n\n")

	if len(l.filtered) == 0 && l.input.Value() != "" {
		sb.WriteString(listDimStyle.Render("  no matches"))
		sb.WriteString("\n")
	}

	vis := l.visibleRows()
	for i := l.offset; i < len(l.filtered) && i < l.offset+vis; i++ {
		item := l.items[l.filtered[i]]
		if i == l.cursor {
			sb.WriteString(listSelectedStyle.Render("> " + item))
		} else {
			sb.WriteString("  " + item)
		}
		sb.WriteString("\n")
	}

	if l.filtering {
		sb.WriteString("\n")
		sb.WriteString(l.input.View())
	}

	return sb.String()
}

// applyFilter rebuilds the visible index set for the current input text
// and keeps the cursor on a valid position.
func (l *FilteredList) applyFilter() {
	filter := strings.ToLower(l.input.Value())
	l.filtered = l.filtered[:0]
	for i, item := range l.items {
		if filter == "" || strings.Contains(strings.ToLower(item), filter) {
			l.filtered = append(l.filtered, i)
		}
	}
	l.cursor = 0
	l.offset = 0
}

func (l *FilteredList) moveCursor(delta int) {
	l.cursor += delta
	l.clampCursor()
}

func (l *FilteredList) clampCursor() {
	if len(l.filtered) == 0 {
		l.cursor = 0
		l.offset = 0
		return
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor >= len(l.filtered) {
		l.cursor = len(l.filtered) - 1
	}
	vis := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+vis {
		l.offset = l.cursor - vis + 1
	}
}

// visibleRows leaves room for the title, its trailing blank line and
// the filter input line.
func (l FilteredList) visibleRows() int {
	rows := l.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}
