package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/logdeck/logdeck/pkg/api"
	"github.com/logdeck/logdeck/pkg/browse"
	"github.com/logdeck/logdeck/pkg/config"
	"github.com/logdeck/logdeck/pkg/models"
	"github.com/logdeck/logdeck/pkg/types"
	"github.com/logdeck/logdeck/pkg/utils"
)

// Page types
type pageType string

const (
	pageLogs   pageType = "logs"
	pageTables pageType = "tables"
	pageRows   pageType = "rows"
)

// App is the main bubbletea model. It owns the selection controller and
// the API client; page handlers only render data handed to them through
// messages, so every fetch result passes the controller's generation
// guard exactly once before any view sees it.
type App struct {
	// Core state
	state  *models.AppState
	client *api.Client
	ctrl   *browse.Controller

	// UI state
	currentPage pageType
	width       int
	height      int
	spinner     spinner.Model

	// Sub-models for the three cascade pages
	logsHandler   tea.Model
	tablesHandler tea.Model
	rowsHandler   tea.Model

	version string
	cfg     *config.Config
}

// NewApp creates a new App instance
func NewApp(cfg *config.Config, version string) *App {
	state := models.NewAppState(cfg, version)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	app := &App{
		state:       state,
		ctrl:        browse.NewController(),
		currentPage: pageLogs,
		spinner:     sp,
		version:     version,
		cfg:         cfg,
	}
	app.logsHandler = newLogSelector(0, 0)

	return app
}

// ApplyCLIParameters merges command line flags over the loaded config.
func (a *App) ApplyCLIParameters(c *types.CLI) {
	a.state.CLI = c
	if c.URL != "" {
		a.state.BaseURL = c.URL
	}
}

// Init kicks off the initial log list fetch.
func (a *App) Init() tea.Cmd {
	a.ctrl.StartLogs()
	return tea.Batch(a.spinner.Tick, a.fetchLogsCmd())
}

// Update handles all messages and state updates
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.logsHandler != nil {
			a.logsHandler, cmd = a.logsHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.tablesHandler != nil {
			a.tablesHandler, cmd = a.tablesHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.rowsHandler != nil {
			a.rowsHandler, cmd = a.rowsHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case LogsLoadedMsg:
		a.ctrl.ApplyLogs(msg.Result)
		if a.logsHandler != nil {
			a.logsHandler, cmd = a.logsHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case LogsRequestedMsg:
		a.ctrl.StartLogs()
		return a, a.fetchLogsCmd()

	case LogSelectedMsg:
		fetch, ok := a.ctrl.SelectLog(msg.LogID)
		if !ok {
			// Blank selection: full reset back to the log list
			a.tablesHandler = nil
			a.rowsHandler = nil
			a.currentPage = pageLogs
			return a, nil
		}
		a.tablesHandler = newTableSelector(msg.LogID, a.width, a.height)
		a.currentPage = pageTables
		return a, a.fetchTablesCmd(fetch)

	case TablesLoadedMsg:
		if !a.ctrl.ApplyTables(msg.Result) {
			// Superseded by a newer selection
			return a, nil
		}
		if a.currentPage == pageTables && a.tablesHandler != nil {
			a.tablesHandler, cmd = a.tablesHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case TableSelectedMsg:
		fetch, ok := a.ctrl.SelectTable(msg.Table.RawName)
		if !ok {
			// Blank selection: back to the table list, or the log
			// list when no log is chosen at all
			a.rowsHandler = nil
			if a.ctrl.Stage() == browse.StageEmpty {
				a.currentPage = pageLogs
			} else {
				a.currentPage = pageTables
			}
			return a, nil
		}
		a.rowsHandler = newRowsViewer(msg.Table, a.width, a.height)
		a.currentPage = pageRows
		return a, a.fetchRowsCmd(fetch)

	case RowsLoadedMsg:
		if !a.ctrl.ApplyRows(msg.Result) {
			return a, nil
		}
		if a.currentPage == pageRows && a.rowsHandler != nil {
			a.rowsHandler, cmd = a.rowsHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case ExportRequestedMsg:
		target, ok := a.ctrl.ExportTarget()
		if !ok {
			return a, nil
		}
		return a, a.openExportCmd(target)

	case ExportOpenedMsg:
		if a.currentPage == pageRows && a.rowsHandler != nil {
			a.rowsHandler, cmd = a.rowsHandler.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Delegate to current page handler
		switch a.currentPage {
		case pageLogs:
			if a.logsHandler != nil {
				a.logsHandler, cmd = a.logsHandler.Update(msg)
				cmds = append(cmds, cmd)
			}
		case pageTables:
			if a.tablesHandler != nil {
				a.tablesHandler, cmd = a.tablesHandler.Update(msg)
				cmds = append(cmds, cmd)
			}
		case pageRows:
			if a.rowsHandler != nil {
				a.rowsHandler, cmd = a.rowsHandler.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return a, tea.Batch(cmds...)
}

// View renders the current view
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var content string
	switch a.currentPage {
	case pageLogs:
		if a.logsHandler != nil {
			content = a.logsHandler.View()
		}
	case pageTables:
		if a.tablesHandler != nil {
			content = a.tablesHandler.View()
		}
	case pageRows:
		if a.rowsHandler != nil {
			content = a.rowsHandler.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, "", a.statusBar())
}

// statusBar shows the API endpoint, the current selection and whether a
// request for the current selection is still in flight.
func (a *App) statusBar() string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	status := a.state.EndpointInfo()
	logID, table := a.ctrl.Selection()
	if logID != "" {
		status += fmt.Sprintf("  log: %s", logID)
	}
	if table != "" {
		status += fmt.Sprintf("  table: %s", table)
	}
	if a.ctrl.Loading() {
		status += "  " + a.spinner.View() + " Loading..."
	}

	return statusStyle.Render(status)
}

// fetchLogsCmd loads the log list. It runs outside the generation
// scheme; the result applies whenever it lands.
func (a *App) fetchLogsCmd() tea.Cmd {
	return func() tea.Msg {
		ids, err := a.client.FetchLogIDs(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch log list")
		}
		return LogsLoadedMsg{Result: browse.LogsResult{IDs: ids, Err: err}}
	}
}

// fetchTablesCmd loads the table list for the fetch token handed out by
// the controller; the token's generation travels with the result.
func (a *App) fetchTablesCmd(fetch browse.Fetch) tea.Cmd {
	return func() tea.Msg {
		tables, err := a.client.FetchTables(context.Background(), fetch.LogID)
		if err != nil {
			log.Error().Err(err).Str("log_id", fetch.LogID).Msg("failed to fetch tables")
		}
		return TablesLoadedMsg{Result: browse.TablesResult{
			Generation: fetch.Generation,
			LogID:      fetch.LogID,
			Tables:     tables,
			Err:        err,
		}}
	}
}

func (a *App) fetchRowsCmd(fetch browse.Fetch) tea.Cmd {
	return func() tea.Msg {
		rows, err := a.client.FetchRows(context.Background(), fetch.Table)
		if err != nil {
			log.Error().Err(err).Str("table", fetch.Table).Msg("failed to fetch rows")
		}
		return RowsLoadedMsg{Result: browse.RowsResult{
			Generation: fetch.Generation,
			Table:      fetch.Table,
			Rows:       rows,
			Err:        err,
		}}
	}
}

// openExportCmd hands the CSV export URL to the system browser. The
// download itself happens outside the application.
func (a *App) openExportCmd(table string) tea.Cmd {
	url := a.client.ExportURL(table)
	return func() tea.Msg {
		err := utils.OpenBrowser(url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("failed to open export in browser")
		}
		return ExportOpenedMsg{URL: url, Err: err}
	}
}

// Run starts the bubbletea program
func (a *App) Run() error {
	a.client = api.NewClient(a.state.BaseURL, a.state.Timeout)

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
