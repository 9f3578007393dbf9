// Package browse owns the cascading log / table / rows selection state.
//
// The Controller is a plain state machine: user selections go in through
// SelectLog and SelectTable, fetch results come back through the Apply
// methods, and every selection change bumps a generation counter. A result
// captured under an older generation is discarded on arrival, so a slow
// early response can never overwrite a fast later one. The controller never
// performs I/O itself; it tells its caller what to fetch and with which
// generation token.
package browse

import (
	"github.com/logdeck/logdeck/pkg/grid"
	"github.com/logdeck/logdeck/pkg/models"
)

// Stage is the position in the selection cascade.
type Stage int

const (
	// StageEmpty means no log is chosen; table selection is disabled.
	StageEmpty Stage = iota
	// StageLogChosen means a log is chosen and its tables are pending or shown.
	StageLogChosen
	// StageTableChosen means a table is chosen and its rows are pending or shown.
	StageTableChosen
)

// FetchKind names the request a Fetch asks the caller to perform.
type FetchKind int

const (
	FetchTables FetchKind = iota
	FetchRows
)

// Fetch is a request the caller must dispatch. Generation is the token the
// matching result has to carry back.
type Fetch struct {
	Kind       FetchKind
	LogID      string
	Table      string
	Generation uint64
}

// LogsResult settles the log list fetch. The log list is loaded outside the
// generation scheme; nothing races against it.
type LogsResult struct {
	IDs []string
	Err error
}

// TablesResult settles a table list fetch for one log.
type TablesResult struct {
	Generation uint64
	LogID      string
	Tables     []models.TableDescriptor
	Err        error
}

// RowsResult settles a row fetch for one table.
type RowsResult struct {
	Generation uint64
	Table      string
	Rows       []models.Row
	Err        error
}

// TableOption is one selectable table together with the generation that
// produced it.
type TableOption struct {
	models.TableDescriptor
	Generation uint64
}

// Controller sequences the dependent fetches and guards against
// out-of-order responses. It is not safe for concurrent use; drive it from
// a single event loop.
type Controller struct {
	generation uint64
	stage      Stage
	logID      string
	table      string

	logsPending bool
	logs        []string
	logsErr     error

	tables    []TableOption
	tablesErr error

	grid      *grid.Table
	rowsEmpty bool
	rowsErr   error

	exportTarget string

	// in-flight request count per generation; Loading() checks the
	// current generation only, so requests abandoned by a newer selection
	// cannot keep the indicator alive or blink it off early.
	inflight map[uint64]int
}

func NewController() *Controller {
	return &Controller{inflight: make(map[uint64]int)}
}

// StartLogs marks the log list as pending. The caller dispatches the fetch
// and feeds the outcome to ApplyLogs.
func (c *Controller) StartLogs() {
	c.logsPending = true
	c.logsErr = nil
}

// ApplyLogs settles the log list. It applies unconditionally; the log list
// is not generation-guarded.
func (c *Controller) ApplyLogs(res LogsResult) {
	c.logsPending = false
	if res.Err != nil {
		c.logs = nil
		c.logsErr = res.Err
		return
	}
	c.logs = res.IDs
	c.logsErr = nil
}

// SelectLog records a user log selection and returns the tables fetch to
// dispatch. A blank logID returns the controller to StageEmpty and clears
// everything downstream; ok is false and nothing needs fetching.
//
// A non-blank selection resets the table selection and export target but
// leaves an already-rendered grid alone: the grid is replaced only by a
// newer render, a row-fetch failure, or a full reset.
func (c *Controller) SelectLog(logID string) (Fetch, bool) {
	c.generation++
	c.table = ""
	c.exportTarget = ""

	if logID == "" {
		c.stage = StageEmpty
		c.logID = ""
		c.tables = nil
		c.tablesErr = nil
		c.clearRows()
		return Fetch{}, false
	}

	c.stage = StageLogChosen
	c.logID = logID
	c.tables = nil
	c.tablesErr = nil
	c.inflight[c.generation]++
	return Fetch{Kind: FetchTables, LogID: logID, Generation: c.generation}, true
}

// SelectTable records a user table selection and returns the rows fetch to
// dispatch. A blank table reverts to StageLogChosen with the data area
// cleared; ok is false. Ignored entirely while no log is chosen.
func (c *Controller) SelectTable(table string) (Fetch, bool) {
	if c.stage == StageEmpty {
		return Fetch{}, false
	}

	c.generation++
	c.exportTarget = ""
	c.clearRows()

	if table == "" {
		c.stage = StageLogChosen
		c.table = ""
		return Fetch{}, false
	}

	c.stage = StageTableChosen
	c.table = table
	c.inflight[c.generation]++
	return Fetch{Kind: FetchRows, Table: table, Generation: c.generation}, true
}

// ApplyTables settles a table list fetch. Returns false when the result was
// stale and discarded. A failure replaces the table options with an error
// placeholder but does not touch the rendered grid.
func (c *Controller) ApplyTables(res TablesResult) bool {
	c.settle(res.Generation)
	if res.Generation != c.generation {
		return false
	}

	if res.Err != nil {
		c.tables = nil
		c.tablesErr = res.Err
		return true
	}

	options := make([]TableOption, 0, len(res.Tables))
	for _, t := range res.Tables {
		options = append(options, TableOption{TableDescriptor: t, Generation: res.Generation})
	}
	c.tables = options
	c.tablesErr = nil
	return true
}

// ApplyRows settles a row fetch. Returns false when the result was stale
// and discarded. The export target appears only after a successful fetch
// with at least one row; a failure leaves the table options alone.
func (c *Controller) ApplyRows(res RowsResult) bool {
	c.settle(res.Generation)
	if res.Generation != c.generation {
		return false
	}

	if res.Err != nil {
		c.grid = nil
		c.rowsEmpty = false
		c.rowsErr = res.Err
		c.exportTarget = ""
		return true
	}

	c.grid = grid.Render(res.Rows)
	c.rowsEmpty = c.grid == nil
	c.rowsErr = nil
	if c.grid != nil {
		c.exportTarget = res.Table
	} else {
		c.exportTarget = ""
	}
	return true
}

// Loading reports whether at least one current-generation request is still
// in flight, or the initial log list is still pending.
func (c *Controller) Loading() bool {
	return c.logsPending || c.inflight[c.generation] > 0
}

// Stage returns the current cascade position.
func (c *Controller) Stage() Stage { return c.stage }

// Generation returns the current selection generation.
func (c *Controller) Generation() uint64 { return c.generation }

// Selection returns the chosen log and table raw name, either possibly blank.
func (c *Controller) Selection() (logID, table string) { return c.logID, c.table }

func (c *Controller) Logs() []string { return c.logs }

func (c *Controller) LogsErr() error { return c.logsErr }

func (c *Controller) Tables() []TableOption { return c.tables }

func (c *Controller) TablesErr() error { return c.tablesErr }

// Grid returns the rendered table, or nil when nothing is rendered.
func (c *Controller) Grid() *grid.Table { return c.grid }

// RowsEmpty reports a successful row fetch that returned zero rows.
func (c *Controller) RowsEmpty() bool { return c.rowsEmpty }

func (c *Controller) RowsErr() error { return c.rowsErr }

// ExportTarget returns the raw table name eligible for export. ok is false
// unless a table is chosen and its last row fetch succeeded with data.
func (c *Controller) ExportTarget() (string, bool) {
	return c.exportTarget, c.exportTarget != ""
}

func (c *Controller) clearRows() {
	c.grid = nil
	c.rowsEmpty = false
	c.rowsErr = nil
}

func (c *Controller) settle(gen uint64) {
	if n, ok := c.inflight[gen]; ok {
		if n <= 1 {
			delete(c.inflight, gen)
		} else {
			c.inflight[gen] = n - 1
		}
	}
}
