package server

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/logdeck/logdeck/pkg/models"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// logIDPattern locates the log identifier suffix inside a table name.
// Ingested tables are named <sensor>_<logID> where the log identifier
// starts with a digit (it is derived from timestamped file names), so the
// first underscore-digit boundary splits the two parts.
var logIDPattern = regexp.MustCompile(`_\d.*`)

// ErrUnknownTable marks a request for a table the database does not have.
var ErrUnknownTable = errors.New("unknown table")

// Store is read-only access to one ingested log database.
type Store struct {
	db *sql.DB
}

// OpenStore opens the database at path in read-only mode.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrapf(err, "can't open database %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// TableNames returns every user table in the database, sorted by name.
func (s *Store) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "can't list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "can't scan table name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LogIDs derives the set of log identifiers present in the database from
// the table names, sorted and deduplicated.
func (s *Store) LogIDs(ctx context.Context) ([]string, error) {
	names, err := s.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, name := range names {
		m := logIDPattern.FindString(name)
		if m == "" {
			continue
		}
		id := m[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TablesForLog returns the tables whose name ends in _<logID>.
func (s *Store) TablesForLog(ctx context.Context, logID string) ([]string, error) {
	names, err := s.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	var matched []string
	suffix := "_" + logID
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Rows returns the column names and every row of one table. The table name
// is checked against the actual table list first; anything else is
// ErrUnknownTable, never interpolated into SQL.
func (s *Store) Rows(ctx context.Context, table string) ([]string, []models.Row, error) {
	names, err := s.TableNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	known := false
	for _, name := range names {
		if name == table {
			known = true
			break
		}
	}
	if !known {
		return nil, nil, ErrUnknownTable
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't read table %s", table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.Wrap(err, "can't read columns")
	}

	var out []models.Row
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, errors.Wrap(err, "can't scan row")
		}

		row := models.Row{Fields: make([]models.Field, 0, len(cols))}
		for i, col := range cols {
			row.Fields = append(row.Fields, models.Field{Name: col, Value: cellFromSQL(cells[i])})
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// cellFromSQL maps a database/sql scan result onto a wire value.
func cellFromSQL(v any) models.Value {
	switch c := v.(type) {
	case nil:
		return models.NullValue()
	case int64:
		return models.IntValue(c)
	case float64:
		return models.FloatValue(c)
	case string:
		return models.StringValue(c)
	case []byte:
		return models.StringValue(string(c))
	case bool:
		return models.StringValue(strconv.FormatBool(c))
	case time.Time:
		return models.StringValue(c.Format(time.RFC3339Nano))
	default:
		return models.StringValue(fmt.Sprint(c))
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
