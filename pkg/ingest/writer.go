package ingest

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var nonWord = regexp.MustCompile(`\W+`)

// LogIDFromPath derives the log identifier used in table names: the file
// name up to its first dot, with every non-word run collapsed to one
// underscore. "2025-09-03 11-30-05.log" becomes "2025_09_03_11_30_05".
func LogIDFromPath(path string) string {
	stem := strings.SplitN(filepath.Base(path), ".", 2)[0]
	return nonWord.ReplaceAllString(stem, "_")
}

type colType int

const (
	colInteger colType = iota
	colReal
	colText
)

func (t colType) ddl() string {
	switch t {
	case colInteger:
		return "INTEGER"
	case colReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// inferColumnTypes picks a storage type per column from the values
// present. Blank cells become NULL and do not vote; a column whose every
// non-blank value parses as an integer is INTEGER, as a number REAL,
// anything else TEXT. An all-blank column is TEXT.
func inferColumnTypes(s *Sensor) []colType {
	types := make([]colType, len(s.Columns))
	for col := range s.Columns {
		seen := false
		t := colInteger
		for _, row := range s.Rows {
			v := row[col]
			if v == "" {
				continue
			}
			seen = true
			if t == colInteger {
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					continue
				}
				t = colReal
			}
			if t == colReal {
				if _, err := strconv.ParseFloat(v, 64); err == nil {
					continue
				}
				t = colText
				break
			}
		}
		if !seen {
			t = colText
		}
		types[col] = t
	}
	return types
}

// Write stores every sensor that produced at least one reading, replacing
// any table left over from a previous run of the same log. Returns the
// number of tables written.
func Write(ctx context.Context, db *sql.DB, logID string, sensors []*Sensor) (int, error) {
	written := 0
	for _, s := range sensors {
		if len(s.Rows) == 0 {
			continue
		}
		if err := writeSensor(ctx, db, logID, s); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func writeSensor(ctx context.Context, db *sql.DB, logID string, s *Sensor) error {
	table := s.Name + "_" + logID
	types := inferColumnTypes(s)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return errors.Wrapf(err, "can't drop %s", table)
	}

	ddl := make([]string, 0, len(s.Columns))
	for i, col := range s.Columns {
		ddl = append(ddl, quoteIdent(col)+" "+types[i].ddl())
	}
	create := "CREATE TABLE " + quoteIdent(table) + " (" + strings.Join(ddl, ", ") + ")"
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return errors.Wrapf(err, "can't create %s", table)
	}

	insert := "INSERT INTO " + quoteIdent(table) + " VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ") + ")"
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrapf(err, "can't prepare insert for %s", table)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(s.Columns))
	for _, row := range s.Rows {
		for i, v := range row {
			args[i] = cellArg(v, types[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "can't insert into %s", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "can't commit %s", table)
	}
	log.Info().Str("table", table).Int("rows", len(s.Rows)).Msg("table written")
	return nil
}

// cellArg converts one cell for insertion: blanks are NULL, typed columns
// get native values so the stored type matches the declared one.
func cellArg(v string, t colType) any {
	if v == "" {
		return nil
	}
	switch t {
	case colInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case colReal:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
