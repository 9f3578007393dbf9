// Package ingest turns FMT-framed flight logs into per-sensor SQLite
// tables, one table per sensor per log.
//
// The log format is line oriented. FMT lines declare a sensor:
//
//	FMT, <type>, <length>, <name>, <format>, <col1>,<col2>,...
//
// and every other line carries one reading, headed by the sensor name:
//
//	GPS, 100200, 3, 12, -35.3632621, 149.1652374, 584.09
//
// FMT declares itself first in real logs, so the declarations also
// accumulate as rows of an FMT sensor; its last column keeps the full
// comma-joined column list.
package ingest

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Sensor is one declared message type and every reading seen for it.
// Rows are positional against Columns; cells missing from short lines
// are empty strings.
type Sensor struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Parse scans a log in one pass. Data lines are matched by their exact
// (untrimmed) head; readings for undeclared sensors are dropped, and a
// repeated FMT declaration for a known name is ignored.
func Parse(r io.Reader) ([]*Sensor, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var order []*Sensor
	byName := make(map[string]*Sensor)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		head, rest, found := strings.Cut(line, ",")
		if !found {
			continue
		}

		if head == "FMT" {
			if s := parseDeclaration(line); s != nil {
				if _, ok := byName[s.Name]; !ok {
					byName[s.Name] = s
					order = append(order, s)
				}
			}
			// fall through: FMT lines are also data rows of the FMT
			// sensor once it has declared itself
		}

		s, ok := byName[head]
		if !ok {
			continue
		}
		s.Rows = append(s.Rows, splitReading(rest, len(s.Columns)))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read log")
	}
	return order, nil
}

func parseDeclaration(line string) *Sensor {
	parts := strings.SplitN(line, ",", 6)
	if len(parts) < 6 {
		return nil
	}
	name := strings.TrimSpace(parts[3])
	if name == "" {
		return nil
	}
	cols := strings.Split(parts[5], ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return &Sensor{Name: name, Columns: cols}
}

// splitReading cuts at most width fields out of the line remainder, so a
// reading with extra commas keeps the overflow joined inside its last
// field. Short readings leave trailing cells empty.
func splitReading(rest string, width int) []string {
	fields := strings.SplitN(rest, ",", width)
	row := make([]string, width)
	for i := range fields {
		row[i] = strings.TrimSpace(fields[i])
	}
	return row
}
