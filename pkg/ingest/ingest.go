package ingest

import (
	"context"
	"database/sql"
	"os"

	"github.com/pkg/errors"
)

// IngestFile parses one flight log and writes its sensors into the
// database at dbPath, creating the file when missing. It returns the
// derived log identifier and the number of tables written.
func IngestFile(ctx context.Context, dbPath, logPath string) (string, int, error) {
	logID := LogIDFromPath(logPath)

	f, err := os.Open(logPath)
	if err != nil {
		return logID, 0, errors.Wrapf(err, "can't open log %s", logPath)
	}
	defer func() { _ = f.Close() }()

	sensors, err := Parse(f)
	if err != nil {
		return logID, 0, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return logID, 0, errors.Wrapf(err, "can't open database %s", dbPath)
	}
	defer func() { _ = db.Close() }()

	written, err := Write(ctx, db, logID, sensors)
	if err != nil {
		return logID, written, err
	}
	return logID, written, nil
}
