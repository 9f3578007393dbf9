package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "2025-09-03 11-30-05.log")
	require.NoError(t, os.WriteFile(logPath, []byte(sampleLog), 0644))
	dbPath := filepath.Join(dir, "logs_db.db")

	logID, written, err := IngestFile(context.Background(), dbPath, logPath)
	require.NoError(t, err)
	assert.Equal(t, "2025_09_03_11_30_05", logID)
	assert.Equal(t, 3, written)

	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name LIKE '%_2025_09_03_11_30_05'`).
		Scan(&count))
	assert.Equal(t, 3, count)
}

func TestIngestFileMissingLog(t *testing.T) {
	dir := t.TempDir()
	_, _, err := IngestFile(context.Background(), filepath.Join(dir, "logs_db.db"), filepath.Join(dir, "absent.log"))
	require.Error(t, err)
}
