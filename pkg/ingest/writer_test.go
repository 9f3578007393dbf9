package ingest

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIDFromPath(t *testing.T) {
	cases := []struct {
		path     string
		expected string
	}{
		{"/logs/2025-09-03 11-30-05.log", "2025_09_03_11_30_05"},
		{"bench-7.LOG", "bench_7"},
		{"flight.v2.log", "flight"},
		{"noext", "noext"},
		{"a+b(2).log", "a_b_2_"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, LogIDFromPath(tc.path), tc.path)
	}
}

func TestInferColumnTypes(t *testing.T) {
	cases := []struct {
		name     string
		values   []string
		expected colType
	}{
		{"integers", []string{"1", "-42", "0"}, colInteger},
		{"reals", []string{"2.5", "3.0"}, colReal},
		{"int and real mix to real", []string{"1", "2.5"}, colReal},
		{"exponent is real", []string{"1e3"}, colReal},
		{"blanks do not vote", []string{"", "7"}, colInteger},
		{"text wins over numbers", []string{"1", "AUTO"}, colText},
		{"all blank is text", []string{"", ""}, colText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Sensor{Columns: []string{"c"}}
			for _, v := range tc.values {
				s.Rows = append(s.Rows, []string{v})
			}
			types := inferColumnTypes(s)
			require.Len(t, types, 1)
			assert.Equal(t, tc.expected, types[0])
		})
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "logs_db.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriteRoundTrip(t *testing.T) {
	sensors, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	db := openTestDB(t)
	ctx := context.Background()
	written, err := Write(ctx, db, "5_10_2023", sensors)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	// Declared storage types follow the inferred column types.
	var tTime, tLat, tAlt string
	err = db.QueryRowContext(ctx,
		`SELECT typeof(TimeUS), typeof(Lat), typeof(Alt) FROM GPS_5_10_2023 LIMIT 1`).
		Scan(&tTime, &tLat, &tAlt)
	require.NoError(t, err)
	assert.Equal(t, "integer", tTime)
	assert.Equal(t, "real", tLat)
	assert.Equal(t, "real", tAlt)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM GPS_5_10_2023`).Scan(&count))
	assert.Equal(t, 3, count)

	// Blank and missing cells land as NULL.
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM GPS_5_10_2023 WHERE Lng IS NULL`).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM MODE_5_10_2023 WHERE Mode IS NULL`).Scan(&count))
	assert.Equal(t, 1, count)

	var mode string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT Mode FROM MODE_5_10_2023 WHERE Mode IS NOT NULL`).Scan(&mode))
	assert.Equal(t, "AUTO", mode)
}

func TestWriteReplacesPreviousRun(t *testing.T) {
	sensors, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	db := openTestDB(t)
	ctx := context.Background()
	_, err = Write(ctx, db, "5_10_2023", sensors)
	require.NoError(t, err)
	_, err = Write(ctx, db, "5_10_2023", sensors)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM GPS_5_10_2023`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestWriteSkipsSensorsWithoutReadings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sensors := []*Sensor{
		{Name: "EMPTY", Columns: []string{"a"}},
		{Name: "EVT", Columns: []string{"id"}, Rows: [][]string{{"1"}}},
	}
	written, err := Write(ctx, db, "L7", sensors)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='EMPTY_L7'`).Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
