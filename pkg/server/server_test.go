package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Database == "" {
		opts.Database = newTestDB(t)
	}
	srv, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogsEndpoint(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/logs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `["5_10_2023","7_7_2024"]`, rec.Body.String())
}

func TestTablesEndpoint(t *testing.T) {
	router := newTestServer(t, Options{}).Router()

	rec := doGet(t, router, "/api/tables/5_10_2023")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `["events_5_10_2023","sensors_5_10_2023"]`, rec.Body.String())

	// An unknown log is not an error, just an empty list.
	rec = doGet(t, router, "/api/tables/unknown")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
}

func TestDataEndpoint(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/data/sensors_5_10_2023")
	assert.Equal(t, http.StatusOK, rec.Code)
	// Column order is preserved and REAL values keep a decimal point even
	// when whole, so clients can tell 3.0 from an INTEGER 3.
	assert.Equal(t,
		`[{"t":1,"v":2.5,"note":null},{"t":2,"v":3.0,"note":"spike"}]`,
		rec.Body.String())
}

func TestDataEndpointEmptyTable(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/data/gps_7_7_2024")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
}

func TestDataEndpointRejectsUnknownTable(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/data/does_not_exist")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `{"error":"invalid table name"}`, rec.Body.String())
}

func TestExportEndpoint(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/export/sensors_5_10_2023")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sensors_5_10_2023.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "t,v,note\n1,2.5,\n2,3.0,spike\n", rec.Body.String())
}

func TestExportEscapesCells(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/export/events_5_10_2023")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id,msg\n7,\"say \"\"hi\"\", ok\"\n", rec.Body.String())
}

func TestExportEmptyTableHasHeaderOnly(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/export/gps_7_7_2024")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lat,lon\n", rec.Body.String())
}

func TestExportRejectsUnknownTable(t *testing.T) {
	router := newTestServer(t, Options{}).Router()
	rec := doGet(t, router, "/api/export/missing")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticFiles(t *testing.T) {
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>deck</html>"), 0644))

	router := newTestServer(t, Options{WebDir: webDir}).Router()
	rec := doGet(t, router, "/index.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>deck</html>", rec.Body.String())

	// API routes win over the file server.
	rec = doGet(t, router, "/api/logs")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDecimalToken(t *testing.T) {
	cases := []struct {
		in       float64
		expected string
	}{
		{3, "3.0"},
		{2.5, "2.5"},
		{-0.125, "-0.125"},
		{1000000, "1000000.0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, decimalToken(tc.in))
	}
}

func TestEscapeCSV(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"a,b"`, escapeCSV("a,b"))
	assert.Equal(t, `"he said ""no"""`, escapeCSV(`he said "no"`))
	assert.Equal(t, "\"two\nlines\"", escapeCSV("two\nlines"))
}
