package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/logdeck/logdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestFetchLogIDs(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["flight7","bench_run_2"]`))
	}))
	defer srv.Close()

	ids, err := client.FetchLogIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/logs", gotPath)
	assert.Equal(t, []string{"flight7", "bench_run_2"}, ids)
}

func TestFetchTables(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`["sensors_flight7","gps_raw_flight7"]`))
	}))
	defer srv.Close()

	tables, err := client.FetchTables(context.Background(), "flight7")
	require.NoError(t, err)
	assert.Equal(t, "/api/tables/flight7", gotPath)
	require.Len(t, tables, 2)
	assert.Equal(t, models.TableDescriptor{RawName: "sensors_flight7", DisplayName: "sensors"}, tables[0])
	assert.Equal(t, models.TableDescriptor{RawName: "gps_raw_flight7", DisplayName: "gps_raw"}, tables[1])
}

func TestFetchRowsKeepsOrderAndKinds(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data/sensors_flight7", r.URL.Path)
		_, _ = w.Write([]byte(`[{"b":1,"a":2.5},{"b":2,"a":3.0}]`))
	}))
	defer srv.Close()

	rows, err := client.FetchRows(context.Background(), "sensors_flight7")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Document order beats lexical order.
	require.Len(t, rows[0].Fields, 2)
	assert.Equal(t, "b", rows[0].Fields[0].Name)
	assert.Equal(t, "a", rows[0].Fields[1].Name)

	assert.Equal(t, models.KindInt, rows[0].Fields[0].Value.Kind)
	assert.Equal(t, "1", rows[0].Fields[0].Value.Str)
	assert.Equal(t, models.KindFloat, rows[0].Fields[1].Value.Kind)
	assert.Equal(t, 2.5, rows[0].Fields[1].Value.Num)

	// A trailing .0 still marks a real number.
	assert.Equal(t, models.KindFloat, rows[1].Fields[1].Value.Kind)
	assert.Equal(t, 3.0, rows[1].Fields[1].Value.Num)
}

func TestFetchRowsNullBoolAndString(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"mode":"AUTO","armed":true,"note":null,"ok":false}]`))
	}))
	defer srv.Close()

	rows, err := client.FetchRows(context.Background(), "status_flight7")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	fields := rows[0].Fields
	require.Len(t, fields, 4)
	assert.Equal(t, models.StringValue("AUTO"), fields[0].Value)
	assert.Equal(t, models.StringValue("true"), fields[1].Value)
	assert.Equal(t, models.NullValue(), fields[2].Value)
	assert.Equal(t, models.StringValue("false"), fields[3].Value)
}

func TestUnexpectedStatusIsNetworkError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.FetchLogIDs(context.Background())
	require.Error(t, err)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "fetch logs", netErr.Op)
	assert.Contains(t, netErr.URL, "/api/logs")
	assert.Contains(t, err.Error(), "500")
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	_, err := client.FetchTables(context.Background(), "flight7")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "fetch tables", netErr.Op)
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second)
	_, err := client.FetchRows(context.Background(), "sensors_flight7")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "fetch rows", netErr.Op)
}

func TestExportURL(t *testing.T) {
	client := NewClient("http://127.0.0.1:5000/", 0)
	assert.Equal(t, "http://127.0.0.1:5000/api/export/sensors_flight7", client.ExportURL("sensors_flight7"))
	// Table names straight from the service can carry anything; keep the path safe.
	assert.Equal(t, "http://127.0.0.1:5000/api/export/odd%20name", client.ExportURL("odd name"))
}
