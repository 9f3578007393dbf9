// Package api is the HTTP client for the logdeck data service. It fetches
// log IDs, table names and row data, and builds export download locations.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/logdeck/logdeck/pkg/models"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// NetworkError is the single failure type the client reports. DNS errors,
// refused connections, timeouts, non-2xx statuses and unparseable bodies
// all land here; callers display the message and never retry on their own.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client talks to one logdeck service instance.
type Client struct {
	baseURL string
	http    *http.Client
	parsers fastjson.ParserPool
}

// NewClient returns a client for the service rooted at baseURL. The timeout
// bounds every request end to end.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchLogIDs returns the available log identifiers.
func (c *Client) FetchLogIDs(ctx context.Context) ([]string, error) {
	u := c.baseURL + "/api/logs"
	body, err := c.get(ctx, "fetch logs", u)
	if err != nil {
		return nil, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, &NetworkError{Op: "fetch logs", URL: u, Err: errors.Wrap(err, "invalid response body")}
	}
	ids, err := stringItems(v)
	if err != nil {
		return nil, &NetworkError{Op: "fetch logs", URL: u, Err: err}
	}
	return ids, nil
}

// FetchTables returns the tables belonging to logID, each paired with the
// short display name shown in selectors.
func (c *Client) FetchTables(ctx context.Context, logID string) ([]models.TableDescriptor, error) {
	u := c.baseURL + "/api/tables/" + url.PathEscape(logID)
	body, err := c.get(ctx, "fetch tables", u)
	if err != nil {
		return nil, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, &NetworkError{Op: "fetch tables", URL: u, Err: errors.Wrap(err, "invalid response body")}
	}
	names, err := stringItems(v)
	if err != nil {
		return nil, &NetworkError{Op: "fetch tables", URL: u, Err: err}
	}

	tables := make([]models.TableDescriptor, 0, len(names))
	for _, name := range names {
		tables = append(tables, models.NewTableDescriptor(name, logID))
	}
	return tables, nil
}

// FetchRows returns the rows of one table. Field order inside each row
// matches the JSON document, and numeric cells keep their wire distinction
// between integers and reals.
func (c *Client) FetchRows(ctx context.Context, table string) ([]models.Row, error) {
	u := c.baseURL + "/api/data/" + url.PathEscape(table)
	body, err := c.get(ctx, "fetch rows", u)
	if err != nil {
		return nil, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, &NetworkError{Op: "fetch rows", URL: u, Err: errors.Wrap(err, "invalid response body")}
	}
	rows, err := rowItems(v)
	if err != nil {
		return nil, &NetworkError{Op: "fetch rows", URL: u, Err: err}
	}
	return rows, nil
}

// ExportURL builds the CSV download location for a table. It performs no
// I/O; the navigation itself is the caller's job.
func (c *Client) ExportURL(table string) string {
	return c.baseURL + "/api/export/" + url.PathEscape(table)
}

func (c *Client) get(ctx context.Context, op, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &NetworkError{Op: op, URL: u, Err: errors.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	return body, nil
}

func stringItems(v *fastjson.Value) ([]string, error) {
	items, err := v.Array()
	if err != nil {
		return nil, errors.Wrap(err, "expected a JSON array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return nil, errors.Wrap(err, "expected a string item")
		}
		out = append(out, string(b))
	}
	return out, nil
}

func rowItems(v *fastjson.Value) ([]models.Row, error) {
	items, err := v.Array()
	if err != nil {
		return nil, errors.Wrap(err, "expected a JSON array")
	}
	rows := make([]models.Row, 0, len(items))
	for _, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, errors.Wrap(err, "expected an object row")
		}
		fields := make([]models.Field, 0, obj.Len())
		obj.Visit(func(key []byte, val *fastjson.Value) {
			fields = append(fields, models.Field{Name: string(key), Value: cellValue(val)})
		})
		rows = append(rows, models.Row{Fields: fields})
	}
	return rows, nil
}

// cellValue copies one JSON value out of the parser arena. Numbers keep
// their raw token so "3" and "3.0" stay distinguishable downstream.
func cellValue(v *fastjson.Value) models.Value {
	switch v.Type() {
	case fastjson.TypeNull:
		return models.NullValue()
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return models.StringValue(string(b))
	case fastjson.TypeNumber:
		return models.NumberToken(string(v.MarshalTo(nil)))
	case fastjson.TypeTrue:
		return models.StringValue("true")
	case fastjson.TypeFalse:
		return models.StringValue("false")
	default:
		return models.StringValue(string(v.MarshalTo(nil)))
	}
}
