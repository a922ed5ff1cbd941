package sqllab_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-superset-client/client"
	"github.com/jrsteele09/go-superset-client/sqllab"
)

// testSession is a minimal sqllab.Session over a plain HTTP client,
// standing in for an authenticated *client.Client.
type testSession struct {
	host string
}

func (s *testSession) Post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

func (s *testSession) Host() string { return s.host }

type capturedQuery struct {
	DatabaseID int    `json:"database_id"`
	SQL        string `json:"sql"`
	QueryLimit int    `json:"queryLimit"`
	ClientID   string `json:"client_id"`
}

func newSQLServer(t *testing.T, respond func(w http.ResponseWriter, q capturedQuery)) (*httptest.Server, *capturedQuery) {
	t.Helper()

	var last capturedQuery
	mux := http.NewServeMux()
	mux.HandleFunc("POST /superset/sql_json", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&last))
		respond(w, last)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &last
}

func TestRunReturnsResultSet(t *testing.T) {
	server, last := newSQLServer(t, func(w http.ResponseWriter, q capturedQuery) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"columns": []map[string]any{
				{"name": "id", "type": "BIGINT"},
				{"name": "created_at", "type": "TIMESTAMP", "is_dttm": true},
			},
			"data": []map[string]any{
				{"id": 1, "created_at": "2024-06-01"},
				{"id": 2, "created_at": "2024-06-02"},
			},
			"displayLimit":        1000,
			"displayLimitReached": false,
		})
	})

	runner := sqllab.New(&testSession{host: server.URL})
	result, err := runner.Run(context.Background(), 3, "SELECT 1", sqllab.WithQueryLimit(10))
	require.NoError(t, err)

	assert.Equal(t, 3, last.DatabaseID)
	assert.Equal(t, "SELECT 1", last.SQL)
	assert.Equal(t, 10, last.QueryLimit)
	assert.Len(t, last.ClientID, 11)

	require.Len(t, result.Columns, 2)
	assert.Equal(t, sqllab.Column{Name: "id", Type: "BIGINT"}, result.Columns[0])
	assert.True(t, result.Columns[1].IsDttm)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, 1000, result.DisplayLimit)
}

func TestRunOmitsQueryLimitWhenUnset(t *testing.T) {
	server, last := newSQLServer(t, func(w http.ResponseWriter, q capturedQuery) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"columns": []map[string]any{},
			"data":    []map[string]any{},
		})
	})

	runner := sqllab.New(&testSession{host: server.URL})
	_, err := runner.Run(context.Background(), 1, "SELECT 1")
	require.NoError(t, err)
	assert.Zero(t, last.QueryLimit)
}

func TestRunFailsFastWhenDisplayLimitReached(t *testing.T) {
	server, _ := newSQLServer(t, func(w http.ResponseWriter, q capturedQuery) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"columns":             []map[string]any{{"name": "id", "type": "BIGINT"}},
			"data":                []map[string]any{{"id": 1}},
			"displayLimit":        1000,
			"displayLimitReached": true,
		})
	})

	runner := sqllab.New(&testSession{host: server.URL})
	result, err := runner.Run(context.Background(), 1, "SELECT * FROM big_table")

	require.Nil(t, result)
	var limitErr *sqllab.QueryLimitReached
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 1000, limitErr.DisplayLimit)
	assert.Contains(t, err.Error(), "1000")
}

func TestRunPropagatesHTTPErrors(t *testing.T) {
	server, _ := newSQLServer(t, func(w http.ResponseWriter, q capturedQuery) {
		http.Error(w, "database unreachable", http.StatusInternalServerError)
	})

	runner := sqllab.New(&testSession{host: server.URL})
	_, err := runner.Run(context.Background(), 1, "SELECT 1")

	var httpErr *client.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}
