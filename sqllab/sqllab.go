// Package sqllab submits ad-hoc SQL to Superset's SQL Lab execution
// endpoint and returns the resulting dataset. Truncated results fail fast
// with QueryLimitReached instead of being returned silently.
package sqllab

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-superset-client/client"
	"github.com/jrsteele09/go-superset-client/internal/utils"
)

const sqlPath = "superset/sql_json/"

// clientIDLength matches the short query id Superset's frontend generates.
const clientIDLength = 11

// Session is the authenticated transport the runner executes through.
// *client.Client satisfies it.
type Session interface {
	Post(ctx context.Context, url string, body []byte) (*http.Response, error)
	Host() string
}

// Runner executes SQL against Superset databases through a session.
type Runner struct {
	session Session
	newID   func() string
}

// New creates a Runner bound to an authenticated session.
func New(session Session) *Runner {
	return &Runner{
		session: session,
		newID:   queryClientID,
	}
}

// Column describes one column of a result set.
type Column struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	IsDttm bool   `json:"is_dttm,omitempty"`
}

// ResultSet is the outcome of a successful query.
type ResultSet struct {
	Columns      []Column
	Data         []map[string]any
	DisplayLimit int
}

// RunOption adjusts a single query submission.
type RunOption func(*runPayload)

// WithQueryLimit caps the number of rows the server returns.
func WithQueryLimit(limit int) RunOption {
	return func(p *runPayload) { p.QueryLimit = limit }
}

type runPayload struct {
	DatabaseID int    `json:"database_id"`
	SQL        string `json:"sql"`
	QueryLimit int    `json:"queryLimit,omitempty"`
	ClientID   string `json:"client_id"`
}

type runResponse struct {
	Columns             []Column         `json:"columns"`
	Data                []map[string]any `json:"data"`
	DisplayLimit        *int             `json:"displayLimit,omitempty"`
	DisplayLimitReached bool             `json:"displayLimitReached,omitempty"`
}

// Run submits query against the database identified by databaseID and
// returns the dataset. When the server reports the result was truncated
// it returns a *QueryLimitReached instead of partial data; any other
// non-2xx response propagates as a *client.HTTPError.
func (r *Runner) Run(ctx context.Context, databaseID int, query string, opts ...RunOption) (*ResultSet, error) {
	payload := runPayload{
		DatabaseID: databaseID,
		SQL:        query,
		ClientID:   r.newID(),
	}
	for _, opt := range opts {
		opt(&payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "[Runner.Run] marshalling payload")
	}

	resp, err := r.session.Post(ctx, client.JoinURLs(r.session.Host(), sqlPath), body)
	if err != nil {
		return nil, errors.Wrap(err, "[Runner.Run] submitting query")
	}
	defer resp.Body.Close()

	if err := client.CheckResponse(resp); err != nil {
		return nil, err
	}

	var result runResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "[Runner.Run] decoding result")
	}

	displayLimit := utils.Value(result.DisplayLimit)
	if result.DisplayLimitReached {
		return nil, &QueryLimitReached{DisplayLimit: displayLimit}
	}

	return &ResultSet{
		Columns:      result.Columns,
		Data:         result.Data,
		DisplayLimit: displayLimit,
	}, nil
}

// queryClientID generates the short per-query id Superset tracks
// submissions by.
func queryClientID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:clientIDLength]
}
