package dss

import (
	"context"
	"fmt"
	"net/url"
)

// Future is a handle on a long-running DSS action.
type Future struct {
	client *Client
	ID     string
}

// Future returns a handle on an existing future.
func (c *Client) Future(id string) *Future {
	return &Future{client: c, ID: id}
}

// Status peeks at the future state without consuming its result.
func (f *Future) Status(ctx context.Context) (Raw, error) {
	var out Raw
	query := url.Values{"peek": []string{"true"}}
	if err := f.client.getJSON(ctx, "/futures/"+esc(f.ID), query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Abort asks DSS to abort the future.
func (f *Future) Abort(ctx context.Context) error {
	return f.client.delete(ctx, "/futures/"+esc(f.ID))
}

// ListSQLSchemas lists schemas visible through an SQL connection.
func (c *Client) ListSQLSchemas(ctx context.Context, projectKey, connection string) ([]string, error) {
	query := url.Values{"connectionName": []string{connection}}
	var out []string
	if err := c.getJSON(ctx, projectPath(projectKey, "datasets", "tables-import", "actions", "list-schemas"), query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSQLTables lists tables of a schema; each entry carries at least "table".
func (c *Client) ListSQLTables(ctx context.Context, projectKey, connection, schema string) ([]Raw, error) {
	query := url.Values{"connectionName": []string{connection}}
	if schema != "" {
		query.Set("schemaName", schema)
	}
	var out []Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "datasets", "tables-import", "actions", "list-tables"), query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SQLTableKey identifies a table to import.
type SQLTableKey struct {
	ConnectionName string `json:"connectionName"`
	Schema         string `json:"schema,omitempty"`
	Table          string `json:"table"`
}

// PrepareTablesImport returns import candidates for the given tables.
// The SQL candidates are listed under "sqlImportCandidates".
func (c *Client) PrepareTablesImport(ctx context.Context, projectKey string, keys []SQLTableKey) (Raw, error) {
	var out Raw
	body := Raw{"keys": keys}
	if err := c.postJSON(ctx, projectPath(projectKey, "datasets", "tables-import", "actions", "prepare-from-keys"), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteTablesImport starts importing the checked candidates.
func (c *Client) ExecuteTablesImport(ctx context.Context, projectKey string, candidates Raw) (*Future, error) {
	var out Raw
	if err := c.postJSON(ctx, projectPath(projectKey, "datasets", "tables-import", "actions", "execute-from-candidates"), candidates, &out); err != nil {
		return nil, err
	}
	id := str(out, "jobId")
	if id == "" {
		return nil, fmt.Errorf("tables import: response has no future id")
	}
	return c.Future(id), nil
}
