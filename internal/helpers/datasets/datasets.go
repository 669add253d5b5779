// Package datasets creates upload datasets from in-memory data and imports
// SQL tables as datasets.
package datasets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

// ErrNoRecords is returned by CreateFromRecords for an empty slice.
var ErrNoRecords = errors.New("records list cannot be empty")

// CreateFromCSV replaces datasetName with an upload dataset holding
// csvContent. An empty connection uses filesystem_managed.
func CreateFromCSV(ctx context.Context, c *dss.Client, projectKey, datasetName, csvContent, connection string) error {
	if connection == "" {
		connection = constants.DefaultUploadConnection
	}

	existing, err := c.ListDatasets(ctx, projectKey)
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	for _, d := range existing {
		if name, _ := d["name"].(string); name == datasetName {
			c.Logger().Info("deleting existing dataset", "project", projectKey, "dataset", datasetName)
			if err := c.DeleteDataset(ctx, projectKey, datasetName); err != nil {
				return fmt.Errorf("delete dataset %s: %w", datasetName, err)
			}
			break
		}
	}

	if err := c.CreateUploadDataset(ctx, projectKey, datasetName, connection); err != nil {
		return fmt.Errorf("create dataset %s: %w", datasetName, err)
	}
	if err := c.UploadFile(ctx, projectKey, datasetName, datasetName+".csv", strings.NewReader(csvContent)); err != nil {
		return fmt.Errorf("upload %s: %w", datasetName, err)
	}
	c.Logger().Info("created dataset", "project", projectKey, "dataset", datasetName, "connection", connection)
	return nil
}

// CreateFromColumns writes columns and rows as CSV and uploads it.
func CreateFromColumns(ctx context.Context, c *dss.Client, projectKey, datasetName string, columns []string, rows [][]any, connection string) error {
	content, err := toCSV(columns, rows)
	if err != nil {
		return err
	}
	return CreateFromCSV(ctx, c, projectKey, datasetName, content, connection)
}

// CreateFromRecords uses the sorted keys of the first record as columns.
// Keys missing from later records become empty cells.
func CreateFromRecords(ctx context.Context, c *dss.Client, projectKey, datasetName string, records []map[string]any, connection string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	columns := make([]string, 0, len(records[0]))
	for k := range records[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return CreateFromColumns(ctx, c, projectKey, datasetName, columns, rows, connection)
}

func toCSV(columns []string, rows [][]any) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(cells); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

// contextProject returns projectKey, or the first visible project since
// the tables-import API is scoped to a project.
func contextProject(ctx context.Context, c *dss.Client, projectKey string) (string, error) {
	if projectKey != "" {
		return projectKey, nil
	}
	keys, err := c.ListProjectKeys(ctx)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", errors.New("no projects available")
	}
	return keys[0], nil
}

// ListSchemas returns the distinct schemas of an SQL connection.
func ListSchemas(ctx context.Context, c *dss.Client, connection, projectKey string) ([]string, error) {
	key, err := contextProject(ctx, c, projectKey)
	if err != nil {
		return nil, err
	}
	schemas, err := c.ListSQLSchemas(ctx, key, connection)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(schemas))
	out := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// ListTables returns the table names of a schema.
func ListTables(ctx context.Context, c *dss.Client, connection, schema, projectKey string) ([]string, error) {
	key, err := contextProject(ctx, c, projectKey)
	if err != nil {
		return nil, err
	}
	tables, err := c.ListSQLTables(ctx, key, connection, schema)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		if name, _ := t["table"].(string); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// ImportResult describes a finished table import.
type ImportResult struct {
	Dataset string      `json:"dataset"`
	Wait    wait.Result `json:"wait"`
}

// ImportTable imports schema.table through the tables-import flow and waits
// for it. An empty datasetName keeps the table name.
func ImportTable(ctx context.Context, c *dss.Client, projectKey, connection, schema, table, datasetName string) (ImportResult, error) {
	prepared, err := c.PrepareTablesImport(ctx, projectKey, []dss.SQLTableKey{{ConnectionName: connection, Schema: schema, Table: table}})
	if err != nil {
		return ImportResult{}, fmt.Errorf("prepare import of %s.%s: %w", schema, table, err)
	}
	candidates, _ := prepared["sqlImportCandidates"].([]any)
	if len(candidates) == 0 {
		return ImportResult{}, fmt.Errorf("prepare import of %s.%s: no sql candidates", schema, table)
	}
	first, _ := candidates[0].(dss.Raw)
	if first == nil {
		return ImportResult{}, fmt.Errorf("prepare import of %s.%s: malformed candidate", schema, table)
	}
	first["checked"] = true
	if datasetName != "" {
		first["datasetName"] = datasetName
	}

	future, err := c.ExecuteTablesImport(ctx, projectKey, prepared)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s.%s: %w", schema, table, err)
	}
	res, err := wait.Wait(ctx, future, wait.Options{Kind: wait.KindFuture})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s.%s: %w", schema, table, err)
	}

	final := datasetName
	if final == "" {
		final = table
	}
	c.Logger().Info("imported table", "schema", schema, "table", table, "dataset", final, "status", res.Status)
	return ImportResult{Dataset: final, Wait: res}, nil
}
