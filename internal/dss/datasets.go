package dss

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// DatasetSettings returns the full dataset definition (type, params, schema).
func (c *Client) DatasetSettings(ctx context.Context, projectKey, datasetName string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "datasets", esc(datasetName)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveDatasetSettings replaces the dataset definition.
func (c *Client) SaveDatasetSettings(ctx context.Context, projectKey, datasetName string, settings Raw) error {
	return c.putJSON(ctx, projectPath(projectKey, "datasets", esc(datasetName)), settings, nil)
}

// DatasetSchema returns the dataset schema ({"columns": [...]}).
func (c *Client) DatasetSchema(ctx context.Context, projectKey, datasetName string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "datasets", esc(datasetName), "schema"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDataset deletes a dataset definition.
func (c *Client) DeleteDataset(ctx context.Context, projectKey, datasetName string) error {
	return c.delete(ctx, projectPath(projectKey, "datasets", esc(datasetName)))
}

// CreateUploadDataset creates an empty "UploadedFiles" dataset stored on connection.
func (c *Client) CreateUploadDataset(ctx context.Context, projectKey, datasetName, connection string) error {
	def := Raw{
		"projectKey": projectKey,
		"name":       datasetName,
		"type":       "UploadedFiles",
		"params":     Raw{"uploadConnection": connection},
	}
	return c.postJSON(ctx, projectPath(projectKey, "datasets", ""), def, nil)
}

// UploadFile adds a file to an upload dataset.
func (c *Client) UploadFile(ctx context.Context, projectKey, datasetName, fileName string, content io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, projectPath(projectKey, "datasets", esc(datasetName), "uploaded", "files"), nil, &body, writer.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// IterRows streams dataset rows in schema order. fn returns false to stop.
func (c *Client) IterRows(ctx context.Context, projectKey, datasetName string, fn func(row []string) bool) error {
	query := url.Values{"format": []string{"tsv-excel-noheader"}}
	resp, err := c.do(ctx, http.MethodGet, projectPath(projectKey, "datasets", esc(datasetName), "data", ""), query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := csv.NewReader(resp.Body)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		if !fn(row) {
			return nil
		}
	}
}

// Rows returns up to limit rows; limit <= 0 reads the whole dataset.
func (c *Client) Rows(ctx context.Context, projectKey, datasetName string, limit int) ([][]string, error) {
	var rows [][]string
	err := c.IterRows(ctx, projectKey, datasetName, func(row []string) bool {
		rows = append(rows, row)
		return limit <= 0 || len(rows) < limit
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LastMetrics returns the last computed metric values of a
// non-partitioned dataset.
func (c *Client) LastMetrics(ctx context.Context, projectKey, datasetName string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "datasets", esc(datasetName), "metrics", "last", "NP"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MetricValue extracts the latest value of metricID from a LastMetrics payload.
func MetricValue(metrics Raw, metricID string) (string, bool) {
	list, _ := metrics["metrics"].([]any)
	for _, item := range list {
		entry, _ := item.(Raw)
		if entry == nil {
			continue
		}
		id := str(entry, "metricId")
		if meta, ok := entry["metric"].(Raw); ok && id == "" {
			id = str(meta, "id")
		}
		if id != metricID {
			continue
		}
		values, _ := entry["lastValues"].([]any)
		if len(values) == 0 {
			return "", false
		}
		first, _ := values[0].(Raw)
		switch v := first["value"].(type) {
		case string:
			return v, true
		case float64:
			return fmt.Sprintf("%.0f", v), true
		}
	}
	return "", false
}
