// Package export reads dataset rows into records, text tables and CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/inspection"
)

// DescribeLimit caps the rows scanned by Describe.
const DescribeLimit = 10000

// GetSchema returns the dataset columns.
func GetSchema(ctx context.Context, c *dss.Client, projectKey, datasetName string) ([]inspection.Column, error) {
	schema, err := c.DatasetSchema(ctx, projectKey, datasetName)
	if err != nil {
		return nil, fmt.Errorf("schema %s.%s: %w", projectKey, datasetName, err)
	}
	return inspection.Columns(dss.Raw{"schema": schema}), nil
}

// GetColumnNames returns the dataset column names in order.
func GetColumnNames(ctx context.Context, c *dss.Client, projectKey, datasetName string) ([]string, error) {
	cols, err := GetSchema(ctx, c, projectKey, datasetName)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names, nil
}

// ToRecords returns up to limit rows keyed by column name (default 100).
func ToRecords(ctx context.Context, c *dss.Client, projectKey, datasetName string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 100
	}
	cols, rows, err := read(ctx, c, projectKey, datasetName, limit)
	if err != nil {
		return nil, err
	}
	return inspection.RowRecords(cols, rows), nil
}

// Sample returns the first n records (default 10).
func Sample(ctx context.Context, c *dss.Client, projectKey, datasetName string, n int) ([]map[string]any, error) {
	if n <= 0 {
		n = 10
	}
	return ToRecords(ctx, c, projectKey, datasetName, n)
}

// Head renders the first n rows (default 5) as an aligned text table.
func Head(ctx context.Context, c *dss.Client, projectKey, datasetName string, n int) (string, error) {
	if n <= 0 {
		n = 5
	}
	cols, rows, err := read(ctx, c, projectKey, datasetName, n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CountRows returns the record count metric, or counts rows by streaming
// the dataset when no metric has been computed.
func CountRows(ctx context.Context, c *dss.Client, projectKey, datasetName string) (int64, error) {
	if metrics, err := c.LastMetrics(ctx, projectKey, datasetName); err == nil {
		if v, ok := dss.MetricValue(metrics, "records:COUNT_RECORDS"); ok {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, nil
			}
		}
	}
	var n int64
	err := c.IterRows(ctx, projectKey, datasetName, func([]string) bool {
		n++
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("count rows %s.%s: %w", projectKey, datasetName, err)
	}
	return n, nil
}

// ColumnStats summarizes one column. Numeric fields are set only when
// every non-empty value parses as a number.
type ColumnStats struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Count    int      `json:"count"`
	Missing  int      `json:"missing"`
	Distinct int      `json:"distinct"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Mean     *float64 `json:"mean,omitempty"`
}

// Description is the result of Describe.
type Description struct {
	Rows    int           `json:"rows"`
	Columns []ColumnStats `json:"columns"`
}

// Describe computes per-column statistics over the first DescribeLimit rows.
func Describe(ctx context.Context, c *dss.Client, projectKey, datasetName string) (Description, error) {
	cols, rows, err := read(ctx, c, projectKey, datasetName, DescribeLimit)
	if err != nil {
		return Description{}, err
	}
	desc := Description{Rows: len(rows), Columns: make([]ColumnStats, len(cols))}
	for i, col := range cols {
		st := ColumnStats{Name: col.Name, Type: col.Type}
		seen := make(map[string]struct{})
		numeric := true
		var sum float64
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range rows {
			if i >= len(row) || row[i] == "" {
				st.Missing++
				continue
			}
			v := row[i]
			st.Count++
			seen[v] = struct{}{}
			if !numeric {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				numeric = false
				continue
			}
			sum += f
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
		st.Distinct = len(seen)
		if numeric && st.Count > 0 {
			mean := sum / float64(st.Count)
			st.Min, st.Max, st.Mean = &lo, &hi, &mean
		}
		desc.Columns[i] = st
	}
	return desc, nil
}

// ToCSVString returns up to limit rows (default 100) as CSV with a header.
func ToCSVString(ctx context.Context, c *dss.Client, projectKey, datasetName string, limit int) (string, error) {
	if limit <= 0 {
		limit = 100
	}
	cols, rows, err := read(ctx, c, projectKey, datasetName, limit)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

func read(ctx context.Context, c *dss.Client, projectKey, datasetName string, limit int) ([]inspection.Column, [][]string, error) {
	cols, err := GetSchema(ctx, c, projectKey, datasetName)
	if err != nil {
		return nil, nil, err
	}
	rows, err := c.Rows(ctx, projectKey, datasetName, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s.%s: %w", projectKey, datasetName, err)
	}
	return cols, rows, nil
}
