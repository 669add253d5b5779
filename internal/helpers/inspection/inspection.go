// Package inspection combines several DSS calls into single views of
// datasets, projects, connections and users.
package inspection

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/security"
)

// Column is one schema column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Dataset describes a dataset with a few sample rows.
type Dataset struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Schema     []Column         `json:"schema"`
	RowCount   *int64           `json:"row_count"`
	Sample     []map[string]any `json:"sample"`
	Connection string           `json:"connection,omitempty"`
	Path       string           `json:"path,omitempty"`
}

// Columns extracts the schema columns from dataset settings.
func Columns(settings dss.Raw) []Column {
	schema, _ := settings["schema"].(dss.Raw)
	raw, _ := schema["columns"].([]any)
	cols := make([]Column, 0, len(raw))
	for _, item := range raw {
		col, _ := item.(dss.Raw)
		name, _ := col["name"].(string)
		typ, _ := col["type"].(string)
		cols = append(cols, Column{Name: name, Type: typ})
	}
	return cols
}

// Location returns the connection and path (or table) from dataset settings.
func Location(settings dss.Raw) (connection, path string) {
	params, _ := settings["params"].(dss.Raw)
	connection, _ = params["connection"].(string)
	path, _ = params["path"].(string)
	if path == "" {
		path, _ = params["table"].(string)
	}
	return connection, path
}

// RowRecords zips rows with column names.
func RowRecords(cols []Column, rows [][]string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if i < len(row) {
				rec[col.Name] = row[i]
			} else {
				rec[col.Name] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

// DatasetInfo returns schema, location, record count and up to sampleSize
// rows. The record count and sample are best effort and left empty when
// DSS cannot provide them.
func DatasetInfo(ctx context.Context, c *dss.Client, projectKey, datasetName string, sampleSize int) (Dataset, error) {
	settings, err := c.DatasetSettings(ctx, projectKey, datasetName)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %s.%s: %w", projectKey, datasetName, err)
	}
	if sampleSize <= 0 {
		sampleSize = 5
	}

	info := Dataset{
		Name:   datasetName,
		Type:   str(settings, "type"),
		Schema: Columns(settings),
		Sample: []map[string]any{},
	}
	info.Connection, info.Path = Location(settings)

	if metrics, err := c.LastMetrics(ctx, projectKey, datasetName); err == nil {
		if v, ok := dss.MetricValue(metrics, "records:COUNT_RECORDS"); ok {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				info.RowCount = &n
			}
		}
	}
	if rows, err := c.Rows(ctx, projectKey, datasetName, sampleSize); err == nil {
		info.Sample = RowRecords(info.Schema, rows)
	}
	return info, nil
}

// Project summarizes a project's flow objects.
type Project struct {
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Datasets      []dss.Raw `json:"datasets"`
	Recipes       []dss.Raw `json:"recipes"`
	Scenarios     []dss.Raw `json:"scenarios"`
	RecentJobs    []dss.Raw `json:"recent_jobs"`
	DatasetCount  int       `json:"dataset_count"`
	RecipeCount   int       `json:"recipe_count"`
	ScenarioCount int       `json:"scenario_count"`
}

// ProjectSummary lists datasets, recipes, scenarios and the last five jobs.
func ProjectSummary(ctx context.Context, c *dss.Client, projectKey string) (Project, error) {
	meta, err := c.ProjectMetadata(ctx, projectKey)
	if err != nil {
		return Project{}, fmt.Errorf("project %s metadata: %w", projectKey, err)
	}
	datasets, err := c.ListDatasets(ctx, projectKey)
	if err != nil {
		return Project{}, fmt.Errorf("project %s datasets: %w", projectKey, err)
	}
	recipes, err := c.ListRecipes(ctx, projectKey)
	if err != nil {
		return Project{}, fmt.Errorf("project %s recipes: %w", projectKey, err)
	}
	scenarios, err := c.ListScenarios(ctx, projectKey)
	if err != nil {
		return Project{}, fmt.Errorf("project %s scenarios: %w", projectKey, err)
	}
	// Job history needs extra permissions on some instances.
	jobs, _ := c.ListJobs(ctx, projectKey)
	if len(jobs) > 5 {
		jobs = jobs[:5]
	}

	name := str(meta, "label")
	if name == "" {
		name = projectKey
	}
	return Project{
		Key:           projectKey,
		Name:          name,
		Description:   str(meta, "description"),
		Datasets:      pick(datasets, "name", "type"),
		Recipes:       pick(recipes, "name", "type"),
		Scenarios:     pick(scenarios, "id", "name"),
		RecentJobs:    nonNil(jobs),
		DatasetCount:  len(datasets),
		RecipeCount:   len(recipes),
		ScenarioCount: len(scenarios),
	}, nil
}

// ListProjectsSummary returns key, name, owner and last modification of
// every project.
func ListProjectsSummary(ctx context.Context, c *dss.Client) ([]dss.Raw, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dss.Raw, 0, len(projects))
	for _, p := range projects {
		version, _ := p["versionTag"].(dss.Raw)
		out = append(out, dss.Raw{
			"key":           p["projectKey"],
			"name":          p["name"],
			"owner":         p["ownerLogin"],
			"last_modified": version["lastModifiedOn"],
		})
	}
	return out, nil
}

// ConnectionInfo returns a connection definition without its secrets plus
// the result of a connection test. A failing test is reported in the
// result, not as an error.
func ConnectionInfo(ctx context.Context, c *dss.Client, name string) (dss.Raw, error) {
	def, err := c.Connection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("connection %s: %w", name, err)
	}
	params, _ := def["params"].(dss.Raw)

	var test any
	if report, err := c.TestConnection(ctx, name); err != nil {
		test = dss.Raw{"ok": false, "error": err.Error()}
	} else {
		test = report
	}

	return dss.Raw{
		"name":        name,
		"type":        def["type"],
		"usable_by":   def["usableBy"],
		"params":      nonNilMap(security.DropSecrets(params)),
		"test_result": test,
	}, nil
}

// ListConnectionsSummary returns name, type and usability of every connection.
func ListConnectionsSummary(ctx context.Context, c *dss.Client) ([]dss.Raw, error) {
	conns, err := c.ListConnections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dss.Raw, 0, len(conns))
	for _, name := range sortedKeys(conns) {
		def := conns[name]
		out = append(out, dss.Raw{
			"name":      name,
			"type":      def["type"],
			"usable_by": def["usableBy"],
		})
	}
	return out, nil
}

// UserInfo returns the settings of login, or of the API key owner when
// login is empty.
func UserInfo(ctx context.Context, c *dss.Client, login string) (dss.Raw, error) {
	if login != "" {
		return c.User(ctx, login)
	}
	me, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if own := str(me, "login"); own != "" {
		// Non-admin keys cannot read admin user settings.
		if settings, err := c.User(ctx, own); err == nil {
			return settings, nil
		}
	}
	return me, nil
}
