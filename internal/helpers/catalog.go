// Package helpers holds the catalog of helper packages available to code
// run through the execution session.
package helpers

import "strings"

// Section lists the signatures of one helper package.
type Section struct {
	Package   string
	Functions []string
}

// Sections is the helper catalog in display order.
var Sections = []Section{
	{
		Package: "jobs",
		Functions: []string{
			"BuildAndWait(ctx, client, projectKey, datasetName string, opts ...jobs.Options) (wait.Result, error)  // Options{Mode, Timeout, PollInterval}, default mode jobs.ModeRecursive",
			"RunScenarioAndWait(ctx, client, projectKey, scenarioID string, opts ...jobs.Options) (wait.Result, error)",
			"RunRecipeAndWait(ctx, client, projectKey, recipeName string, opts ...jobs.Options) (wait.Result, error)",
			"WaitForJob(ctx, job wait.Handle, opts ...jobs.Options) (wait.Result, error)",
			"GetJobLog(ctx, client, projectKey, jobID string) (string, error)",
			"ComputeAndApplySchema(ctx, client, projectKey, recipeName string) (jobs.SchemaUpdate, error)  // REQUIRED after creating/modifying recipes",
		},
	},
	{
		Package: "inspection",
		Functions: []string{
			"DatasetInfo(ctx, client, projectKey, datasetName string, sampleSize int) (inspection.Dataset, error)",
			"ProjectSummary(ctx, client, projectKey string) (inspection.Project, error)",
			"ListProjectsSummary(ctx, client) ([]dss.Raw, error)",
			"ConnectionInfo(ctx, client, connectionName string) (dss.Raw, error)",
			"ListConnectionsSummary(ctx, client) ([]dss.Raw, error)",
			"UserInfo(ctx, client, login string) (dss.Raw, error)  // empty login = API key owner",
		},
	},
	{
		Package: "search",
		Functions: []string{
			"FindDatasets(ctx, client, pattern, projectKey string) ([]search.Match, error)  // empty projectKey = all projects",
			"FindRecipes(ctx, client, pattern, projectKey string) ([]search.Match, error)",
			"FindScenarios(ctx, client, pattern, projectKey string) ([]search.Match, error)",
			"FindByConnection(ctx, client, connectionName string) ([]search.Match, error)",
			"FindByType(ctx, client, datasetType, projectKey string) ([]search.Match, error)",
			"FindUsers(ctx, client, pattern string) ([]search.User, error)",
		},
	},
	{
		Package: "export",
		Functions: []string{
			"ToRecords(ctx, client, projectKey, datasetName string, limit int) ([]map[string]any, error)  // limit 0 = 100",
			"Sample(ctx, client, projectKey, datasetName string, n int) ([]map[string]any, error)  // n 0 = 10",
			"GetSchema(ctx, client, projectKey, datasetName string) ([]inspection.Column, error)",
			"GetColumnNames(ctx, client, projectKey, datasetName string) ([]string, error)",
			"CountRows(ctx, client, projectKey, datasetName string) (int64, error)",
			"Head(ctx, client, projectKey, datasetName string, n int) (string, error)  // n 0 = 5",
			"Describe(ctx, client, projectKey, datasetName string) (export.Description, error)",
			"ToCSVString(ctx, client, projectKey, datasetName string, limit int) (string, error)",
		},
	},
	{
		Package: "datasets",
		Functions: []string{
			"CreateFromCSV(ctx, client, projectKey, datasetName, csvContent, connection string) error  // empty connection = filesystem_managed",
			"CreateFromColumns(ctx, client, projectKey, datasetName string, columns []string, rows [][]any, connection string) error",
			"CreateFromRecords(ctx, client, projectKey, datasetName string, records []map[string]any, connection string) error",
			"ListSchemas(ctx, client, connection, projectKey string) ([]string, error)",
			"ListTables(ctx, client, connection, schema, projectKey string) ([]string, error)",
			"ImportTable(ctx, client, projectKey, connection, schema, table, datasetName string) (datasets.ImportResult, error)",
		},
	},
	{
		Package: "wait",
		Functions: []string{
			"Wait(ctx, handle wait.Handle, wait.Options{Kind, Timeout, PollInterval, Predicate}) (wait.Result, error)",
			"HandleFunc(func(ctx) (map[string]any, error))  // adapts a status function",
			"JobPredicate, ScenarioPredicate, FuturePredicate  // built-in wait.Predicate values",
		},
	},
	{
		Package: "client (*dss.Client)",
		Functions: []string{
			"ListProjectKeys(ctx) / ListProjects(ctx) / ProjectMetadata(ctx, projectKey)",
			"ListDatasets / ListRecipes / ListScenarios / ListJobs(ctx, projectKey)",
			"DatasetSettings / DatasetSchema / LastMetrics / DeleteDataset(ctx, projectKey, datasetName)",
			"Rows(ctx, projectKey, datasetName, limit) / IterRows(ctx, projectKey, datasetName, fn)",
			"BuildDataset(ctx, projectKey, datasetName, mode) (*dss.Job, error)",
			"RunScenario(ctx, projectKey, scenarioID, params) (*dss.ScenarioRun, error)",
			"RunRecipe(ctx, projectKey, recipeName) (*dss.Job, error)",
			"Job(projectKey, jobID) *dss.Job  // Status, Log, Abort",
			"ListConnections / Connection / TestConnection / ListUsers / User / CurrentUser",
		},
	},
	{
		Package: "dataiku",
		Functions: []string{
			"Client() *dss.Client  // same value as the client variable",
			"Context() context.Context  // same value as the ctx variable",
			"JSON(v any) string  // indented JSON for printing",
		},
	},
}

// Catalog renders Sections as text.
func Catalog() string {
	var b strings.Builder
	for i, sec := range Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== ")
		b.WriteString(sec.Package)
		b.WriteString(" ===\n")
		for _, fn := range sec.Functions {
			b.WriteString("  ")
			b.WriteString(fn)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
