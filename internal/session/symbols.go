package session

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/datasets"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/export"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/inspection"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/jobs"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/search"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

// JSON renders v as indented JSON, or an error marker when it cannot.
func JSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<json error: %v>", err)
	}
	return string(data)
}

// symbols exposes the helper packages to interpreted code under the
// "dataiku/..." import paths. Keys are "importpath/name".
func (s *Session) symbols() interp.Exports {
	return interp.Exports{
		"dataiku/dataiku": {
			// Called from interpreted code while s.mu is held.
			"Client":  reflect.ValueOf(func() *dss.Client { return s.client }),
			"Context": reflect.ValueOf(s.calls.current),
			"JSON":    reflect.ValueOf(JSON),
		},
		"dataiku/dss/dss": {
			"APIError":         reflect.ValueOf((*dss.APIError)(nil)),
			"Client":           reflect.ValueOf((*dss.Client)(nil)),
			"ErrNotFound":      reflect.ValueOf(&dss.ErrNotFound).Elem(),
			"Future":           reflect.ValueOf((*dss.Future)(nil)),
			"Job":              reflect.ValueOf((*dss.Job)(nil)),
			"MetricValue":      reflect.ValueOf(dss.MetricValue),
			"New":              reflect.ValueOf(dss.New),
			"Options":          reflect.ValueOf((*dss.Options)(nil)),
			"Raw":              reflect.ValueOf((*dss.Raw)(nil)),
			"RecipeMainOutput": reflect.ValueOf(dss.RecipeMainOutput),
			"SQLTableKey":      reflect.ValueOf((*dss.SQLTableKey)(nil)),
			"ScenarioRun":      reflect.ValueOf((*dss.ScenarioRun)(nil)),
		},
		"dataiku/wait/wait": {
			"BuiltinDefaults":   reflect.ValueOf(wait.BuiltinDefaults),
			"Default":           reflect.ValueOf(wait.Default),
			"Defaults":          reflect.ValueOf((*wait.Defaults)(nil)),
			"ErrInvalidOptions": reflect.ValueOf(&wait.ErrInvalidOptions).Elem(),
			"FuturePredicate":   reflect.ValueOf(wait.FuturePredicate),
			"Handle":            reflect.ValueOf((*wait.Handle)(nil)),
			"HandleFunc":        reflect.ValueOf((*wait.HandleFunc)(nil)),
			"JobPredicate":      reflect.ValueOf(wait.JobPredicate),
			"Kind":              reflect.ValueOf((*wait.Kind)(nil)),
			"KindFuture":        reflect.ValueOf(wait.KindFuture),
			"KindJob":           reflect.ValueOf(wait.KindJob),
			"KindRecipe":        reflect.ValueOf(wait.KindRecipe),
			"KindScenario":      reflect.ValueOf(wait.KindScenario),
			"New":               reflect.ValueOf(wait.New),
			"Options":           reflect.ValueOf((*wait.Options)(nil)),
			"Predicate":         reflect.ValueOf((*wait.Predicate)(nil)),
			"PredicateFor":      reflect.ValueOf(wait.PredicateFor),
			"Report":            reflect.ValueOf((*wait.Report)(nil)),
			"Result":            reflect.ValueOf((*wait.Result)(nil)),
			"ScenarioPredicate": reflect.ValueOf(wait.ScenarioPredicate),
			"StatusAborted":     reflect.ValueOf(wait.StatusAborted),
			"StatusDone":        reflect.ValueOf(wait.StatusDone),
			"StatusFailed":      reflect.ValueOf(wait.StatusFailed),
			"StatusRunning":     reflect.ValueOf(wait.StatusRunning),
			"StatusTimeout":     reflect.ValueOf(wait.StatusTimeout),
			"StatusUnknown":     reflect.ValueOf(wait.StatusUnknown),
			"Wait":              reflect.ValueOf(wait.Wait),
			"Waiter":            reflect.ValueOf((*wait.Waiter)(nil)),

			"_Handle": reflect.ValueOf((*_wait_Handle)(nil)),
		},
		"dataiku/jobs/jobs": {
			"BuildAndWait":             reflect.ValueOf(jobs.BuildAndWait),
			"ComputeAndApplySchema":    reflect.ValueOf(jobs.ComputeAndApplySchema),
			"GetJobLog":                reflect.ValueOf(jobs.GetJobLog),
			"ModeNonRecursiveForced":   reflect.ValueOf(jobs.ModeNonRecursiveForced),
			"ModeRecursive":            reflect.ValueOf(jobs.ModeRecursive),
			"ModeRecursiveForced":      reflect.ValueOf(jobs.ModeRecursiveForced),
			"ModeRecursiveMissingOnly": reflect.ValueOf(jobs.ModeRecursiveMissingOnly),
			"Options":                  reflect.ValueOf((*jobs.Options)(nil)),
			"RunRecipeAndWait":         reflect.ValueOf(jobs.RunRecipeAndWait),
			"RunScenarioAndWait":       reflect.ValueOf(jobs.RunScenarioAndWait),
			"SchemaUpdate":             reflect.ValueOf((*jobs.SchemaUpdate)(nil)),
			"WaitForJob":               reflect.ValueOf(jobs.WaitForJob),
		},
		"dataiku/inspection/inspection": {
			"Column":                 reflect.ValueOf((*inspection.Column)(nil)),
			"Columns":                reflect.ValueOf(inspection.Columns),
			"ConnectionInfo":         reflect.ValueOf(inspection.ConnectionInfo),
			"Dataset":                reflect.ValueOf((*inspection.Dataset)(nil)),
			"DatasetInfo":            reflect.ValueOf(inspection.DatasetInfo),
			"ListConnectionsSummary": reflect.ValueOf(inspection.ListConnectionsSummary),
			"ListProjectsSummary":    reflect.ValueOf(inspection.ListProjectsSummary),
			"Location":               reflect.ValueOf(inspection.Location),
			"Project":                reflect.ValueOf((*inspection.Project)(nil)),
			"ProjectSummary":         reflect.ValueOf(inspection.ProjectSummary),
			"RowRecords":             reflect.ValueOf(inspection.RowRecords),
			"UserInfo":               reflect.ValueOf(inspection.UserInfo),
		},
		"dataiku/search/search": {
			"FindByConnection": reflect.ValueOf(search.FindByConnection),
			"FindByType":       reflect.ValueOf(search.FindByType),
			"FindDatasets":     reflect.ValueOf(search.FindDatasets),
			"FindRecipes":      reflect.ValueOf(search.FindRecipes),
			"FindScenarios":    reflect.ValueOf(search.FindScenarios),
			"FindUsers":        reflect.ValueOf(search.FindUsers),
			"Match":            reflect.ValueOf((*search.Match)(nil)),
			"User":             reflect.ValueOf((*search.User)(nil)),
		},
		"dataiku/export/export": {
			"ColumnStats":    reflect.ValueOf((*export.ColumnStats)(nil)),
			"CountRows":      reflect.ValueOf(export.CountRows),
			"Describe":       reflect.ValueOf(export.Describe),
			"DescribeLimit":  reflect.ValueOf(export.DescribeLimit),
			"Description":    reflect.ValueOf((*export.Description)(nil)),
			"GetColumnNames": reflect.ValueOf(export.GetColumnNames),
			"GetSchema":      reflect.ValueOf(export.GetSchema),
			"Head":           reflect.ValueOf(export.Head),
			"Sample":         reflect.ValueOf(export.Sample),
			"ToCSVString":    reflect.ValueOf(export.ToCSVString),
			"ToRecords":      reflect.ValueOf(export.ToRecords),
		},
		"dataiku/datasets/datasets": {
			"CreateFromCSV":     reflect.ValueOf(datasets.CreateFromCSV),
			"CreateFromColumns": reflect.ValueOf(datasets.CreateFromColumns),
			"CreateFromRecords": reflect.ValueOf(datasets.CreateFromRecords),
			"ErrNoRecords":      reflect.ValueOf(&datasets.ErrNoRecords).Elem(),
			"ImportResult":      reflect.ValueOf((*datasets.ImportResult)(nil)),
			"ImportTable":       reflect.ValueOf(datasets.ImportTable),
			"ListSchemas":       reflect.ValueOf(datasets.ListSchemas),
			"ListTables":        reflect.ValueOf(datasets.ListTables),
		},
	}
}

// _wait_Handle lets interpreted types satisfy wait.Handle.
type _wait_Handle struct {
	IValue  any
	WStatus func(ctx context.Context) (map[string]any, error)
}

func (w _wait_Handle) Status(ctx context.Context) (map[string]any, error) {
	return w.WStatus(ctx)
}
