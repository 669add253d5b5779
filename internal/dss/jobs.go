package dss

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JedIV/dataiku-chat-control/internal/constants"
)

// Job is a handle on a DSS build job.
type Job struct {
	client     *Client
	ProjectKey string
	ID         string
}

// Job returns a handle on an existing job.
func (c *Client) Job(projectKey, jobID string) *Job {
	return &Job{client: c, ProjectKey: projectKey, ID: jobID}
}

// Status returns the raw job status payload.
func (j *Job) Status(ctx context.Context) (Raw, error) {
	var out Raw
	if err := j.client.getJSON(ctx, projectPath(j.ProjectKey, "jobs", esc(j.ID), ""), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Log returns the full job log.
func (j *Job) Log(ctx context.Context) (string, error) {
	return j.client.getText(ctx, projectPath(j.ProjectKey, "jobs", esc(j.ID), "log"), nil)
}

// Abort asks DSS to abort the job.
func (j *Job) Abort(ctx context.Context) error {
	return j.client.postJSON(ctx, projectPath(j.ProjectKey, "jobs", esc(j.ID), "abort"), Raw{}, nil)
}

// BuildDataset starts a job that builds a dataset with the given build mode.
func (c *Client) BuildDataset(ctx context.Context, projectKey, datasetName, mode string) (*Job, error) {
	return c.startJob(ctx, projectKey, Raw{"projectKey": projectKey, "id": datasetName, "type": "DATASET"}, mode)
}

func (c *Client) startJob(ctx context.Context, projectKey string, output Raw, mode string) (*Job, error) {
	def := Raw{
		"outputs": []Raw{output},
		"type":    mode,
	}
	var out Raw
	if err := c.postJSON(ctx, projectPath(projectKey, "jobs", ""), def, &out); err != nil {
		return nil, err
	}
	id := str(out, "id")
	if id == "" {
		return nil, fmt.Errorf("start job: response has no job id")
	}
	return c.Job(projectKey, id), nil
}

// Recipe returns the recipe definition and payload.
func (c *Client) Recipe(ctx context.Context, projectKey, recipeName string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "recipes", esc(recipeName)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipeMainOutput returns the reference of the first main output of a recipe.
func RecipeMainOutput(recipe Raw) (string, error) {
	def, _ := recipe["recipe"].(Raw)
	if def == nil {
		def = recipe
	}
	outputs, _ := def["outputs"].(Raw)
	main, _ := outputs["main"].(Raw)
	items, _ := main["items"].([]any)
	if len(items) == 0 {
		return "", fmt.Errorf("recipe has no main output")
	}
	first, _ := items[0].(Raw)
	ref := str(first, "ref")
	if ref == "" {
		return "", fmt.Errorf("recipe main output has no ref")
	}
	return ref, nil
}

// RunRecipe builds the main output of a recipe without its upstream,
// which is how DSS runs a single recipe.
func (c *Client) RunRecipe(ctx context.Context, projectKey, recipeName string) (*Job, error) {
	recipe, err := c.Recipe(ctx, projectKey, recipeName)
	if err != nil {
		return nil, err
	}
	ref, err := RecipeMainOutput(recipe)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", recipeName, err)
	}
	return c.BuildDataset(ctx, projectKey, ref, constants.BuildModeNonRecursiveForced)
}

// ComputeSchemaUpdate asks DSS which output schema changes a recipe needs.
func (c *Client) ComputeSchemaUpdate(ctx context.Context, projectKey, recipeName string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "recipes", esc(recipeName), "schema-update"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplySchemaUpdate applies a result previously computed by ComputeSchemaUpdate.
func (c *Client) ApplySchemaUpdate(ctx context.Context, projectKey, recipeName string, update Raw) error {
	return c.postJSON(ctx, projectPath(projectKey, "recipes", esc(recipeName), "schema-update"), update, nil)
}

// ScenarioRun is a handle on a triggered scenario run.
type ScenarioRun struct {
	client       *Client
	ProjectKey   string
	ScenarioID   string
	TriggerID    string
	TriggerRunID string
}

// RunScenario triggers a scenario and returns a handle on the run.
func (c *Client) RunScenario(ctx context.Context, projectKey, scenarioID string, params Raw) (*ScenarioRun, error) {
	if params == nil {
		params = Raw{}
	}
	var out Raw
	if err := c.postJSON(ctx, projectPath(projectKey, "scenarios", esc(scenarioID), "run"), params, &out); err != nil {
		return nil, err
	}
	trigger, _ := out["trigger"].(Raw)
	run := &ScenarioRun{
		client:       c,
		ProjectKey:   projectKey,
		ScenarioID:   scenarioID,
		TriggerID:    str(trigger, "id"),
		TriggerRunID: str(out, "runId"),
	}
	if run.TriggerRunID == "" {
		return nil, fmt.Errorf("run scenario %s: response has no run id", scenarioID)
	}
	return run, nil
}

// Status returns the trigger-fired payload; scenarioRun.result.outcome is
// set once the run has finished.
func (r *ScenarioRun) Status(ctx context.Context) (Raw, error) {
	query := url.Values{"triggerRunId": []string{r.TriggerRunID}}
	var out Raw
	path := projectPath(r.ProjectKey, "scenarios", "trigger", esc(r.ScenarioID), esc(r.TriggerID))
	if err := r.client.getJSON(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
