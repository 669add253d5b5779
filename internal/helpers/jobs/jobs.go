// Package jobs starts DSS builds, scenarios and recipes and waits for them.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

// Build modes for Options.Mode.
const (
	ModeRecursive            = constants.BuildModeRecursive
	ModeNonRecursiveForced   = constants.BuildModeNonRecursiveForced
	ModeRecursiveForced      = constants.BuildModeRecursiveForced
	ModeRecursiveMissingOnly = constants.BuildModeRecursiveMissingOnly
)

// Options tunes a helper call. Zero fields use defaults.
type Options struct {
	// Mode is the build mode for BuildAndWait (default RECURSIVE_BUILD).
	Mode string
	// Timeout bounds the wait.
	Timeout time.Duration
	// PollInterval is the pause between status queries.
	PollInterval time.Duration
}

func merge(opts []Options) Options {
	var out Options
	for _, o := range opts {
		if o.Mode != "" {
			out.Mode = o.Mode
		}
		if o.Timeout != 0 {
			out.Timeout = o.Timeout
		}
		if o.PollInterval != 0 {
			out.PollInterval = o.PollInterval
		}
	}
	return out
}

func waitOptions(kind wait.Kind, o Options) wait.Options {
	return wait.Options{Kind: kind, Timeout: o.Timeout, PollInterval: o.PollInterval}
}

// WaitForJob waits for an already started job or any other job-shaped handle.
func WaitForJob(ctx context.Context, job wait.Handle, opts ...Options) (wait.Result, error) {
	return wait.Wait(ctx, job, waitOptions(wait.KindJob, merge(opts)))
}

// BuildAndWait builds a dataset and waits for the job.
func BuildAndWait(ctx context.Context, c *dss.Client, projectKey, datasetName string, opts ...Options) (wait.Result, error) {
	o := merge(opts)
	mode := o.Mode
	if mode == "" {
		mode = ModeRecursive
	}
	job, err := c.BuildDataset(ctx, projectKey, datasetName, mode)
	if err != nil {
		return wait.Result{}, fmt.Errorf("build %s.%s: %w", projectKey, datasetName, err)
	}
	return wait.Wait(ctx, job, waitOptions(wait.KindJob, o))
}

// RunScenarioAndWait triggers a scenario and waits until its outcome is known.
func RunScenarioAndWait(ctx context.Context, c *dss.Client, projectKey, scenarioID string, opts ...Options) (wait.Result, error) {
	run, err := c.RunScenario(ctx, projectKey, scenarioID, nil)
	if err != nil {
		return wait.Result{}, fmt.Errorf("run scenario %s.%s: %w", projectKey, scenarioID, err)
	}
	return wait.Wait(ctx, run, waitOptions(wait.KindScenario, merge(opts)))
}

// RunRecipeAndWait runs a recipe and waits for the resulting job.
func RunRecipeAndWait(ctx context.Context, c *dss.Client, projectKey, recipeName string, opts ...Options) (wait.Result, error) {
	job, err := c.RunRecipe(ctx, projectKey, recipeName)
	if err != nil {
		return wait.Result{}, fmt.Errorf("run recipe %s.%s: %w", projectKey, recipeName, err)
	}
	return wait.Wait(ctx, job, waitOptions(wait.KindRecipe, merge(opts)))
}

// GetJobLog returns the log of a job.
func GetJobLog(ctx context.Context, c *dss.Client, projectKey, jobID string) (string, error) {
	return c.Job(projectKey, jobID).Log(ctx)
}

// SchemaUpdate reports what ComputeAndApplySchema did.
type SchemaUpdate struct {
	Applied           bool    `json:"applied"`
	Incompatibilities int     `json:"incompatibilities"`
	Details           dss.Raw `json:"details"`
}

// ComputeAndApplySchema propagates a recipe's output schema. Run it after
// creating or changing a recipe, before building its outputs.
func ComputeAndApplySchema(ctx context.Context, c *dss.Client, projectKey, recipeName string) (SchemaUpdate, error) {
	update, err := c.ComputeSchemaUpdate(ctx, projectKey, recipeName)
	if err != nil {
		return SchemaUpdate{}, fmt.Errorf("compute schema update %s.%s: %w", projectKey, recipeName, err)
	}
	res := SchemaUpdate{Details: update}
	if n, ok := update["totalIncompatibilities"].(float64); ok {
		res.Incompatibilities = int(n)
	}
	if res.Incompatibilities == 0 {
		return res, nil
	}
	if err := c.ApplySchemaUpdate(ctx, projectKey, recipeName, update); err != nil {
		return res, fmt.Errorf("apply schema update %s.%s: %w", projectKey, recipeName, err)
	}
	res.Applied = true
	return res, nil
}
