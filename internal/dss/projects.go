package dss

import "context"

// ListProjects returns the summary of every project visible to the key.
func (c *Client) ListProjects(ctx context.Context) ([]Raw, error) {
	var out []Raw
	if err := c.getJSON(ctx, "/projects/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjectKeys returns the key of every visible project.
func (c *Client) ListProjectKeys(ctx context.Context) ([]string, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(projects))
	for _, p := range projects {
		if key := str(p, "projectKey"); key != "" {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ProjectMetadata returns label, description and tags of a project.
func (c *Client) ProjectMetadata(ctx context.Context, projectKey string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, projectPath(projectKey, "metadata"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDatasets returns the dataset summaries of a project.
func (c *Client) ListDatasets(ctx context.Context, projectKey string) ([]Raw, error) {
	return c.list(ctx, projectPath(projectKey, "datasets", ""))
}

// ListRecipes returns the recipe summaries of a project.
func (c *Client) ListRecipes(ctx context.Context, projectKey string) ([]Raw, error) {
	return c.list(ctx, projectPath(projectKey, "recipes", ""))
}

// ListScenarios returns the scenario summaries of a project.
func (c *Client) ListScenarios(ctx context.Context, projectKey string) ([]Raw, error) {
	return c.list(ctx, projectPath(projectKey, "scenarios", ""))
}

// ListJobs returns the jobs of a project, most recent first.
func (c *Client) ListJobs(ctx context.Context, projectKey string) ([]Raw, error) {
	return c.list(ctx, projectPath(projectKey, "jobs", ""))
}

func (c *Client) list(ctx context.Context, path string) ([]Raw, error) {
	var out []Raw
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
