// Package search finds datasets, recipes, scenarios and users across the
// projects of a DSS instance.
package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
)

// Match is one search hit.
type Match struct {
	ProjectKey string `json:"project_key"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Connection string `json:"connection,omitempty"`
	Path       string `json:"path,omitempty"`
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

func projectKeys(ctx context.Context, c *dss.Client, projectKey string) ([]string, error) {
	if projectKey != "" {
		return []string{projectKey}, nil
	}
	return c.ListProjectKeys(ctx)
}

// eachProject calls fn per project. Projects that fail are skipped, since
// a key rarely has access to every project of an instance.
func eachProject(ctx context.Context, c *dss.Client, projectKey string, fn func(key string) error) error {
	keys, err := projectKeys(ctx, c, projectKey)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(key); err != nil {
			c.Logger().Debug("search skipped project", "project", key, "error", err)
		}
	}
	return nil
}

// FindDatasets returns datasets whose name matches pattern, case-insensitively.
// An empty projectKey searches every project.
func FindDatasets(ctx context.Context, c *dss.Client, pattern, projectKey string) ([]Match, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	out := []Match{}
	err = eachProject(ctx, c, projectKey, func(key string) error {
		items, err := c.ListDatasets(ctx, key)
		if err != nil {
			return err
		}
		for _, d := range items {
			if name := str(d, "name"); re.MatchString(name) {
				out = append(out, Match{ProjectKey: key, Name: name, Type: str(d, "type")})
			}
		}
		return nil
	})
	return out, err
}

// FindRecipes returns recipes whose name matches pattern.
func FindRecipes(ctx context.Context, c *dss.Client, pattern, projectKey string) ([]Match, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	out := []Match{}
	err = eachProject(ctx, c, projectKey, func(key string) error {
		items, err := c.ListRecipes(ctx, key)
		if err != nil {
			return err
		}
		for _, r := range items {
			if name := str(r, "name"); re.MatchString(name) {
				out = append(out, Match{ProjectKey: key, Name: name, Type: str(r, "type")})
			}
		}
		return nil
	})
	return out, err
}

// FindScenarios returns scenarios whose name or id matches pattern.
func FindScenarios(ctx context.Context, c *dss.Client, pattern, projectKey string) ([]Match, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	out := []Match{}
	err = eachProject(ctx, c, projectKey, func(key string) error {
		items, err := c.ListScenarios(ctx, key)
		if err != nil {
			return err
		}
		for _, s := range items {
			name, id := str(s, "name"), str(s, "id")
			if re.MatchString(name) || re.MatchString(id) {
				out = append(out, Match{ProjectKey: key, ID: id, Name: name})
			}
		}
		return nil
	})
	return out, err
}

// FindByConnection returns every dataset stored on the named connection.
func FindByConnection(ctx context.Context, c *dss.Client, connection string) ([]Match, error) {
	out := []Match{}
	err := eachProject(ctx, c, "", func(key string) error {
		items, err := c.ListDatasets(ctx, key)
		if err != nil {
			return err
		}
		for _, d := range items {
			name := str(d, "name")
			settings, err := c.DatasetSettings(ctx, key, name)
			if err != nil {
				return err
			}
			conn, path := location(settings)
			if conn == connection {
				out = append(out, Match{ProjectKey: key, Name: name, Type: str(d, "type"), Connection: conn, Path: path})
			}
		}
		return nil
	})
	return out, err
}

// FindByType returns datasets of the given type, compared case-insensitively.
func FindByType(ctx context.Context, c *dss.Client, datasetType, projectKey string) ([]Match, error) {
	out := []Match{}
	err := eachProject(ctx, c, projectKey, func(key string) error {
		items, err := c.ListDatasets(ctx, key)
		if err != nil {
			return err
		}
		for _, d := range items {
			if !strings.EqualFold(str(d, "type"), datasetType) {
				continue
			}
			name := str(d, "name")
			settings, err := c.DatasetSettings(ctx, key, name)
			if err != nil {
				return err
			}
			conn, path := location(settings)
			out = append(out, Match{ProjectKey: key, Name: name, Type: str(d, "type"), Connection: conn, Path: path})
		}
		return nil
	})
	return out, err
}

// User is a user search hit.
type User struct {
	Login       string `json:"login"`
	DisplayName string `json:"displayName"`
	Groups      []any  `json:"groups"`
	Email       string `json:"email,omitempty"`
}

// FindUsers returns users whose login or display name matches pattern.
func FindUsers(ctx context.Context, c *dss.Client, pattern string) ([]User, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := []User{}
	for _, u := range users {
		login, display := str(u, "login"), str(u, "displayName")
		if !re.MatchString(login) && !re.MatchString(display) {
			continue
		}
		groups, _ := u["groups"].([]any)
		if groups == nil {
			groups = []any{}
		}
		out = append(out, User{Login: login, DisplayName: display, Groups: groups, Email: str(u, "email")})
	}
	return out, nil
}

func str(m dss.Raw, key string) string {
	s, _ := m[key].(string)
	return s
}

func location(settings dss.Raw) (string, string) {
	params, _ := settings["params"].(dss.Raw)
	path := str(params, "path")
	if path == "" {
		path = str(params, "table")
	}
	return str(params, "connection"), path
}
