package dss

import "context"

// ListConnections returns connection definitions keyed by name.
func (c *Client) ListConnections(ctx context.Context) (map[string]Raw, error) {
	var out map[string]Raw
	if err := c.getJSON(ctx, "/admin/connections/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Connection returns the definition of a connection.
func (c *Client) Connection(ctx context.Context, name string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, "/admin/connections/"+esc(name), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TestConnection runs the DSS connection test and returns its report.
func (c *Client) TestConnection(ctx context.Context, name string) (Raw, error) {
	var out Raw
	if err := c.postJSON(ctx, "/admin/connections/"+esc(name)+"/test", Raw{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]Raw, error) {
	return c.list(ctx, "/admin/users/")
}

// User returns the settings of a user.
func (c *Client) User(ctx context.Context, login string) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, "/admin/users/"+esc(login), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser returns the identity behind the API key.
func (c *Client) CurrentUser(ctx context.Context) (Raw, error) {
	var out Raw
	if err := c.getJSON(ctx, "/current-user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
