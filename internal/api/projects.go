package api

import (
	"context"
	"fmt"

	"github.com/kanwork/kanwork/internal/models"
)

// ListProjects returns all projects in a workspace.
func (c *Client) ListProjects(ctx context.Context, workspaceID int64) ([]models.Project, error) {
	var out []models.Project
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, workspaceID, projectID int64) (*models.Project, error) {
	var out models.Project
	path := fmt.Sprintf("/workspaces/%d/projects/%d", workspaceID, projectID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project in a workspace. Description may be empty.
func (c *Client) CreateProject(ctx context.Context, workspaceID int64, name, description string) (*models.Project, error) {
	var out models.Project
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	body := map[string]any{"name": name}
	if description != "" {
		body["description"] = description
	}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies a partial update. Recognized fields: "name" and
// "description" (nil clears the description).
func (c *Client) UpdateProject(ctx context.Context, workspaceID, projectID int64, fields map[string]any) (*models.Project, error) {
	var out models.Project
	path := fmt.Sprintf("/workspaces/%d/projects/%d", workspaceID, projectID)
	if err := c.patch(ctx, path, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, workspaceID, projectID int64) error {
	path := fmt.Sprintf("/workspaces/%d/projects/%d", workspaceID, projectID)
	return c.delete(ctx, path)
}
