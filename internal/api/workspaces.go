package api

import (
	"context"
	"fmt"

	"github.com/kanwork/kanwork/internal/models"
)

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListWorkspaces returns the caller's workspaces in server order.
func (c *Client) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	var out []models.Workspace
	if err := c.get(ctx, "/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkspace creates a workspace owned by the caller.
func (c *Client) CreateWorkspace(ctx context.Context, name string) (*models.Workspace, error) {
	var out models.Workspace
	body := map[string]any{"name": name}
	if err := c.post(ctx, "/workspaces", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMembers returns the members of a workspace.
func (c *Client) ListMembers(ctx context.Context, workspaceID int64) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	path := fmt.Sprintf("/workspaces/%d/members", workspaceID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds a user to a workspace with the given role.
func (c *Client) AddMember(ctx context.Context, workspaceID, userID int64, role models.Role) (*models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	path := fmt.Sprintf("/workspaces/%d/members", workspaceID)
	body := map[string]any{"user_id": userID, "role": role}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMemberRole changes a member's role.
func (c *Client) UpdateMemberRole(ctx context.Context, workspaceID, userID int64, role models.Role) (*models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	path := fmt.Sprintf("/workspaces/%d/members/%d", workspaceID, userID)
	body := map[string]any{"role": role}
	if err := c.patch(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a user from a workspace.
func (c *Client) RemoveMember(ctx context.Context, workspaceID, userID int64) error {
	path := fmt.Sprintf("/workspaces/%d/members/%d", workspaceID, userID)
	return c.delete(ctx, path)
}
