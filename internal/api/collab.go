package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kanwork/kanwork/internal/models"
)

// ListComments returns a task's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, workspaceID, taskID int64) ([]models.Comment, error) {
	var out []models.Comment
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/comments", workspaceID, taskID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment adds a comment to a task.
func (c *Client) CreateComment(ctx context.Context, workspaceID, taskID int64, content string) (*models.Comment, error) {
	var out models.Comment
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/comments", workspaceID, taskID)
	body := map[string]any{"content": content}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, workspaceID, taskID, commentID int64, content string) (*models.Comment, error) {
	var out models.Comment
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/comments/%d", workspaceID, taskID, commentID)
	body := map[string]any{"content": content}
	if err := c.patch(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, workspaceID, taskID, commentID int64) error {
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/comments/%d", workspaceID, taskID, commentID)
	return c.delete(ctx, path)
}

// ListTags returns a task's tags.
func (c *Client) ListTags(ctx context.Context, workspaceID, taskID int64) ([]models.TaskTag, error) {
	var out []models.TaskTag
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/tags", workspaceID, taskID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTag attaches a tag to a task. The tag is expected to already be
// case-normalized; the server enforces per-task uniqueness.
func (c *Client) AddTag(ctx context.Context, workspaceID, taskID int64, tag string) (*models.TaskTag, error) {
	var out models.TaskTag
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/tags", workspaceID, taskID)
	body := map[string]any{"tag": tag}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes a tag from a task. The tag value is the path segment.
func (c *Client) DeleteTag(ctx context.Context, workspaceID, taskID int64, tag string) error {
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/tags/%s", workspaceID, taskID, url.PathEscape(tag))
	return c.delete(ctx, path)
}

// ListWatchers returns the users watching a task.
func (c *Client) ListWatchers(ctx context.Context, workspaceID, taskID int64) ([]models.TaskWatcher, error) {
	var out []models.TaskWatcher
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/watchers", workspaceID, taskID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWatcher subscribes a user to a task. Adding an existing watcher is
// idempotent in effect: the watcher set is unchanged.
func (c *Client) AddWatcher(ctx context.Context, workspaceID, taskID, userID int64) (*models.TaskWatcher, error) {
	var out models.TaskWatcher
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/watchers", workspaceID, taskID)
	body := map[string]any{"user_id": userID}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWatcher unsubscribes a user from a task.
func (c *Client) DeleteWatcher(ctx context.Context, workspaceID, taskID, userID int64) error {
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/watchers/%d", workspaceID, taskID, userID)
	return c.delete(ctx, path)
}
