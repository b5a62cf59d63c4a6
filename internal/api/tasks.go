package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kanwork/kanwork/internal/models"
)

// PageLimit is the fixed page size used for task list queries.
const PageLimit = 100

// TaskFilter selects and orders tasks server-side. The zero value lists
// everything in the workspace up to the page limit.
type TaskFilter struct {
	ProjectID  int64
	Status     models.TaskStatus
	AssigneeID int64
	Tag        string
	DueFrom    time.Time
	DueTo      time.Time
	SortBy     string
	SortOrder  string
}

// Values encodes the filter as query parameters. Zero-valued fields are
// omitted so the server applies no constraint for them.
func (f TaskFilter) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(PageLimit))
	if f.ProjectID > 0 {
		v.Set("project_id", strconv.FormatInt(f.ProjectID, 10))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.AssigneeID > 0 {
		v.Set("assignee_id", strconv.FormatInt(f.AssigneeID, 10))
	}
	if f.Tag != "" {
		v.Set("tag", f.Tag)
	}
	if !f.DueFrom.IsZero() {
		v.Set("due_at_from", f.DueFrom.Format(time.RFC3339))
	}
	if !f.DueTo.IsZero() {
		v.Set("due_at_to", f.DueTo.Format(time.RFC3339))
	}
	if f.SortBy != "" {
		v.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		v.Set("sort_order", f.SortOrder)
	}
	return v
}

// Canonical returns a stable encoding of the filter for use in cache keys.
// url.Values.Encode sorts by key, so equal filters encode identically.
func (f TaskFilter) Canonical() string {
	return f.Values().Encode()
}

// ListTasks returns one page of tasks matching the filter.
func (c *Client) ListTasks(ctx context.Context, workspaceID int64, filter TaskFilter) (models.Page[models.Task], error) {
	var out models.Page[models.Task]
	path := fmt.Sprintf("/workspaces/%d/tasks", workspaceID)
	if err := c.do(ctx, "GET", path, filter.Values(), nil, &out, nil); err != nil {
		return models.Page[models.Task]{}, err
	}
	return out, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, workspaceID, taskID int64) (*models.Task, error) {
	var out models.Task
	path := fmt.Sprintf("/workspaces/%d/tasks/%d", workspaceID, taskID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskCreate is the payload for creating a task.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
}

// CreateTask creates a task inside a project.
func (c *Client) CreateTask(ctx context.Context, workspaceID, projectID int64, create TaskCreate) (*models.Task, error) {
	var out models.Task
	path := fmt.Sprintf("/workspaces/%d/projects/%d/tasks", workspaceID, projectID)
	if err := c.post(ctx, path, create, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies a partial update carrying the version the task was
// read at. Recognized fields: "title", "description", "due_at",
// "assignee_id" (nil values clear the field). A stale version yields a
// conflict error and the caller must not retry with a guessed version.
func (c *Client) UpdateTask(ctx context.Context, workspaceID, taskID, version int64, fields map[string]any) (*models.Task, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["version"] = version

	var out models.Task
	path := fmt.Sprintf("/workspaces/%d/tasks/%d", workspaceID, taskID)
	if err := c.patch(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransitionTask moves a task to another status column. This is a
// dedicated operation, not a field patch, so drag-and-drop failures can
// be handled on their own path.
func (c *Client) TransitionTask(ctx context.Context, workspaceID, taskID int64, to models.TaskStatus) (*models.Task, error) {
	var out models.Task
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/status-transitions", workspaceID, taskID)
	body := map[string]any{"to_status": to}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, workspaceID, taskID int64) error {
	path := fmt.Sprintf("/workspaces/%d/tasks/%d", workspaceID, taskID)
	return c.delete(ctx, path)
}
