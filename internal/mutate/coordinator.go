// Package mutate coordinates writes: each operation goes through the
// gateway, then reconciles the cache, either by seeding the returned
// entity into its slot or by invalidating the containing list so
// mounted consumers refetch. There is no optimistic commit: the board
// renders from authoritative cached state, so a rejected mutation
// leaves the UI where the server says it is.
package mutate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
)

// ErrDuplicateTag is returned when a tag already exists on the task.
// The rejection happens client-side, before any network call.
var ErrDuplicateTag = errors.New("tag already exists")

// ErrEmptyTag is returned when the normalized tag is empty.
var ErrEmptyTag = errors.New("tag is empty")

// Coordinator executes mutations and reconciles the cache afterwards.
type Coordinator struct {
	api    *api.Client
	cache  *cache.Store
	logger *slog.Logger
}

// New creates a coordinator.
func New(client *api.Client, store *cache.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{api: client, cache: store, logger: logger}
}

// CreateWorkspace creates a workspace and invalidates the workspace list.
func (c *Coordinator) CreateWorkspace(ctx context.Context, name string) (*models.Workspace, error) {
	ws, err := c.api.CreateWorkspace(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.WorkspacesPrefix())
	return ws, nil
}

// CreateProject creates a project and invalidates the project list.
func (c *Coordinator) CreateProject(ctx context.Context, workspaceID int64, name, description string) (*models.Project, error) {
	project, err := c.api.CreateProject(ctx, workspaceID, name, description)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.ProjectsPrefix(workspaceID))
	return project, nil
}

// UpdateProject applies a name/description edit. Unchanged edits issue
// no request. The response seeds the single-project slot; the list is
// invalidated.
func (c *Coordinator) UpdateProject(ctx context.Context, project models.Project, name, description string) (*models.Project, error) {
	fields := make(map[string]any)
	if name != project.Name {
		fields["name"] = name
	}
	currentDesc := ""
	if project.Description != nil {
		currentDesc = *project.Description
	}
	if description != currentDesc {
		if description == "" {
			fields["description"] = nil
		} else {
			fields["description"] = description
		}
	}
	if len(fields) == 0 {
		return &project, nil
	}

	updated, err := c.api.UpdateProject(ctx, project.WorkspaceID, project.ID, fields)
	if err != nil {
		return nil, err
	}
	c.cache.Seed(cache.ProjectKey(project.WorkspaceID, project.ID), updated)
	c.cache.Invalidate(cache.ProjectsPrefix(project.WorkspaceID))
	return updated, nil
}

// DeleteProject deletes a project and invalidates the project list.
func (c *Coordinator) DeleteProject(ctx context.Context, workspaceID, projectID int64) error {
	if err := c.api.DeleteProject(ctx, workspaceID, projectID); err != nil {
		return err
	}
	c.cache.Evict(cache.NewPrefix(cache.ResourceProject, workspaceID, projectID))
	c.cache.Invalidate(cache.ProjectsPrefix(workspaceID))
	return nil
}

// CreateTask creates a task and invalidates the workspace's task lists.
// The new entity's position is the server's business; the refetch
// places it.
func (c *Coordinator) CreateTask(ctx context.Context, workspaceID, projectID int64, create api.TaskCreate) (*models.Task, error) {
	task, err := c.api.CreateTask(ctx, workspaceID, projectID, create)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.TasksPrefix(workspaceID))
	return task, nil
}

// TaskEdit carries the field values from an edit form. DueDate uses the
// date-only form "2006-01-02", empty when unset.
type TaskEdit struct {
	Title       string
	Description string
	DueDate     string
}

// dueDate formats a task's due timestamp as the form's date-only value.
func dueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// UpdateTask saves a field edit. Only fields that changed relative to
// the last-known server value are sent; an unchanged edit issues no
// request. The request carries the version the task was read at; on
// success the returned entity seeds the single-task slot and the task
// lists are invalidated. On conflict the cached version is left alone.
func (c *Coordinator) UpdateTask(ctx context.Context, task models.Task, edit TaskEdit) (*models.Task, error) {
	fields := make(map[string]any)

	if edit.Title != task.Title {
		fields["title"] = edit.Title
	}

	currentDesc := ""
	if task.Description != nil {
		currentDesc = *task.Description
	}
	if edit.Description != currentDesc {
		if edit.Description == "" {
			fields["description"] = nil
		} else {
			fields["description"] = edit.Description
		}
	}

	if edit.DueDate != dueDate(task.DueAt) {
		if edit.DueDate == "" {
			fields["due_at"] = nil
		} else {
			due, err := time.Parse("2006-01-02", edit.DueDate)
			if err != nil {
				return nil, err
			}
			fields["due_at"] = due.UTC().Format(time.RFC3339)
		}
	}

	if len(fields) == 0 {
		return &task, nil
	}

	updated, err := c.api.UpdateTask(ctx, task.WorkspaceID, task.ID, task.Version, fields)
	if err != nil {
		return nil, err
	}
	c.cache.Seed(cache.TaskKey(task.WorkspaceID, task.ID), updated)
	c.cache.Invalidate(cache.TasksPrefix(task.WorkspaceID))
	return updated, nil
}

// SetAssignee assigns or unassigns (nil) a task. A no-op change issues
// no request.
func (c *Coordinator) SetAssignee(ctx context.Context, task models.Task, assigneeID *int64) (*models.Task, error) {
	same := (assigneeID == nil && task.AssigneeID == nil) ||
		(assigneeID != nil && task.AssigneeID != nil && *assigneeID == *task.AssigneeID)
	if same {
		return &task, nil
	}

	fields := map[string]any{"assignee_id": nil}
	if assigneeID != nil {
		fields["assignee_id"] = *assigneeID
	}
	updated, err := c.api.UpdateTask(ctx, task.WorkspaceID, task.ID, task.Version, fields)
	if err != nil {
		return nil, err
	}
	c.cache.Seed(cache.TaskKey(task.WorkspaceID, task.ID), updated)
	c.cache.Invalidate(cache.TasksPrefix(task.WorkspaceID))
	return updated, nil
}

// Transition moves a task to another column. On success the workspace's
// task lists are invalidated; on failure nothing in the cache changes,
// so the board re-renders the task in its original column.
func (c *Coordinator) Transition(ctx context.Context, task models.Task, to models.TaskStatus) (*models.Task, error) {
	if task.Status == to {
		return &task, nil
	}
	updated, err := c.api.TransitionTask(ctx, task.WorkspaceID, task.ID, to)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.TasksPrefix(task.WorkspaceID))
	return updated, nil
}

// DeleteTask deletes a task, drops its detail slots and invalidates the
// task lists. Any open detail view for the task must close.
func (c *Coordinator) DeleteTask(ctx context.Context, workspaceID, taskID int64) error {
	if err := c.api.DeleteTask(ctx, workspaceID, taskID); err != nil {
		return err
	}
	c.cache.Evict(cache.TaskPrefix(workspaceID, taskID))
	c.cache.Evict(cache.CommentsPrefix(workspaceID, taskID))
	c.cache.Evict(cache.TagsPrefix(workspaceID, taskID))
	c.cache.Evict(cache.WatchersPrefix(workspaceID, taskID))
	c.cache.Invalidate(cache.TasksPrefix(workspaceID))
	return nil
}

// AddComment posts a comment and invalidates the task's comment list.
func (c *Coordinator) AddComment(ctx context.Context, workspaceID, taskID int64, content string) (*models.Comment, error) {
	comment, err := c.api.CreateComment(ctx, workspaceID, taskID, content)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.CommentsPrefix(workspaceID, taskID))
	return comment, nil
}

// EditComment updates a comment's content and invalidates the comment list.
func (c *Coordinator) EditComment(ctx context.Context, workspaceID, taskID, commentID int64, content string) (*models.Comment, error) {
	comment, err := c.api.UpdateComment(ctx, workspaceID, taskID, commentID, content)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.CommentsPrefix(workspaceID, taskID))
	return comment, nil
}

// DeleteComment removes a comment and invalidates the comment list.
func (c *Coordinator) DeleteComment(ctx context.Context, workspaceID, taskID, commentID int64) error {
	if err := c.api.DeleteComment(ctx, workspaceID, taskID, commentID); err != nil {
		return err
	}
	c.cache.Invalidate(cache.CommentsPrefix(workspaceID, taskID))
	return nil
}

// NormalizeTag lower-cases and trims a tag for comparison and storage.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// AddTag attaches a tag to a task. The input is case-normalized first;
// a tag already present on the task is rejected before any network
// call. On success the tag list and the task lists are invalidated.
func (c *Coordinator) AddTag(ctx context.Context, workspaceID, taskID int64, tag string, existing []models.TaskTag) (*models.TaskTag, error) {
	normalized := NormalizeTag(tag)
	if normalized == "" {
		return nil, ErrEmptyTag
	}
	for _, t := range existing {
		if t.Tag == normalized {
			return nil, ErrDuplicateTag
		}
	}

	created, err := c.api.AddTag(ctx, workspaceID, taskID, normalized)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.TagsPrefix(workspaceID, taskID))
	c.cache.Invalidate(cache.TasksPrefix(workspaceID))
	return created, nil
}

// RemoveTag detaches a tag and invalidates the tag and task lists.
func (c *Coordinator) RemoveTag(ctx context.Context, workspaceID, taskID int64, tag string) error {
	if err := c.api.DeleteTag(ctx, workspaceID, taskID, tag); err != nil {
		return err
	}
	c.cache.Invalidate(cache.TagsPrefix(workspaceID, taskID))
	c.cache.Invalidate(cache.TasksPrefix(workspaceID))
	return nil
}

// Watch subscribes a user to a task and invalidates the watcher list.
// The server treats a repeated add as a no-op on the set.
func (c *Coordinator) Watch(ctx context.Context, workspaceID, taskID, userID int64) error {
	if _, err := c.api.AddWatcher(ctx, workspaceID, taskID, userID); err != nil {
		return err
	}
	c.cache.Invalidate(cache.WatchersPrefix(workspaceID, taskID))
	return nil
}

// Unwatch unsubscribes a user and invalidates the watcher list.
func (c *Coordinator) Unwatch(ctx context.Context, workspaceID, taskID, userID int64) error {
	if err := c.api.DeleteWatcher(ctx, workspaceID, taskID, userID); err != nil {
		return err
	}
	c.cache.Invalidate(cache.WatchersPrefix(workspaceID, taskID))
	return nil
}

// AddMember adds a user to the workspace and invalidates the member list.
func (c *Coordinator) AddMember(ctx context.Context, workspaceID, userID int64, role models.Role) (*models.WorkspaceMember, error) {
	member, err := c.api.AddMember(ctx, workspaceID, userID, role)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.MembersPrefix(workspaceID))
	return member, nil
}

// SetMemberRole changes a member's role and invalidates the member list.
func (c *Coordinator) SetMemberRole(ctx context.Context, workspaceID, userID int64, role models.Role) (*models.WorkspaceMember, error) {
	member, err := c.api.UpdateMemberRole(ctx, workspaceID, userID, role)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cache.MembersPrefix(workspaceID))
	return member, nil
}

// RemoveMember removes a member and invalidates the member list.
func (c *Coordinator) RemoveMember(ctx context.Context, workspaceID, userID int64) error {
	if err := c.api.RemoveMember(ctx, workspaceID, userID); err != nil {
		return err
	}
	c.cache.Invalidate(cache.MembersPrefix(workspaceID))
	return nil
}
