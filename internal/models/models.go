package models

import "time"

// TaskStatus is one of the four board columns a task can occupy.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

// Statuses lists the recognized statuses in board column order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusBlocked, StatusDone}

// Known reports whether s is one of the four recognized statuses.
func (s TaskStatus) Known() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Label returns the display name for a status column.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusBlocked:
		return "Blocked"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Role is a workspace membership role
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the authenticated account identity
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Workspace is the top-level container scoping projects, members and audit history
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceMember is a user's membership in a workspace
type WorkspaceMember struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project groups tasks within a workspace
type Project struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a single unit of work. Version is the optimistic-concurrency
// counter: every update must carry the version the task was read at, and
// the client must adopt the server's returned version afterward.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   int64      `json:"project_id"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	CreatorID   int64      `json:"creator_id"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Comment is a comment on a task
type Comment struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	TaskID      int64     `json:"task_id"`
	AuthorID    int64     `json:"author_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Edited reports whether the comment was changed after creation.
func (c Comment) Edited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt)
}

// TaskTag is a lower-cased tag string attached to a task, unique per task
type TaskTag struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskWatcher marks a user as watching a task; membership is a set
type TaskWatcher struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLog is an immutable record of a change, read-only from the client
type AuditLog struct {
	ID          int64     `json:"id"`
	ActorUserID int64     `json:"actor_user_id"`
	WorkspaceID int64     `json:"workspace_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Action      string    `json:"action"`
	Changes     *string   `json:"changes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Page is a paginated list response. Total counts all matching entities
// on the server, which can exceed len(Items).
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
