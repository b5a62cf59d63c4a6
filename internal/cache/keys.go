package cache

import "strconv"

// Key and prefix constructors for the entities served by the gateway.
// Views and the mutation coordinator must build keys through these so a
// query and the invalidation that should refresh it always agree.

// WorkspacesKey addresses the caller's workspace list.
func WorkspacesKey() Key { return NewKey(ResourceWorkspaces) }

// MeKey addresses the authenticated user.
func MeKey() Key { return NewKey(ResourceMe) }

// MembersKey addresses a workspace's member list.
func MembersKey(workspaceID int64) Key { return NewKey(ResourceMembers, workspaceID) }

// ProjectsKey addresses a workspace's project list.
func ProjectsKey(workspaceID int64) Key { return NewKey(ResourceProjects, workspaceID) }

// ProjectKey addresses a single project.
func ProjectKey(workspaceID, projectID int64) Key {
	return NewKey(ResourceProject, workspaceID, projectID)
}

// TasksKey addresses one filtered task list query in a workspace.
func TasksKey(workspaceID int64, filter string) Key {
	return NewKey(ResourceTasks, workspaceID).WithFilter(filter)
}

// TaskKey addresses a single task.
func TaskKey(workspaceID, taskID int64) Key { return NewKey(ResourceTask, workspaceID, taskID) }

// CommentsKey addresses a task's comment list.
func CommentsKey(workspaceID, taskID int64) Key {
	return NewKey(ResourceComments, workspaceID, taskID)
}

// TagsKey addresses a task's tag list.
func TagsKey(workspaceID, taskID int64) Key { return NewKey(ResourceTags, workspaceID, taskID) }

// WatchersKey addresses a task's watcher list.
func WatchersKey(workspaceID, taskID int64) Key {
	return NewKey(ResourceWatchers, workspaceID, taskID)
}

// AuditLogsKey addresses one page of a workspace's audit trail.
func AuditLogsKey(workspaceID int64, skip, limit int) Key {
	return NewKey(ResourceAuditLogs, workspaceID).
		WithFilter("limit=" + strconv.Itoa(limit) + "&skip=" + strconv.Itoa(skip))
}

// WorkspacesPrefix invalidates the workspace list.
func WorkspacesPrefix() Prefix { return NewPrefix(ResourceWorkspaces) }

// MembersPrefix invalidates a workspace's member list.
func MembersPrefix(workspaceID int64) Prefix { return NewPrefix(ResourceMembers, workspaceID) }

// ProjectsPrefix invalidates a workspace's project list.
func ProjectsPrefix(workspaceID int64) Prefix { return NewPrefix(ResourceProjects, workspaceID) }

// TasksPrefix invalidates every task list query in a workspace.
func TasksPrefix(workspaceID int64) Prefix { return NewPrefix(ResourceTasks, workspaceID) }

// TaskPrefix invalidates a single task's detail slot.
func TaskPrefix(workspaceID, taskID int64) Prefix {
	return NewPrefix(ResourceTask, workspaceID, taskID)
}

// CommentsPrefix invalidates a task's comment list.
func CommentsPrefix(workspaceID, taskID int64) Prefix {
	return NewPrefix(ResourceComments, workspaceID, taskID)
}

// TagsPrefix invalidates a task's tag list.
func TagsPrefix(workspaceID, taskID int64) Prefix {
	return NewPrefix(ResourceTags, workspaceID, taskID)
}

// WatchersPrefix invalidates a task's watcher list.
func WatchersPrefix(workspaceID, taskID int64) Prefix {
	return NewPrefix(ResourceWatchers, workspaceID, taskID)
}
