package cache

import (
	"fmt"
	"slices"
	"strings"
)

// Resource names the kind of server entity a cache slot holds.
type Resource string

const (
	ResourceMe         Resource = "me"
	ResourceWorkspaces Resource = "workspaces"
	ResourceMembers    Resource = "members"
	ResourceProjects   Resource = "projects"
	ResourceProject    Resource = "project"
	ResourceTasks      Resource = "tasks"
	ResourceTask       Resource = "task"
	ResourceComments   Resource = "comments"
	ResourceTags       Resource = "tags"
	ResourceWatchers   Resource = "watchers"
	ResourceAuditLogs  Resource = "audit-logs"
)

// Key addresses one cache slot: a resource type, its ordered scope ids
// (workspace, then task/project where applicable) and a canonical filter
// encoding. Two keys built from the same values are equal regardless of
// how they were constructed.
type Key struct {
	Resource Resource
	Scope    []int64
	Filter   string
}

// NewKey builds a key with no filter component.
func NewKey(resource Resource, scope ...int64) Key {
	return Key{Resource: resource, Scope: scope}
}

// WithFilter returns a copy of the key carrying the canonical filter string.
func (k Key) WithFilter(filter string) Key {
	k.Filter = filter
	return k
}

// Equal reports structural equality: same resource, same scope ids in
// order, same filter values.
func (k Key) Equal(other Key) bool {
	return k.Resource == other.Resource &&
		slices.Equal(k.Scope, other.Scope) &&
		k.Filter == other.Filter
}

// Enabled reports whether the key's scope is complete. A key with a
// zero or negative scope id addresses nothing and must not trigger a
// fetch.
func (k Key) Enabled() bool {
	for _, id := range k.Scope {
		if id <= 0 {
			return false
		}
	}
	return true
}

// id returns the internal map identity for the key.
func (k Key) id() string {
	var b strings.Builder
	b.WriteString(string(k.Resource))
	for _, id := range k.Scope {
		fmt.Fprintf(&b, "/%d", id)
	}
	if k.Filter != "" {
		b.WriteString("?")
		b.WriteString(k.Filter)
	}
	return b.String()
}

// Prefix matches every key of a resource whose leading scope ids equal
// the given ids, ignoring filters. Invalidating Prefix{tasks, [5]} hits
// every task list query for workspace 5, whatever its filter.
type Prefix struct {
	Resource Resource
	Scope    []int64
}

// NewPrefix builds an invalidation prefix.
func NewPrefix(resource Resource, scope ...int64) Prefix {
	return Prefix{Resource: resource, Scope: scope}
}

// Matches reports whether the key falls under the prefix.
func (p Prefix) Matches(k Key) bool {
	if p.Resource != k.Resource {
		return false
	}
	if len(p.Scope) > len(k.Scope) {
		return false
	}
	return slices.Equal(p.Scope, k.Scope[:len(p.Scope)])
}
