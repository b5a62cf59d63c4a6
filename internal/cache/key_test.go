package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Key
		equal bool
	}{
		{
			name:  "same resource and scope",
			a:     NewKey(ResourceTasks, 5),
			b:     NewKey(ResourceTasks, 5),
			equal: true,
		},
		{
			name:  "different scope id",
			a:     NewKey(ResourceTasks, 5),
			b:     NewKey(ResourceTasks, 6),
			equal: false,
		},
		{
			name:  "different resource",
			a:     NewKey(ResourceTasks, 5),
			b:     NewKey(ResourceProjects, 5),
			equal: false,
		},
		{
			name:  "scope order matters",
			a:     NewKey(ResourceComments, 5, 9),
			b:     NewKey(ResourceComments, 9, 5),
			equal: false,
		},
		{
			name:  "same filter",
			a:     NewKey(ResourceTasks, 5).WithFilter("status=todo"),
			b:     NewKey(ResourceTasks, 5).WithFilter("status=todo"),
			equal: true,
		},
		{
			name:  "different filter",
			a:     NewKey(ResourceTasks, 5).WithFilter("status=todo"),
			b:     NewKey(ResourceTasks, 5).WithFilter("status=done"),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestKeyEnabled(t *testing.T) {
	assert.True(t, NewKey(ResourceWorkspaces).Enabled())
	assert.True(t, NewKey(ResourceTasks, 5).Enabled())
	assert.False(t, NewKey(ResourceTasks, 0).Enabled())
	assert.False(t, NewKey(ResourceTasks, -1).Enabled())
	assert.False(t, NewKey(ResourceComments, 5, 0).Enabled())
}

func TestPrefixMatches(t *testing.T) {
	tests := []struct {
		name    string
		prefix  Prefix
		key     Key
		matches bool
	}{
		{
			name:    "exact scope",
			prefix:  NewPrefix(ResourceTasks, 5),
			key:     NewKey(ResourceTasks, 5),
			matches: true,
		},
		{
			name:    "ignores filter",
			prefix:  NewPrefix(ResourceTasks, 5),
			key:     NewKey(ResourceTasks, 5).WithFilter("status=todo&tag=infra"),
			matches: true,
		},
		{
			name:    "leading scope prefix",
			prefix:  NewPrefix(ResourceComments, 5),
			key:     NewKey(ResourceComments, 5, 9),
			matches: true,
		},
		{
			name:    "different resource",
			prefix:  NewPrefix(ResourceTasks, 5),
			key:     NewKey(ResourceProjects, 5),
			matches: false,
		},
		{
			name:    "different workspace",
			prefix:  NewPrefix(ResourceTasks, 5),
			key:     NewKey(ResourceTasks, 6),
			matches: false,
		},
		{
			name:    "prefix longer than key scope",
			prefix:  NewPrefix(ResourceTask, 5, 9),
			key:     NewKey(ResourceTask, 5),
			matches: false,
		},
		{
			name:    "empty prefix scope matches all of resource",
			prefix:  NewPrefix(ResourceWorkspaces),
			key:     NewKey(ResourceWorkspaces),
			matches: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.prefix.Matches(tt.key))
		})
	}
}

func TestDomainKeysDistinct(t *testing.T) {
	// task 9's detail slots in workspace 5 are all distinct
	keys := []Key{
		TaskKey(5, 9),
		CommentsKey(5, 9),
		TagsKey(5, 9),
		WatchersKey(5, 9),
		TasksKey(5, ""),
	}
	for i := range keys {
		for j := range keys {
			if i == j {
				continue
			}
			assert.False(t, keys[i].Equal(keys[j]), "%v should differ from %v", keys[i], keys[j])
		}
	}
}
