package session

import (
	"path/filepath"
	"testing"

	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(t *testing.T) *store.Store {
	t.Helper()
	settings, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { settings.Close() })
	return settings
}

func workspaces(ids ...int64) []models.Workspace {
	out := make([]models.Workspace, len(ids))
	for i, id := range ids {
		out[i] = models.Workspace{ID: id, Name: "ws"}
	}
	return out
}

func TestAdoptWorkspacesSelectsFirstWhenNoneActive(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)

	active := s.AdoptWorkspaces(workspaces(42, 7, 19))
	assert.Equal(t, int64(42), active, "first workspace in server order becomes active")
	assert.Equal(t, int64(42), s.ActiveWorkspace())
}

func TestAdoptWorkspacesKeepsValidSelection(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)
	s.SetActiveWorkspace(7)

	active := s.AdoptWorkspaces(workspaces(42, 7, 19))
	assert.Equal(t, int64(7), active)
}

func TestAdoptWorkspacesReplacesStaleSelection(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)
	s.SetActiveWorkspace(99) // no longer a member

	active := s.AdoptWorkspaces(workspaces(42, 7))
	assert.Equal(t, int64(42), active)
}

func TestAdoptWorkspacesEmptyList(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(0), s.AdoptWorkspaces(nil))
}

func TestWorkspaceSelectionPersists(t *testing.T) {
	settings := newSettings(t)

	s, err := New(settings, nil)
	require.NoError(t, err)
	s.SetActiveWorkspace(7)

	// a fresh session over the same settings store restores the selection
	restored, err := New(settings, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), restored.ActiveWorkspace())
}

func TestTokenPersists(t *testing.T) {
	settings := newSettings(t)

	s, err := New(settings, nil)
	require.NoError(t, err)
	s.SetToken("secret")

	restored, err := New(settings, nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", restored.Token())
}

func TestResolve(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)

	s.SetMembers([]models.WorkspaceMember{
		{UserID: 7, Username: "casey"},
		{UserID: 8}, // no username from the server
	})

	assert.Equal(t, "casey", s.Resolve(7))
	assert.Equal(t, "User #8", s.Resolve(8))
	assert.Equal(t, "User #99", s.Resolve(99), "unknown ids fall back to a placeholder")
}

func TestSwitchingWorkspaceDropsMembers(t *testing.T) {
	s, err := New(newSettings(t), nil)
	require.NoError(t, err)
	s.SetActiveWorkspace(5)
	s.SetMembers([]models.WorkspaceMember{{UserID: 7, Username: "casey"}})

	s.SetActiveWorkspace(6)
	assert.Equal(t, "User #7", s.Resolve(7), "member names do not leak across workspaces")
}

func TestTeardown(t *testing.T) {
	settings := newSettings(t)

	s, err := New(settings, nil)
	require.NoError(t, err)
	s.SetToken("secret")
	s.SetUser(&models.User{ID: 7, Username: "casey"})
	s.SetActiveWorkspace(5)

	s.Teardown()

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Equal(t, int64(5), s.ActiveWorkspace(), "workspace selection survives logout")

	// the persisted token is gone too
	restored, err := New(settings, nil)
	require.NoError(t, err)
	assert.Empty(t, restored.Token())
	assert.Equal(t, int64(5), restored.ActiveWorkspace())
}
