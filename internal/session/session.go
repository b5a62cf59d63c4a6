// Package session holds the authenticated identity and the active
// workspace selection. It is an explicit object created at startup and
// torn down at logout, threaded through the cache layer and the
// mutation coordinator rather than living in a global.
package session

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/store"
)

const (
	settingActiveWorkspace = "active_workspace_id"
	settingToken           = "token"
)

// Session is the session/workspace context. Safe for concurrent use;
// gateway calls read the token from command goroutines.
type Session struct {
	mu       sync.RWMutex
	settings *store.Store
	logger   *slog.Logger

	user      *models.User
	token     string
	workspace int64
	members   map[int64]string // user id -> display name
}

// New creates a session, restoring the persisted workspace selection
// and token from the settings store.
func New(settings *store.Store, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		settings: settings,
		logger:   logger,
		members:  make(map[int64]string),
	}

	raw, err := settings.Get(settingActiveWorkspace)
	if err != nil {
		return nil, fmt.Errorf("session: restore workspace: %w", err)
	}
	if raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.workspace = id
		}
	}

	token, err := settings.Get(settingToken)
	if err != nil {
		return nil, fmt.Errorf("session: restore token: %w", err)
	}
	s.token = token

	return s, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the bearer token and persists it.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if err := s.settings.Set(settingToken, token); err != nil {
		s.logger.Warn("persist token failed", "error", err)
	}
}

// User returns the authenticated user, or nil before /auth/me resolves.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser records the authenticated identity.
func (s *Session) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// ActiveWorkspace returns the selected workspace id, 0 when none.
func (s *Session) ActiveWorkspace() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspace
}

// SetActiveWorkspace selects a workspace and persists the selection.
// Member state from the previous workspace is dropped.
func (s *Session) SetActiveWorkspace(id int64) {
	s.mu.Lock()
	if s.workspace != id {
		s.members = make(map[int64]string)
	}
	s.workspace = id
	s.mu.Unlock()
	if err := s.settings.Set(settingActiveWorkspace, strconv.FormatInt(id, 10)); err != nil {
		s.logger.Warn("persist workspace failed", "error", err)
	}
}

// AdoptWorkspaces reconciles the selection with a fetched workspace
// list: if nothing is selected yet, the first workspace in server order
// becomes active. A stale selection pointing at a workspace the caller
// no longer belongs to is replaced the same way. Returns the active id.
func (s *Session) AdoptWorkspaces(workspaces []models.Workspace) int64 {
	current := s.ActiveWorkspace()
	if current != 0 {
		for _, ws := range workspaces {
			if ws.ID == current {
				return current
			}
		}
	}
	if len(workspaces) == 0 {
		return current
	}
	first := workspaces[0].ID
	s.SetActiveWorkspace(first)
	return first
}

// SetMembers rebuilds the display-name lookup from a fetched member list.
func (s *Session) SetMembers(members []models.WorkspaceMember) {
	lookup := make(map[int64]string, len(members))
	for _, m := range members {
		if m.Username != "" {
			lookup[m.UserID] = m.Username
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = lookup
}

// Resolve returns the display name for a user id. Unknown ids (users
// who left the workspace, or a membership that has not loaded yet) fall
// back to "User #<id>".
func (s *Session) Resolve(userID int64) string {
	s.mu.RLock()
	name, ok := s.members[userID]
	s.mu.RUnlock()
	if ok {
		return name
	}
	return fmt.Sprintf("User #%d", userID)
}

// Teardown clears the in-memory identity and the persisted token.
// The workspace selection is kept so a fresh login lands where the
// user left off.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.members = make(map[int64]string)
	s.mu.Unlock()
	if err := s.settings.Delete(settingToken); err != nil {
		s.logger.Warn("clear token failed", "error", err)
	}
}
