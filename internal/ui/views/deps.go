package views

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/mutate"
	"github.com/kanwork/kanwork/internal/session"
)

// Deps are the shared collaborators threaded through every view.
type Deps struct {
	API     *api.Client
	Cache   *cache.Store
	Session *session.Session
	Mutator *mutate.Coordinator
	Logger  *slog.Logger
}

// Toast asks the app shell to show a status line message.
type Toast struct {
	Text    string
	IsError bool
}

// toastCmd emits a success toast.
func toastCmd(text string) tea.Cmd {
	return func() tea.Msg { return Toast{Text: text} }
}

// toastErrCmd emits an error toast with the server's message when one
// is available.
func toastErrCmd(err error, fallback string) tea.Cmd {
	return func() tea.Msg { return Toast{Text: api.Message(err, fallback), IsError: true} }
}

// SelectedWorkspace signals that a workspace was chosen.
type SelectedWorkspace struct {
	Workspace models.Workspace
}

// BackToWorkspaces signals to return to the workspace picker.
type BackToWorkspaces struct{}

// SelectedProject signals that a project board should open.
type SelectedProject struct {
	Project models.Project
}

// BackToProjects signals to return to the project list.
type BackToProjects struct{}

// ShowMembers signals to open the workspace member view.
type ShowMembers struct{}

// ShowAudit signals to open the workspace audit log view.
type ShowAudit struct{}

// Invalidated is forwarded by the app when a cache prefix was marked
// stale; views holding matching queries refetch in the background.
type Invalidated struct {
	Prefix cache.Prefix
}
