package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/ui/styles"
	"github.com/kanwork/kanwork/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewWorkspaces View = iota
	ViewProjects
	ViewBoard
	ViewMembers
	ViewAudit
)

// CacheInvalidatedMsg is sent by the cache's notify hook whenever a
// prefix is marked stale; the app forwards it to the active view so
// on-screen queries refetch.
type CacheInvalidatedMsg struct {
	Prefix cache.Prefix
}

// SessionExpiredMsg is sent by the gateway's unauthorized hook. The app
// tears the session down and exits.
type SessionExpiredMsg struct{}

// toastExpiredMsg clears the status line after a delay.
type toastExpiredMsg struct {
	id int
}

const toastDuration = 4 * time.Second

type App struct {
	deps        views.Deps
	currentView View

	workspaceList *views.WorkspaceListView
	projectList   *views.ProjectListView
	board         *views.BoardView
	members       *views.MembersView
	audit         *views.AuditView

	workspace models.Workspace
	styles    *styles.Styles

	toast    string
	toastErr bool
	toastID  int

	expired bool
	width   int
	height  int
}

// NewApp creates the application shell. The workspace picker opens
// first and auto-enters the remembered workspace when one is set.
func NewApp(deps views.Deps) *App {
	return &App{
		deps:          deps,
		currentView:   ViewWorkspaces,
		workspaceList: views.NewWorkspaceListView(deps, true),
		styles:        styles.NewStyles(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.workspaceList.Init()
}

// resize replays the current window size to a freshly mounted view.
func (a *App) resize() tea.Cmd {
	width, height := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: width, Height: height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// fall through to the active view below

	case SessionExpiredMsg:
		a.deps.Session.Teardown()
		a.expired = true
		return a, tea.Quit

	case CacheInvalidatedMsg:
		return a, a.route(views.Invalidated{Prefix: msg.Prefix})

	case views.Toast:
		a.toast = msg.Text
		a.toastErr = msg.IsError
		a.toastID++
		id := a.toastID
		return a, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		})

	case toastExpiredMsg:
		if msg.id == a.toastID {
			a.toast = ""
		}
		return a, nil

	case views.SelectedWorkspace:
		a.workspace = msg.Workspace
		a.currentView = ViewProjects
		a.projectList = views.NewProjectListView(a.deps, a.workspace)
		return a, tea.Batch(a.projectList.Init(), a.resize())

	case views.BackToWorkspaces:
		a.currentView = ViewWorkspaces
		a.workspaceList = views.NewWorkspaceListView(a.deps, false)
		return a, tea.Batch(a.workspaceList.Init(), a.resize())

	case views.SelectedProject:
		a.currentView = ViewBoard
		a.board = views.NewBoardView(a.deps, msg.Project)
		return a, tea.Batch(a.board.Init(), a.resize())

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.projectList = views.NewProjectListView(a.deps, a.workspace)
		return a, tea.Batch(a.projectList.Init(), a.resize())

	case views.ShowMembers:
		a.currentView = ViewMembers
		a.members = views.NewMembersView(a.deps, a.workspace)
		return a, tea.Batch(a.members.Init(), a.resize())

	case views.ShowAudit:
		a.currentView = ViewAudit
		a.audit = views.NewAuditView(a.deps, a.workspace)
		return a, tea.Batch(a.audit.Init(), a.resize())
	}

	return a, a.route(msg)
}

// route delivers a message to the view currently mounted. Stale views
// never see messages, so their in-flight loads die silently.
func (a *App) route(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case ViewWorkspaces:
		_, cmd = a.workspaceList.Update(msg)
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewMembers:
		_, cmd = a.members.Update(msg)
	case ViewAudit:
		_, cmd = a.audit.Update(msg)
	}
	return cmd
}

func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewProjects:
		body = a.projectList.View()
	case ViewBoard:
		body = a.board.View()
	case ViewMembers:
		body = a.members.View()
	case ViewAudit:
		body = a.audit.View()
	default:
		body = a.workspaceList.View()
	}

	if a.toast != "" {
		style := a.styles.Toast
		if a.toastErr {
			style = a.styles.ToastError
		}
		body += "\n" + style.Render(a.toast)
	}
	return body
}

// Expired reports whether the app quit because the session became
// invalid; main prints a hint in that case.
func (a *App) Expired() bool { return a.expired }
