package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/ui/keys"
	"github.com/kanwork/kanwork/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

type workspaceItem struct {
	workspace models.Workspace
}

func (i workspaceItem) Title() string       { return i.workspace.Name }
func (i workspaceItem) Description() string { return string(i.workspace.Role) }
func (i workspaceItem) FilterValue() string { return i.workspace.Name }

type workspaceDelegate struct {
	styles *styles.Styles
	width  int
}

func (d workspaceDelegate) Height() int                               { return 2 }
func (d workspaceDelegate) Spacing() int                              { return 1 }
func (d workspaceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d workspaceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ws, ok := item.(workspaceItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, roleStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		roleStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		roleStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(ws.Title()), roleStyle.Render(ws.Description()))
}

// WorkspaceListView lets the user pick or create a workspace.
type WorkspaceListView struct {
	deps     Deps
	list     list.Model
	delegate *workspaceDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	gen      int
	loaded   bool
	loadErr  string

	creating bool
	saving   bool
	newName  textinput.Model
	focusIdx int // 0=name, 1=confirm

	// auto-open the remembered workspace once, on first load
	autoEnter bool
}

type workspacesLoadedMsg struct {
	gen        int
	workspaces []models.Workspace
	active     int64
	err        error
}

type workspaceCreatedMsg struct {
	workspace *models.Workspace
	err       error
}

// NewWorkspaceListView creates the workspace picker. autoEnter opens the
// session's remembered workspace immediately after the first load.
func NewWorkspaceListView(deps Deps, autoEnter bool) *WorkspaceListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Workspace name"
	newName.CharLimit = 100

	delegate := &workspaceDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Workspaces"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &WorkspaceListView{
		deps:      deps,
		list:      l,
		delegate:  delegate,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		newName:   newName,
		autoEnter: autoEnter,
	}
}

func (v *WorkspaceListView) Init() tea.Cmd {
	return v.load()
}

func (v *WorkspaceListView) load() tea.Cmd {
	gen := v.gen
	deps := v.deps
	return func() tea.Msg {
		ctx := context.Background()
		if deps.Session.User() == nil {
			me, err := cache.Fetch(ctx, deps.Cache, cache.MeKey(), deps.API.Me)
			if err != nil {
				return workspacesLoadedMsg{gen: gen, err: err}
			}
			deps.Session.SetUser(me)
		}
		workspaces, err := cache.Fetch(ctx, deps.Cache, cache.WorkspacesKey(), deps.API.ListWorkspaces)
		if err != nil {
			return workspacesLoadedMsg{gen: gen, err: err}
		}
		active := deps.Session.AdoptWorkspaces(workspaces)
		return workspacesLoadedMsg{gen: gen, workspaces: workspaces, active: active}
	}
}

func (v *WorkspaceListView) reload() tea.Cmd {
	v.gen++
	return v.load()
}

func (v *WorkspaceListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case Invalidated:
		if msg.Prefix.Matches(cache.WorkspacesKey()) {
			return v, v.reload()
		}
		return v, nil

	case workspacesLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.loaded = true
			v.loadErr = msg.err.Error()
			return v, toastErrCmd(msg.err, "could not load workspaces")
		}
		v.loadErr = ""
		items := make([]list.Item, len(msg.workspaces))
		selected := 0
		for i, ws := range msg.workspaces {
			items[i] = workspaceItem{workspace: ws}
			if ws.ID == msg.active {
				selected = i
			}
		}
		v.list.SetItems(items)
		v.list.Select(selected)
		v.loaded = true
		if v.autoEnter && msg.active > 0 {
			v.autoEnter = false
			for _, ws := range msg.workspaces {
				if ws.ID == msg.active {
					return v, selectWorkspaceCmd(ws)
				}
			}
		}
		v.autoEnter = false
		return v, nil

	case workspaceCreatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not create workspace")
		}
		v.creating = false
		v.deps.Session.SetActiveWorkspace(msg.workspace.ID)
		return v, tea.Batch(v.reload(), selectWorkspaceCmd(*msg.workspace))

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Refresh):
			v.deps.Cache.Invalidate(cache.WorkspacesPrefix())
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(workspaceItem); ok {
				v.deps.Session.SetActiveWorkspace(item.workspace.ID)
				return v, selectWorkspaceCmd(item.workspace)
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func selectWorkspaceCmd(ws models.Workspace) tea.Cmd {
	return func() tea.Msg {
		return SelectedWorkspace{Workspace: ws}
	}
}

func (v *WorkspaceListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.save()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 2
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 0 {
			v.focusIdx = 1
			v.updateFocus()
			return v, nil
		}
		return v, v.save()
	}

	var cmd tea.Cmd
	if v.focusIdx == 0 {
		v.newName, cmd = v.newName.Update(msg)
	}
	return v, cmd
}

func (v *WorkspaceListView) save() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		return nil
	}
	v.saving = true
	deps := v.deps
	return func() tea.Msg {
		ws, err := deps.Mutator.CreateWorkspace(context.Background(), name)
		return workspaceCreatedMsg{workspace: ws, err: err}
	}
}

func (v *WorkspaceListView) updateFocus() {
	v.newName.Blur()
	if v.focusIdx == 0 {
		v.newName.Focus()
	}
}

func (v *WorkspaceListView) View() string {
	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if v.loadErr != "" && len(v.list.Items()) == 0 {
		return styles.CenterView(
			v.styles.ToastError.Render(v.loadErr)+"\n\n"+
				v.styles.TitleMuted.Render("Press 'r' to retry"),
			v.width, v.height,
		)
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *WorkspaceListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Workspaces"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first workspace"),
		"",
		s.ButtonPrimary.Render(" New Workspace "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *WorkspaceListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	btnStyle := s.Button
	if v.focusIdx == 0 {
		nameStyle = s.InputFocused
	} else {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Create "
	if v.saving {
		label = " Saving... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Workspace"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		btnStyle.Render(label),
		"",
		s.TitleMuted.Render("Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *WorkspaceListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s refresh • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
