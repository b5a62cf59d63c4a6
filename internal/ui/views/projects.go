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

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	if i.project.Description == nil {
		return ""
	}
	return *i.project.Description
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(p.Title()), descStyle.Render(p.Description()))
}

// ProjectListView shows the projects of the active workspace.
type ProjectListView struct {
	deps      Deps
	workspace models.Workspace
	list      list.Model
	delegate  *projectDelegate
	styles    *styles.Styles
	keys      keys.KeyMap
	width     int
	height    int
	gen       int
	loaded    bool

	editing    bool // create or edit form open
	editTarget *models.Project
	saving     bool
	formName   textinput.Model
	formDesc   textinput.Model
	focusIdx   int // 0=name, 1=desc, 2=confirm

	confirmingDelete bool
	deleteTarget     models.Project
}

type projectsLoadedMsg struct {
	gen      int
	projects []models.Project
	err      error
}

type projectSavedMsg struct {
	project *models.Project
	created bool
	err     error
}

type projectDeletedMsg struct {
	err error
}

// NewProjectListView creates the project list for a workspace.
func NewProjectListView(deps Deps, workspace models.Workspace) *ProjectListView {
	s := styles.NewStyles()

	formName := textinput.New()
	formName.Placeholder = "Project name"
	formName.CharLimit = 100

	formDesc := textinput.New()
	formDesc.Placeholder = "Description (optional)"
	formDesc.CharLimit = 500

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = workspace.Name
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		deps:      deps,
		workspace: workspace,
		list:      l,
		delegate:  delegate,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		formName:  formName,
		formDesc:  formDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.loadMembers())
}

func (v *ProjectListView) load() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID := v.workspace.ID
	return func() tea.Msg {
		projects, err := cache.Fetch(context.Background(), deps.Cache, cache.ProjectsKey(wsID),
			func(ctx context.Context) ([]models.Project, error) {
				return deps.API.ListProjects(ctx, wsID)
			})
		return projectsLoadedMsg{gen: gen, projects: projects, err: err}
	}
}

// loadMembers warms the member directory so assignee names resolve on
// the board without a separate visit to the members view.
func (v *ProjectListView) loadMembers() tea.Cmd {
	deps := v.deps
	wsID := v.workspace.ID
	return func() tea.Msg {
		members, err := cache.Fetch(context.Background(), deps.Cache, cache.MembersKey(wsID),
			func(ctx context.Context) ([]models.WorkspaceMember, error) {
				return deps.API.ListMembers(ctx, wsID)
			})
		if err == nil {
			deps.Session.SetMembers(members)
		}
		return nil
	}
}

func (v *ProjectListView) reload() tea.Cmd {
	v.gen++
	return v.load()
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case Invalidated:
		if msg.Prefix.Matches(cache.ProjectsKey(v.workspace.ID)) {
			return v, v.reload()
		}
		return v, nil

	case projectsLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.loaded = true
			return v, toastErrCmd(msg.err, "could not load projects")
		}
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case projectSavedMsg:
		v.saving = false
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not save project")
		}
		v.editing = false
		v.editTarget = nil
		if msg.created {
			return v, tea.Batch(v.reload(), func() tea.Msg {
				return SelectedProject{Project: *msg.project}
			})
		}
		return v, tea.Batch(v.reload(), toastCmd("Project updated"))

	case projectDeletedMsg:
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not delete project")
		}
		return v, tea.Batch(v.reload(), toastCmd("Project deleted"))

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateForm(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToWorkspaces{} }
		case key.Matches(msg, v.keys.Refresh):
			v.deps.Cache.Invalidate(cache.ProjectsPrefix(v.workspace.ID))
			return v, nil
		case key.Matches(msg, v.keys.Members):
			return v, func() tea.Msg { return ShowMembers{} }
		case key.Matches(msg, v.keys.Audit):
			return v, func() tea.Msg { return ShowAudit{} }
		case key.Matches(msg, v.keys.New):
			v.openForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				p := item.project
				v.openForm(&p)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) openForm(target *models.Project) {
	v.editing = true
	v.editTarget = target
	v.focusIdx = 0
	v.formName.Reset()
	v.formDesc.Reset()
	if target != nil {
		v.formName.SetValue(target.Name)
		if target.Description != nil {
			v.formDesc.SetValue(*target.Description)
		}
	}
	v.updateFocus()
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		deps := v.deps
		wsID := v.workspace.ID
		projectID := v.deleteTarget.ID
		return v, func() tea.Msg {
			err := deps.Mutator.DeleteProject(context.Background(), wsID, projectID)
			return projectDeletedMsg{err: err}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editTarget = nil
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.save()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.save()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.formName, cmd = v.formName.Update(msg)
	case 1:
		v.formDesc, cmd = v.formDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) save() tea.Cmd {
	name := strings.TrimSpace(v.formName.Value())
	if name == "" {
		return nil
	}
	desc := strings.TrimSpace(v.formDesc.Value())
	v.saving = true
	deps := v.deps
	wsID := v.workspace.ID
	target := v.editTarget
	return func() tea.Msg {
		ctx := context.Background()
		if target == nil {
			p, err := deps.Mutator.CreateProject(ctx, wsID, name, desc)
			return projectSavedMsg{project: p, created: true, err: err}
		}
		p, err := deps.Mutator.UpdateProject(ctx, *target, name, desc)
		return projectSavedMsg{project: p, err: err}
	}
}

func (v *ProjectListView) updateFocus() {
	v.formName.Blur()
	v.formDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.formName.Focus()
	case 1:
		v.formDesc.Focus()
	}
}

func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	title := "New Project"
	label := " Create "
	if v.editTarget != nil {
		title = "Edit Project"
		label = " Save "
	}
	if v.saving {
		label = " Saving... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.formName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.formDesc.View()),
		"",
		btnStyle.Render(label),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and all of its tasks will be removed.", v.deleteTarget.Name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s members • %s audit • %s back",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("g"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
