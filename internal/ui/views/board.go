package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/board"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/ui/keys"
	"github.com/kanwork/kanwork/internal/ui/styles"
)

// BoardView renders one project as a four-column Kanban board.
type BoardView struct {
	deps    Deps
	project models.Project
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int
	gen     int
	loaded  bool

	filters    board.Filters
	projection board.Projection

	col int // focused column
	row int // focused row within the column

	moving bool // a status transition is in flight

	// filter form
	filtering      bool
	filterStatus   models.TaskStatus // "" = any
	filterAssignee textinput.Model
	filterTag      textinput.Model
	filterFocus    int // 0=status, 1=assignee, 2=tag, 3=apply

	// new task form
	creating   bool
	saving     bool
	formTitle  textinput.Model
	formDesc   textinput.Model
	formDue    textinput.Model
	formFocus  int // 0=title, 1=desc, 2=due, 3=confirm
	formErrMsg string

	confirmingDelete bool
	deleteTarget     models.Task

	// task detail overlay
	detail *TaskDetailView
}

type boardLoadedMsg struct {
	gen  int
	page models.Page[models.Task]
	err  error
}

type taskMovedMsg struct {
	err error
}

type taskCreatedMsg struct {
	task *models.Task
	err  error
}

type taskDeletedMsg struct {
	err error
}

// closeDetailMsg is emitted by the detail overlay when it should close.
type closeDetailMsg struct{}

// NewBoardView creates the board for a project.
func NewBoardView(deps Deps, project models.Project) *BoardView {
	filterAssignee := textinput.New()
	filterAssignee.Placeholder = "Assignee user ID"
	filterAssignee.CharLimit = 20

	filterTag := textinput.New()
	filterTag.Placeholder = "Tag"
	filterTag.CharLimit = 50

	formTitle := textinput.New()
	formTitle.Placeholder = "Task title"
	formTitle.CharLimit = 200

	formDesc := textinput.New()
	formDesc.Placeholder = "Description (optional)"
	formDesc.CharLimit = 1000

	formDue := textinput.New()
	formDue.Placeholder = "Due date YYYY-MM-DD (optional)"
	formDue.CharLimit = 10

	return &BoardView{
		deps:           deps,
		project:        project,
		styles:         styles.NewStyles(),
		keys:           keys.DefaultKeyMap(),
		filterAssignee: filterAssignee,
		filterTag:      filterTag,
		formTitle:      formTitle,
		formDesc:       formDesc,
		formDue:        formDue,
	}
}

func (v *BoardView) Init() tea.Cmd {
	return v.load()
}

func (v *BoardView) tasksKey() cache.Key {
	return cache.TasksKey(v.project.WorkspaceID, v.filters.TaskFilter(v.project.ID).Canonical())
}

func (v *BoardView) load() tea.Cmd {
	gen := v.gen
	deps := v.deps
	tasksKey := v.tasksKey()
	filter := v.filters.TaskFilter(v.project.ID)
	wsID := v.project.WorkspaceID
	return func() tea.Msg {
		page, err := cache.Fetch(context.Background(), deps.Cache, tasksKey,
			func(ctx context.Context) (models.Page[models.Task], error) {
				return deps.API.ListTasks(ctx, wsID, filter)
			})
		return boardLoadedMsg{gen: gen, page: page, err: err}
	}
}

func (v *BoardView) reload() tea.Cmd {
	v.gen++
	return v.load()
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		if v.detail != nil {
			v.detail.SetSize(msg.Width, msg.Height)
		}
		return v, nil

	case Invalidated:
		var cmds []tea.Cmd
		if msg.Prefix.Matches(v.tasksKey()) {
			cmds = append(cmds, v.reload())
		}
		if v.detail != nil {
			cmds = append(cmds, v.detail.Invalidated(msg))
		}
		return v, tea.Batch(cmds...)

	case boardLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.loaded = true
			return v, toastErrCmd(msg.err, "could not load tasks")
		}
		v.projection = board.Project(msg.page, v.filters)
		v.loaded = true
		v.clampCursor()
		return v, nil

	case taskMovedMsg:
		v.moving = false
		if msg.err != nil {
			if api.IsConflict(msg.err) {
				v.deps.Cache.Invalidate(cache.TasksPrefix(v.project.WorkspaceID))
				return v, toastErrCmd(msg.err, "task changed on the server, board refreshed")
			}
			return v, toastErrCmd(msg.err, "could not move task")
		}
		return v, nil

	case taskCreatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not create task")
		}
		v.creating = false
		return v, toastCmd("Task created")

	case taskDeletedMsg:
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not delete task")
		}
		return v, toastCmd("Task deleted")

	case closeDetailMsg:
		v.detail = nil
		return v, nil
	}

	// the detail overlay owns all input while open
	if v.detail != nil {
		cmd := v.detail.Update(msg)
		return v, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return v.updateKeys(msg)
	}
	return v, nil
}

func (v *BoardView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.confirmingDelete {
		return v.updateConfirmDelete(msg)
	}
	if v.filtering {
		return v.updateFiltering(msg)
	}
	if v.creating {
		return v.updateCreating(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Refresh):
		v.deps.Cache.Invalidate(cache.TasksPrefix(v.project.WorkspaceID))
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.col > 0 {
			v.col--
			v.clampCursor()
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.col < len(v.projection.Columns)-1 {
			v.col++
			v.clampCursor()
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.row > 0 {
			v.row--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.row < v.columnLen(v.col)-1 {
			v.row++
		}
		return v, nil

	case key.Matches(msg, v.keys.MoveLeft):
		return v, v.move(-1)

	case key.Matches(msg, v.keys.MoveRight):
		return v, v.move(+1)

	case key.Matches(msg, v.keys.Filter):
		v.openFilterForm()
		return v, textinput.Blink

	case msg.String() == "c":
		if v.filters.Active() {
			v.filters = board.Filters{}
			return v, v.reload()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.formFocus = 0
		v.formErrMsg = ""
		v.formTitle.Reset()
		v.formDesc.Reset()
		v.formDue.Reset()
		v.updateFormFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selectedTask(); ok {
			v.detail = NewTaskDetailView(v.deps, task)
			v.detail.SetSize(v.width, v.height)
			return v, v.detail.Init()
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selectedTask(); ok {
			v.confirmingDelete = true
			v.deleteTarget = task
		}
		return v, nil
	}

	return v, nil
}

func (v *BoardView) columnLen(col int) int {
	if col < 0 || col >= len(v.projection.Columns) {
		return 0
	}
	return len(v.projection.Columns[col].Tasks)
}

func (v *BoardView) clampCursor() {
	if len(v.projection.Columns) == 0 {
		v.col, v.row = 0, 0
		return
	}
	v.col = clamp(v.col, 0, len(v.projection.Columns)-1)
	v.row = clamp(v.row, 0, max(v.columnLen(v.col)-1, 0))
}

func (v *BoardView) selectedTask() (models.Task, bool) {
	if v.col >= len(v.projection.Columns) {
		return models.Task{}, false
	}
	tasks := v.projection.Columns[v.col].Tasks
	if v.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.row], true
}

// move transitions the selected task one column left or right. The board
// stays put until the server confirms; a failed move changes nothing.
func (v *BoardView) move(delta int) tea.Cmd {
	if v.moving {
		return nil
	}
	task, ok := v.selectedTask()
	if !ok {
		return nil
	}
	target := v.col + delta
	if target < 0 || target >= len(models.Statuses) {
		return nil
	}
	to := models.Statuses[target]
	v.moving = true
	deps := v.deps
	return func() tea.Msg {
		_, err := deps.Mutator.Transition(context.Background(), task, to)
		return taskMovedMsg{err: err}
	}
}

func (v *BoardView) openFilterForm() {
	v.filtering = true
	v.filterFocus = 0
	v.filterStatus = v.filters.Status
	v.filterAssignee.Reset()
	if v.filters.AssigneeID > 0 {
		v.filterAssignee.SetValue(strconv.FormatInt(v.filters.AssigneeID, 10))
	}
	v.filterTag.Reset()
	v.filterTag.SetValue(v.filters.Tag)
	v.updateFilterFocus()
}

func (v *BoardView) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.filtering = false
		return v, nil

	case msg.String() == "shift+tab":
		v.filterFocus = (v.filterFocus + 3) % 4
		v.updateFilterFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.filterFocus = (v.filterFocus + 1) % 4
		v.updateFilterFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.filterFocus < 3 {
			v.filterFocus++
			v.updateFilterFocus()
			return v, nil
		}
		return v, v.applyFilters()

	case msg.String() == "ctrl+s":
		return v, v.applyFilters()

	case v.filterFocus == 0 && (key.Matches(msg, v.keys.Left) || key.Matches(msg, v.keys.Right)):
		v.cycleFilterStatus(msg)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.filterFocus {
	case 1:
		v.filterAssignee, cmd = v.filterAssignee.Update(msg)
	case 2:
		v.filterTag, cmd = v.filterTag.Update(msg)
	}
	return v, cmd
}

// cycleFilterStatus walks "" -> todo -> in_progress -> blocked -> done.
func (v *BoardView) cycleFilterStatus(msg tea.KeyMsg) {
	options := append([]models.TaskStatus{""}, models.Statuses...)
	idx := 0
	for i, s := range options {
		if s == v.filterStatus {
			idx = i
			break
		}
	}
	if key.Matches(msg, v.keys.Right) {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx + len(options) - 1) % len(options)
	}
	v.filterStatus = options[idx]
}

func (v *BoardView) applyFilters() tea.Cmd {
	var assignee int64
	if raw := strings.TrimSpace(v.filterAssignee.Value()); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return toastErrCmd(nil, "assignee must be a user ID")
		}
		assignee = id
	}
	v.filters = board.Filters{
		Status:     v.filterStatus,
		AssigneeID: assignee,
		Tag:        strings.TrimSpace(v.filterTag.Value()),
	}
	v.filtering = false
	return v.reload()
}

func (v *BoardView) updateFilterFocus() {
	v.filterAssignee.Blur()
	v.filterTag.Blur()
	switch v.filterFocus {
	case 1:
		v.filterAssignee.Focus()
	case 2:
		v.filterTag.Focus()
	}
}

func (v *BoardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveTask()

	case msg.String() == "shift+tab":
		v.formFocus = (v.formFocus + 3) % 4
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.formFocus = (v.formFocus + 1) % 4
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.formFocus < 3 {
			v.formFocus++
			v.updateFormFocus()
			return v, nil
		}
		return v, v.saveTask()
	}

	var cmd tea.Cmd
	switch v.formFocus {
	case 0:
		v.formTitle, cmd = v.formTitle.Update(msg)
	case 1:
		v.formDesc, cmd = v.formDesc.Update(msg)
	case 2:
		v.formDue, cmd = v.formDue.Update(msg)
	}
	return v, cmd
}

func (v *BoardView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.formTitle.Value())
	if title == "" {
		v.formErrMsg = "Title is required"
		return nil
	}

	create := api.TaskCreate{Title: title}
	if desc := strings.TrimSpace(v.formDesc.Value()); desc != "" {
		create.Description = &desc
	}
	if raw := strings.TrimSpace(v.formDue.Value()); raw != "" {
		due, err := time.Parse("2006-01-02", raw)
		if err != nil {
			v.formErrMsg = "Due date must be YYYY-MM-DD"
			return nil
		}
		create.DueAt = &due
	}

	v.formErrMsg = ""
	v.saving = true
	deps := v.deps
	wsID := v.project.WorkspaceID
	projectID := v.project.ID
	return func() tea.Msg {
		task, err := deps.Mutator.CreateTask(context.Background(), wsID, projectID, create)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (v *BoardView) updateFormFocus() {
	v.formTitle.Blur()
	v.formDesc.Blur()
	v.formDue.Blur()
	switch v.formFocus {
	case 0:
		v.formTitle.Focus()
	case 1:
		v.formDesc.Focus()
	case 2:
		v.formDue.Focus()
	}
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		deps := v.deps
		wsID := v.project.WorkspaceID
		taskID := v.deleteTarget.ID
		return v, func() tea.Msg {
			err := deps.Mutator.DeleteTask(context.Background(), wsID, taskID)
			return taskDeletedMsg{err: err}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) View() string {
	if v.detail != nil {
		return v.detail.View()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.filtering {
		return v.renderFilterForm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	switch v.projection.Empty() {
	case board.EmptyNoTasks:
		return v.renderEmpty("No Tasks", "Press 'n' to create the first task")
	case board.EmptyNoMatches:
		return v.renderEmpty("No Matches", "No tasks match the active filters. Press 'c' to clear them.")
	}

	return v.renderBoard()
}

func (v *BoardView) renderBoard() string {
	s := v.styles

	header := s.Title.Render(v.project.Name)
	if v.filters.Active() {
		header += "  " + s.TitleMuted.Render(v.filterSummary())
	}
	if v.projection.Truncated() {
		header += "\n" + s.TitleMuted.Render(
			fmt.Sprintf("showing first %d of %d tasks", v.projection.Fetched, v.projection.Total))
	}

	colWidth := max(v.width/len(v.projection.Columns)-2, 20)
	colHeight := max(v.height-8, 5)

	columns := make([]string, 0, len(v.projection.Columns))
	for i, column := range v.projection.Columns {
		columns = append(columns, v.renderColumn(i, column, colWidth, colHeight))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return header + "\n" + body + "\n" + v.renderHelp()
}

func (v *BoardView) renderColumn(index int, column board.Column, width, height int) string {
	s := v.styles

	headerStyle := s.ColumnHeader.Foreground(styles.ColumnColor(index))
	header := headerStyle.Render(fmt.Sprintf("%s (%d)", column.Status.Label(), len(column.Tasks)))

	cards := make([]string, 0, len(column.Tasks)+1)
	cards = append(cards, header)
	for row, task := range column.Tasks {
		cards = append(cards, v.renderCard(task, width-4, index == v.col && row == v.row))
	}

	style := s.Column
	if index == v.col {
		style = s.ColumnFocused
	}
	return style.Width(width).Height(height).Render(strings.Join(cards, "\n"))
}

func (v *BoardView) renderCard(task models.Task, width int, selected bool) string {
	s := v.styles

	style := s.Card
	if selected {
		style = s.CardSelected
	}

	line := task.Title
	var meta []string
	if task.AssigneeID != nil {
		meta = append(meta, v.deps.Session.Resolve(*task.AssigneeID))
	}
	if task.DueAt != nil {
		meta = append(meta, "due "+task.DueAt.Format("Jan 2"))
	}
	if len(meta) > 0 {
		line += "\n" + s.TitleMuted.Render(strings.Join(meta, " • "))
	}
	return style.Width(width).Render(line)
}

func (v *BoardView) filterSummary() string {
	var parts []string
	if v.filters.Status != "" {
		parts = append(parts, "status="+v.filters.Status.Label())
	}
	if v.filters.AssigneeID > 0 {
		parts = append(parts, "assignee="+v.deps.Session.Resolve(v.filters.AssigneeID))
	}
	if v.filters.Tag != "" {
		parts = append(parts, "tag="+v.filters.Tag)
	}
	return "filters: " + strings.Join(parts, ", ")
}

func (v *BoardView) renderEmpty(title, hint string) string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(title),
		"",
		s.TitleMuted.Render(hint),
	)
	return lipgloss.Place(v.width, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (v *BoardView) renderFilterForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	statusLabel := "Any"
	if v.filterStatus != "" {
		statusLabel = v.filterStatus.Label()
	}

	statusStyle := s.Input
	assigneeStyle := s.Input
	tagStyle := s.Input
	btnStyle := s.Button
	switch v.filterFocus {
	case 0:
		statusStyle = s.InputFocused
	case 1:
		assigneeStyle = s.InputFocused
	case 2:
		tagStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Filter Tasks"),
		"",
		"Status (←/→ to change):",
		statusStyle.Width(inputWidth).Render(statusLabel),
		"",
		"Assignee:",
		assigneeStyle.Width(inputWidth).Render(v.filterAssignee.View()),
		"",
		"Tag:",
		tagStyle.Width(inputWidth).Render(v.filterTag.View()),
		"",
		btnStyle.Render(" Apply "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: apply • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	btnStyle := s.Button
	switch v.formFocus {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Create "
	if v.saving {
		label = " Saving... "
	}

	rows := []string{
		s.Title.Render("New Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.formTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.formDesc.View()),
		"",
		"Due date:",
		dueStyle.Width(inputWidth).Render(v.formDue.View()),
		"",
		btnStyle.Render(label),
	}
	if v.formErrMsg != "" {
		rows = append(rows, "", s.ToastError.Render(v.formErrMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed.", v.deleteTarget.Title)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return lipgloss.Place(v.width, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (v *BoardView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s/%s move • %s new • %s filter • %s clear • %s del • %s back",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("["),
			v.styles.HelpKey.Render("]"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("c"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
