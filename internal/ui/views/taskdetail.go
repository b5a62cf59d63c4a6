package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/mutate"
	"github.com/kanwork/kanwork/internal/ui/keys"
	"github.com/kanwork/kanwork/internal/ui/styles"
)

type detailMode int

const (
	modeView detailMode = iota
	modeEdit
	modeAssignee
	modeComment
	modeTag
)

// TaskDetailView is the board's task overlay: fields, comments, tags
// and watchers for a single task.
type TaskDetailView struct {
	deps   Deps
	task   models.Task
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
	gen    int

	comments []models.Comment
	tags     []models.TaskTag
	watchers []models.TaskWatcher

	mode   detailMode
	saving bool

	commentCursor int
	tagCursor     int

	// task edit form
	editTitle  textinput.Model
	editDesc   textinput.Model
	editDue    textinput.Model
	editFocus  int // 0=title, 1=desc, 2=due, 3=confirm
	editErrMsg string

	// assignee form
	assigneeInput textinput.Model

	// comment form; editComment is nil when adding
	commentInput textinput.Model
	editComment  *models.Comment

	// tag form
	tagInput textinput.Model
}

type taskLoadedMsg struct {
	gen  int
	task *models.Task
	err  error
}

type commentsLoadedMsg struct {
	gen      int
	comments []models.Comment
	err      error
}

type tagsLoadedMsg struct {
	gen  int
	tags []models.TaskTag
	err  error
}

type watchersLoadedMsg struct {
	gen      int
	watchers []models.TaskWatcher
	err      error
}

type taskSavedMsg struct {
	task *models.Task
	err  error
}

type commentSavedMsg struct {
	err error
}

type commentDeletedMsg struct {
	err error
}

type tagAddedMsg struct {
	err error
}

type tagRemovedMsg struct {
	err error
}

type watchToggledMsg struct {
	watching bool
	err      error
}

// NewTaskDetailView creates the overlay for a task already on the board.
func NewTaskDetailView(deps Deps, task models.Task) *TaskDetailView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textinput.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000

	editDue := textinput.New()
	editDue.Placeholder = "Due date YYYY-MM-DD (empty clears)"
	editDue.CharLimit = 10

	assigneeInput := textinput.New()
	assigneeInput.Placeholder = "User ID (empty unassigns)"
	assigneeInput.CharLimit = 20

	commentInput := textinput.New()
	commentInput.Placeholder = "Comment"
	commentInput.CharLimit = 2000

	tagInput := textinput.New()
	tagInput.Placeholder = "Tag"
	tagInput.CharLimit = 50

	return &TaskDetailView{
		deps:          deps,
		task:          task,
		styles:        styles.NewStyles(),
		keys:          keys.DefaultKeyMap(),
		editTitle:     editTitle,
		editDesc:      editDesc,
		editDue:       editDue,
		assigneeInput: assigneeInput,
		commentInput:  commentInput,
		tagInput:      tagInput,
	}
}

func (v *TaskDetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *TaskDetailView) Init() tea.Cmd {
	return tea.Batch(v.loadTask(), v.loadComments(), v.loadTags(), v.loadWatchers())
}

func (v *TaskDetailView) loadTask() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID, taskID := v.task.WorkspaceID, v.task.ID
	return func() tea.Msg {
		task, err := cache.Fetch(context.Background(), deps.Cache, cache.TaskKey(wsID, taskID),
			func(ctx context.Context) (*models.Task, error) {
				return deps.API.GetTask(ctx, wsID, taskID)
			})
		return taskLoadedMsg{gen: gen, task: task, err: err}
	}
}

func (v *TaskDetailView) loadComments() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID, taskID := v.task.WorkspaceID, v.task.ID
	return func() tea.Msg {
		comments, err := cache.Fetch(context.Background(), deps.Cache, cache.CommentsKey(wsID, taskID),
			func(ctx context.Context) ([]models.Comment, error) {
				return deps.API.ListComments(ctx, wsID, taskID)
			})
		return commentsLoadedMsg{gen: gen, comments: comments, err: err}
	}
}

func (v *TaskDetailView) loadTags() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID, taskID := v.task.WorkspaceID, v.task.ID
	return func() tea.Msg {
		tags, err := cache.Fetch(context.Background(), deps.Cache, cache.TagsKey(wsID, taskID),
			func(ctx context.Context) ([]models.TaskTag, error) {
				return deps.API.ListTags(ctx, wsID, taskID)
			})
		return tagsLoadedMsg{gen: gen, tags: tags, err: err}
	}
}

func (v *TaskDetailView) loadWatchers() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID, taskID := v.task.WorkspaceID, v.task.ID
	return func() tea.Msg {
		watchers, err := cache.Fetch(context.Background(), deps.Cache, cache.WatchersKey(wsID, taskID),
			func(ctx context.Context) ([]models.TaskWatcher, error) {
				return deps.API.ListWatchers(ctx, wsID, taskID)
			})
		return watchersLoadedMsg{gen: gen, watchers: watchers, err: err}
	}
}

// Invalidated refetches the pieces of the overlay a cache invalidation
// touched.
func (v *TaskDetailView) Invalidated(msg Invalidated) tea.Cmd {
	wsID, taskID := v.task.WorkspaceID, v.task.ID
	v.gen++
	var cmds []tea.Cmd
	if msg.Prefix.Matches(cache.TaskKey(wsID, taskID)) {
		cmds = append(cmds, v.loadTask())
	}
	if msg.Prefix.Matches(cache.CommentsKey(wsID, taskID)) {
		cmds = append(cmds, v.loadComments())
	}
	if msg.Prefix.Matches(cache.TagsKey(wsID, taskID)) {
		cmds = append(cmds, v.loadTags())
	}
	if msg.Prefix.Matches(cache.WatchersKey(wsID, taskID)) {
		cmds = append(cmds, v.loadWatchers())
	}
	return tea.Batch(cmds...)
}

func closeDetail() tea.Msg { return closeDetailMsg{} }

func (v *TaskDetailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case taskLoadedMsg:
		if msg.gen != v.gen {
			return nil
		}
		if msg.err != nil {
			// the task was deleted under us; close rather than show a ghost
			if api.IsNotFound(msg.err) {
				return tea.Batch(closeDetail, toastErrCmd(msg.err, "task no longer exists"))
			}
			return toastErrCmd(msg.err, "could not load task")
		}
		v.task = *msg.task
		return nil

	case commentsLoadedMsg:
		if msg.gen != v.gen {
			return nil
		}
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not load comments")
		}
		v.comments = msg.comments
		v.commentCursor = clamp(v.commentCursor, 0, max(len(v.comments)-1, 0))
		return nil

	case tagsLoadedMsg:
		if msg.gen != v.gen {
			return nil
		}
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not load tags")
		}
		v.tags = msg.tags
		v.tagCursor = clamp(v.tagCursor, 0, max(len(v.tags)-1, 0))
		return nil

	case watchersLoadedMsg:
		if msg.gen != v.gen {
			return nil
		}
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not load watchers")
		}
		v.watchers = msg.watchers
		return nil

	case taskSavedMsg:
		v.saving = false
		if msg.err != nil {
			if api.IsConflict(msg.err) {
				v.deps.Cache.Invalidate(cache.TaskPrefix(v.task.WorkspaceID, v.task.ID))
				return toastErrCmd(msg.err, "task changed on the server, reloaded")
			}
			if api.IsNotFound(msg.err) {
				return tea.Batch(closeDetail, toastErrCmd(msg.err, "task no longer exists"))
			}
			return toastErrCmd(msg.err, "could not save task")
		}
		v.task = *msg.task
		v.mode = modeView
		return toastCmd("Task saved")

	case commentSavedMsg:
		v.saving = false
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not save comment")
		}
		v.mode = modeView
		v.editComment = nil
		return nil

	case commentDeletedMsg:
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not delete comment")
		}
		return nil

	case tagAddedMsg:
		v.saving = false
		if msg.err != nil {
			if errors.Is(msg.err, mutate.ErrDuplicateTag) {
				return toastErrCmd(msg.err, "tag already present")
			}
			return toastErrCmd(msg.err, "could not add tag")
		}
		v.mode = modeView
		return nil

	case tagRemovedMsg:
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not remove tag")
		}
		return nil

	case watchToggledMsg:
		if msg.err != nil {
			return toastErrCmd(msg.err, "could not update watch state")
		}
		if msg.watching {
			return toastCmd("Watching task")
		}
		return toastCmd("Stopped watching")

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}
	return nil
}

func (v *TaskDetailView) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case modeEdit:
		return v.updateEdit(msg)
	case modeAssignee:
		return v.updateAssignee(msg)
	case modeComment:
		return v.updateComment(msg)
	case modeTag:
		return v.updateTag(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		return closeDetail

	case key.Matches(msg, v.keys.Refresh):
		v.deps.Cache.Invalidate(cache.TaskPrefix(v.task.WorkspaceID, v.task.ID))
		return nil

	case key.Matches(msg, v.keys.Up):
		if v.commentCursor > 0 {
			v.commentCursor--
		}
		return nil

	case key.Matches(msg, v.keys.Down):
		if v.commentCursor < len(v.comments)-1 {
			v.commentCursor++
		}
		return nil

	case key.Matches(msg, v.keys.Left):
		if v.tagCursor > 0 {
			v.tagCursor--
		}
		return nil

	case key.Matches(msg, v.keys.Right):
		if v.tagCursor < len(v.tags)-1 {
			v.tagCursor++
		}
		return nil

	case key.Matches(msg, v.keys.Edit):
		v.openEditForm()
		return textinput.Blink

	case msg.String() == "a":
		v.mode = modeAssignee
		v.assigneeInput.Reset()
		if v.task.AssigneeID != nil {
			v.assigneeInput.SetValue(strconv.FormatInt(*v.task.AssigneeID, 10))
		}
		v.assigneeInput.Focus()
		return textinput.Blink

	case key.Matches(msg, v.keys.New):
		v.mode = modeComment
		v.editComment = nil
		v.commentInput.Reset()
		v.commentInput.Focus()
		return textinput.Blink

	case msg.String() == "E":
		if v.commentCursor < len(v.comments) {
			c := v.comments[v.commentCursor]
			me := v.deps.Session.User()
			if me == nil || c.AuthorID != me.ID {
				return toastErrCmd(nil, "only your own comments can be edited")
			}
			v.mode = modeComment
			v.editComment = &c
			v.commentInput.Reset()
			v.commentInput.SetValue(c.Content)
			v.commentInput.Focus()
			return textinput.Blink
		}
		return nil

	case msg.String() == "D":
		if v.commentCursor < len(v.comments) {
			c := v.comments[v.commentCursor]
			deps := v.deps
			return func() tea.Msg {
				err := deps.Mutator.DeleteComment(context.Background(), c.WorkspaceID, c.TaskID, c.ID)
				return commentDeletedMsg{err: err}
			}
		}
		return nil

	case msg.String() == "t":
		v.mode = modeTag
		v.tagInput.Reset()
		v.tagInput.Focus()
		return textinput.Blink

	case msg.String() == "x":
		if v.tagCursor < len(v.tags) {
			tag := v.tags[v.tagCursor]
			deps := v.deps
			wsID, taskID := v.task.WorkspaceID, v.task.ID
			return func() tea.Msg {
				err := deps.Mutator.RemoveTag(context.Background(), wsID, taskID, tag.Tag)
				return tagRemovedMsg{err: err}
			}
		}
		return nil

	case msg.String() == "w":
		return v.toggleWatch()
	}
	return nil
}

func (v *TaskDetailView) openEditForm() {
	v.mode = modeEdit
	v.editFocus = 0
	v.editErrMsg = ""
	v.editTitle.Reset()
	v.editTitle.SetValue(v.task.Title)
	v.editDesc.Reset()
	if v.task.Description != nil {
		v.editDesc.SetValue(*v.task.Description)
	}
	v.editDue.Reset()
	if v.task.DueAt != nil {
		v.editDue.SetValue(v.task.DueAt.Format("2006-01-02"))
	}
	v.updateEditFocus()
}

func (v *TaskDetailView) updateEdit(msg tea.KeyMsg) tea.Cmd {
	if v.saving {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeView
		return nil

	case msg.String() == "ctrl+s":
		return v.saveEdit()

	case msg.String() == "shift+tab":
		v.editFocus = (v.editFocus + 3) % 4
		v.updateEditFocus()
		return nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocus = (v.editFocus + 1) % 4
		v.updateEditFocus()
		return nil

	case key.Matches(msg, v.keys.Enter):
		if v.editFocus < 3 {
			v.editFocus++
			v.updateEditFocus()
			return nil
		}
		return v.saveEdit()
	}

	var cmd tea.Cmd
	switch v.editFocus {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return cmd
}

func (v *TaskDetailView) saveEdit() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editErrMsg = "Title is required"
		return nil
	}
	due := strings.TrimSpace(v.editDue.Value())
	if due != "" {
		if _, err := time.Parse("2006-01-02", due); err != nil {
			v.editErrMsg = "Due date must be YYYY-MM-DD"
			return nil
		}
	}

	edit := mutate.TaskEdit{
		Title:       title,
		Description: strings.TrimSpace(v.editDesc.Value()),
		DueDate:     due,
	}

	v.editErrMsg = ""
	v.saving = true
	deps := v.deps
	task := v.task
	return func() tea.Msg {
		updated, err := deps.Mutator.UpdateTask(context.Background(), task, edit)
		return taskSavedMsg{task: updated, err: err}
	}
}

func (v *TaskDetailView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()
	switch v.editFocus {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editDue.Focus()
	}
}

func (v *TaskDetailView) updateAssignee(msg tea.KeyMsg) tea.Cmd {
	if v.saving {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeView
		return nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		var assignee *int64
		if raw := strings.TrimSpace(v.assigneeInput.Value()); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return toastErrCmd(nil, "assignee must be a user ID")
			}
			assignee = &id
		}
		v.saving = true
		deps := v.deps
		task := v.task
		return func() tea.Msg {
			updated, err := deps.Mutator.SetAssignee(context.Background(), task, assignee)
			return taskSavedMsg{task: updated, err: err}
		}
	}

	var cmd tea.Cmd
	v.assigneeInput, cmd = v.assigneeInput.Update(msg)
	return cmd
}

func (v *TaskDetailView) updateComment(msg tea.KeyMsg) tea.Cmd {
	if v.saving {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeView
		v.editComment = nil
		return nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		content := strings.TrimSpace(v.commentInput.Value())
		if content == "" {
			return nil
		}
		v.saving = true
		deps := v.deps
		wsID, taskID := v.task.WorkspaceID, v.task.ID
		edit := v.editComment
		return func() tea.Msg {
			ctx := context.Background()
			var err error
			if edit != nil {
				_, err = deps.Mutator.EditComment(ctx, wsID, taskID, edit.ID, content)
			} else {
				_, err = deps.Mutator.AddComment(ctx, wsID, taskID, content)
			}
			return commentSavedMsg{err: err}
		}
	}

	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return cmd
}

func (v *TaskDetailView) updateTag(msg tea.KeyMsg) tea.Cmd {
	if v.saving {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeView
		return nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		tag := v.tagInput.Value()
		if strings.TrimSpace(tag) == "" {
			return nil
		}
		v.saving = true
		deps := v.deps
		wsID, taskID := v.task.WorkspaceID, v.task.ID
		existing := v.tags
		return func() tea.Msg {
			_, err := deps.Mutator.AddTag(context.Background(), wsID, taskID, tag, existing)
			return tagAddedMsg{err: err}
		}
	}

	var cmd tea.Cmd
	v.tagInput, cmd = v.tagInput.Update(msg)
	return cmd
}

func (v *TaskDetailView) watching() bool {
	me := v.deps.Session.User()
	if me == nil {
		return false
	}
	for _, w := range v.watchers {
		if w.UserID == me.ID {
			return true
		}
	}
	return false
}

func (v *TaskDetailView) toggleWatch() tea.Cmd {
	me := v.deps.Session.User()
	if me == nil {
		return nil
	}
	deps := v.deps
	wsID, taskID, userID := v.task.WorkspaceID, v.task.ID, me.ID
	if v.watching() {
		return func() tea.Msg {
			err := deps.Mutator.Unwatch(context.Background(), wsID, taskID, userID)
			return watchToggledMsg{watching: false, err: err}
		}
	}
	return func() tea.Msg {
		err := deps.Mutator.Watch(context.Background(), wsID, taskID, userID)
		return watchToggledMsg{watching: true, err: err}
	}
}

func (v *TaskDetailView) View() string {
	switch v.mode {
	case modeEdit:
		return v.renderEditForm()
	case modeAssignee:
		return v.renderInputForm("Assignee", v.assigneeInput)
	case modeComment:
		title := "New Comment"
		if v.editComment != nil {
			title = "Edit Comment"
		}
		return v.renderInputForm(title, v.commentInput)
	case modeTag:
		return v.renderInputForm("Add Tag", v.tagInput)
	}
	return v.renderDetail()
}

func (v *TaskDetailView) renderDetail() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	panelWidth := clamp(contentWidth-4, 40, 100)

	var rows []string
	rows = append(rows, s.Title.Render(v.task.Title))
	rows = append(rows, s.TitleMuted.Render(v.task.Status.Label()))
	rows = append(rows, "")

	if v.task.Description != nil && *v.task.Description != "" {
		rows = append(rows, *v.task.Description, "")
	}

	var meta []string
	if v.task.AssigneeID != nil {
		meta = append(meta, "assignee: "+v.deps.Session.Resolve(*v.task.AssigneeID))
	} else {
		meta = append(meta, "unassigned")
	}
	if v.task.DueAt != nil {
		meta = append(meta, "due "+v.task.DueAt.Format("2006-01-02"))
	}
	meta = append(meta, fmt.Sprintf("%d watching", len(v.watchers)))
	if v.watching() {
		meta = append(meta, "watching")
	}
	rows = append(rows, s.TitleMuted.Render(strings.Join(meta, " • ")))
	rows = append(rows, "")

	rows = append(rows, v.renderTags())
	rows = append(rows, "")
	rows = append(rows, v.renderComments()...)

	panel := s.Panel.Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	content := panel + "\n" + v.renderHelp()

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskDetailView) renderTags() string {
	s := v.styles
	if len(v.tags) == 0 {
		return s.TitleMuted.Render("no tags")
	}
	parts := make([]string, len(v.tags))
	for i, tag := range v.tags {
		style := s.Tag
		if i == v.tagCursor {
			style = s.Tag.Reverse(true)
		}
		parts[i] = style.Render("#" + tag.Tag)
	}
	return strings.Join(parts, " ")
}

func (v *TaskDetailView) renderComments() []string {
	s := v.styles
	rows := []string{s.Title.Render(fmt.Sprintf("Comments (%d)", len(v.comments)))}
	if len(v.comments) == 0 {
		rows = append(rows, s.TitleMuted.Render("No comments yet. Press 'n' to add one."))
		return rows
	}
	for i, c := range v.comments {
		header := fmt.Sprintf("%s • %s", v.deps.Session.Resolve(c.AuthorID), c.CreatedAt.Format("Jan 2 15:04"))
		if c.Edited() {
			header += " (edited)"
		}
		headerStyle := s.TitleMuted
		bodyStyle := s.ListItem
		if i == v.commentCursor {
			bodyStyle = s.ListSelected
		}
		rows = append(rows, headerStyle.Render(header), bodyStyle.Render(c.Content))
	}
	return rows
}

func (v *TaskDetailView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	btnStyle := s.Button
	switch v.editFocus {
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

	label := " Save "
	if v.saving {
		label = " Saving... "
	}

	rows := []string{
		s.Title.Render("Edit Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.editDesc.View()),
		"",
		"Due date:",
		dueStyle.Width(inputWidth).Render(v.editDue.View()),
		"",
		btnStyle.Render(label),
	}
	if v.editErrMsg != "" {
		rows = append(rows, "", s.ToastError.Render(v.editErrMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskDetailView) renderInputForm(title string, input textinput.Model) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		s.InputFocused.Width(inputWidth).Render(input.View()),
		"",
		s.TitleMuted.Render("↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskDetailView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s edit • %s assign • %s comment • %s/%s edit/del comment • %s tag • %s untag • %s watch • %s close",
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("a"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("E"),
			v.styles.HelpKey.Render("D"),
			v.styles.HelpKey.Render("t"),
			v.styles.HelpKey.Render("x"),
			v.styles.HelpKey.Render("w"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
