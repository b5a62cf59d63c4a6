package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/ui/keys"
	"github.com/kanwork/kanwork/internal/ui/styles"
)

// roles a member can be assigned through the UI. Owner is set by the
// server at workspace creation and never granted here.
var assignableRoles = []models.Role{models.RoleMember, models.RoleAdmin}

// MembersView lists workspace members and manages invitations and roles.
type MembersView struct {
	deps      Deps
	workspace models.Workspace
	styles    *styles.Styles
	keys      keys.KeyMap
	width     int
	height    int
	gen       int
	loaded    bool

	members []models.WorkspaceMember
	cursor  int

	inviting   bool
	saving     bool
	inviteID   textinput.Model
	inviteRole int // index into assignableRoles
	inviteIdx  int // 0=user id, 1=role, 2=confirm

	confirmingRemove bool
	removeTarget     models.WorkspaceMember
}

type membersLoadedMsg struct {
	gen     int
	members []models.WorkspaceMember
	err     error
}

type memberChangedMsg struct {
	note string
	err  error
}

// NewMembersView creates the member management view for a workspace.
func NewMembersView(deps Deps, workspace models.Workspace) *MembersView {
	inviteID := textinput.New()
	inviteID.Placeholder = "User ID"
	inviteID.CharLimit = 20

	return &MembersView{
		deps:      deps,
		workspace: workspace,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		inviteID:  inviteID,
	}
}

func (v *MembersView) Init() tea.Cmd {
	return v.load()
}

func (v *MembersView) load() tea.Cmd {
	gen := v.gen
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
		return membersLoadedMsg{gen: gen, members: members, err: err}
	}
}

func (v *MembersView) reload() tea.Cmd {
	v.gen++
	return v.load()
}

func (v *MembersView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case Invalidated:
		if msg.Prefix.Matches(cache.MembersKey(v.workspace.ID)) {
			return v, v.reload()
		}
		return v, nil

	case membersLoadedMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		if msg.err != nil {
			v.loaded = true
			return v, toastErrCmd(msg.err, "could not load members")
		}
		v.members = msg.members
		v.cursor = clamp(v.cursor, 0, max(len(v.members)-1, 0))
		v.loaded = true
		return v, nil

	case memberChangedMsg:
		v.saving = false
		if msg.err != nil {
			return v, toastErrCmd(msg.err, "could not update members")
		}
		v.inviting = false
		return v, toastCmd(msg.note)

	case tea.KeyMsg:
		if v.confirmingRemove {
			return v.updateConfirmRemove(msg)
		}
		if v.inviting {
			return v.updateInviting(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Refresh):
			v.deps.Cache.Invalidate(cache.MembersPrefix(v.workspace.ID))
			return v, nil
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.members)-1 {
				v.cursor++
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.inviting = true
			v.inviteIdx = 0
			v.inviteRole = 0
			v.inviteID.Reset()
			v.inviteID.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			return v, v.cycleRole()
		case key.Matches(msg, v.keys.Delete):
			if v.cursor < len(v.members) {
				v.confirmingRemove = true
				v.removeTarget = v.members[v.cursor]
			}
			return v, nil
		}
	}
	return v, nil
}

// cycleRole flips the selected member between member and admin. The
// owner's role is fixed.
func (v *MembersView) cycleRole() tea.Cmd {
	if v.saving || v.cursor >= len(v.members) {
		return nil
	}
	m := v.members[v.cursor]
	if m.Role == models.RoleOwner {
		return toastErrCmd(nil, "the owner role cannot be changed")
	}
	next := models.RoleAdmin
	if m.Role == models.RoleAdmin {
		next = models.RoleMember
	}
	v.saving = true
	deps := v.deps
	wsID := v.workspace.ID
	return func() tea.Msg {
		_, err := deps.Mutator.SetMemberRole(context.Background(), wsID, m.UserID, next)
		return memberChangedMsg{note: "Role updated", err: err}
	}
}

func (v *MembersView) updateConfirmRemove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingRemove = false
		deps := v.deps
		wsID := v.workspace.ID
		userID := v.removeTarget.UserID
		return v, func() tea.Msg {
			err := deps.Mutator.RemoveMember(context.Background(), wsID, userID)
			return memberChangedMsg{note: "Member removed", err: err}
		}
	case "n", "N", "esc":
		v.confirmingRemove = false
		return v, nil
	}
	return v, nil
}

func (v *MembersView) updateInviting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.inviting = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.invite()

	case msg.String() == "shift+tab":
		v.inviteIdx = (v.inviteIdx + 2) % 3
		v.updateInviteFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.inviteIdx = (v.inviteIdx + 1) % 3
		v.updateInviteFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.inviteIdx < 2 {
			v.inviteIdx++
			v.updateInviteFocus()
			return v, nil
		}
		return v, v.invite()

	case v.inviteIdx == 1 && (key.Matches(msg, v.keys.Left) || key.Matches(msg, v.keys.Right)):
		v.inviteRole = (v.inviteRole + 1) % len(assignableRoles)
		return v, nil
	}

	var cmd tea.Cmd
	if v.inviteIdx == 0 {
		v.inviteID, cmd = v.inviteID.Update(msg)
	}
	return v, cmd
}

func (v *MembersView) invite() tea.Cmd {
	raw := strings.TrimSpace(v.inviteID.Value())
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return toastErrCmd(nil, "enter the numeric ID of the user to invite")
	}
	role := assignableRoles[v.inviteRole]
	v.saving = true
	deps := v.deps
	wsID := v.workspace.ID
	return func() tea.Msg {
		_, err := deps.Mutator.AddMember(context.Background(), wsID, id, role)
		return memberChangedMsg{note: "Member added", err: err}
	}
}

func (v *MembersView) updateInviteFocus() {
	v.inviteID.Blur()
	if v.inviteIdx == 0 {
		v.inviteID.Focus()
	}
}

func (v *MembersView) View() string {
	if v.confirmingRemove {
		return v.renderConfirmRemove()
	}
	if v.inviting {
		return v.renderInviteForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	return v.renderList()
}

func (v *MembersView) renderList() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	rowWidth := max(contentWidth-8, 30)

	rows := []string{s.Title.Render(v.workspace.Name + " - Members"), ""}
	for i, m := range v.members {
		name := m.Username
		if name == "" {
			name = v.deps.Session.Resolve(m.UserID)
		}
		line := fmt.Sprintf("%-24s %s", name, m.Role)
		style := s.ListItem
		if i == v.cursor {
			style = s.ListSelected
		}
		rows = append(rows, style.Width(rowWidth).Render(line))
	}
	if len(v.members) == 0 {
		rows = append(rows, s.TitleMuted.Render("No members loaded"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *MembersView) renderInviteForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	idStyle := s.Input
	roleStyle := s.Input
	btnStyle := s.Button
	switch v.inviteIdx {
	case 0:
		idStyle = s.InputFocused
	case 1:
		roleStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Invite "
	if v.saving {
		label = " Inviting... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Invite Member"),
		"",
		"User ID:",
		idStyle.Width(inputWidth).Render(v.inviteID.View()),
		"",
		"Role (←/→ to change):",
		roleStyle.Width(inputWidth).Render(string(assignableRoles[v.inviteRole])),
		"",
		btnStyle.Render(label),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: invite • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *MembersView) renderConfirmRemove() string {
	s := v.styles
	name := v.removeTarget.Username
	if name == "" {
		name = v.deps.Session.Resolve(v.removeTarget.UserID)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Remove Member?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%s will lose access to this workspace.", name)),
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

func (v *MembersView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s invite • %s role • %s remove • %s refresh • %s back",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
