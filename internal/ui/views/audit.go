package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/kanwork/kanwork/internal/ui/keys"
	"github.com/kanwork/kanwork/internal/ui/styles"
)

// auditPageSize is the number of audit entries fetched per page.
const auditPageSize = 50

// AuditView shows the workspace's paginated audit history, newest first.
type AuditView struct {
	deps      Deps
	workspace models.Workspace
	styles    *styles.Styles
	keys      keys.KeyMap
	width     int
	height    int
	gen       int
	loaded    bool

	skip int
	page models.Page[models.AuditLog]
}

type auditLoadedMsg struct {
	gen  int
	skip int
	page models.Page[models.AuditLog]
	err  error
}

// NewAuditView creates the audit log view for a workspace.
func NewAuditView(deps Deps, workspace models.Workspace) *AuditView {
	return &AuditView{
		deps:      deps,
		workspace: workspace,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
	}
}

func (v *AuditView) Init() tea.Cmd {
	return v.load()
}

func (v *AuditView) load() tea.Cmd {
	gen := v.gen
	deps := v.deps
	wsID := v.workspace.ID
	skip := v.skip
	return func() tea.Msg {
		page, err := cache.Fetch(context.Background(), deps.Cache, cache.AuditLogsKey(wsID, skip, auditPageSize),
			func(ctx context.Context) (models.Page[models.AuditLog], error) {
				return deps.API.ListAuditLogs(ctx, wsID, skip, auditPageSize)
			})
		return auditLoadedMsg{gen: gen, skip: skip, page: page, err: err}
	}
}

func (v *AuditView) reload() tea.Cmd {
	v.gen++
	return v.load()
}

func (v *AuditView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case auditLoadedMsg:
		if msg.gen != v.gen || msg.skip != v.skip {
			return v, nil
		}
		if msg.err != nil {
			v.loaded = true
			return v, toastErrCmd(msg.err, "could not load audit log")
		}
		v.page = msg.page
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Refresh):
			v.deps.Cache.Evict(cache.NewPrefix(cache.ResourceAuditLogs, v.workspace.ID))
			return v, v.reload()
		case key.Matches(msg, v.keys.Right):
			if v.skip+auditPageSize < v.page.Total {
				v.skip += auditPageSize
				return v, v.reload()
			}
			return v, nil
		case key.Matches(msg, v.keys.Left):
			if v.skip > 0 {
				v.skip = max(v.skip-auditPageSize, 0)
				return v, v.reload()
			}
			return v, nil
		}
	}
	return v, nil
}

func (v *AuditView) View() string {
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	return v.renderList()
}

func (v *AuditView) renderList() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	rowWidth := max(contentWidth-8, 40)

	from := v.skip + 1
	to := min(v.skip+len(v.page.Items), v.page.Total)
	header := s.Title.Render(v.workspace.Name + " - Audit Log")
	if v.page.Total > 0 {
		header += "  " + s.TitleMuted.Render(fmt.Sprintf("%d-%d of %d", from, to, v.page.Total))
	}

	rows := []string{header, ""}
	if len(v.page.Items) == 0 {
		rows = append(rows, s.TitleMuted.Render("No audit entries"))
	}
	for _, entry := range v.page.Items {
		line := fmt.Sprintf("%s  %s %s %s #%d",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			v.deps.Session.Resolve(entry.ActorUserID),
			entry.Action,
			entry.EntityType,
			entry.EntityID,
		)
		rows = append(rows, s.ListItem.Width(rowWidth).Render(line))
		if entry.Changes != nil && *entry.Changes != "" {
			rows = append(rows, s.TitleMuted.Width(rowWidth).Render("  "+*entry.Changes))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *AuditView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s/%s page • %s refresh • %s back",
			v.styles.HelpKey.Render("←"),
			v.styles.HelpKey.Render("→"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
