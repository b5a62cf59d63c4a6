package views

import (
	"testing"

	"github.com/kanwork/kanwork/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() models.Project {
	return models.Project{ID: 9, WorkspaceID: 5, Name: "infra"}
}

func taskPage(titles ...string) models.Page[models.Task] {
	page := models.Page[models.Task]{Total: len(titles)}
	for i, title := range titles {
		page.Items = append(page.Items, models.Task{
			ID:          int64(i + 1),
			Title:       title,
			Status:      models.StatusTodo,
			WorkspaceID: 5,
			ProjectID:   9,
			Version:     1,
		})
	}
	return page
}

func todoTitles(v *BoardView) []string {
	var titles []string
	for _, task := range v.projection.Columns[0].Tasks {
		titles = append(titles, task.Title)
	}
	return titles
}

func TestBoardDiscardsStaleLoad(t *testing.T) {
	v := NewBoardView(Deps{}, testProject())

	_, _ = v.Update(boardLoadedMsg{gen: v.gen, page: taskPage("current")})
	require.True(t, v.loaded)
	require.Equal(t, []string{"current"}, todoTitles(v))

	// a reload bumps the generation; a result still in flight for the old
	// one must be dropped
	_ = v.reload()
	_, cmd := v.Update(boardLoadedMsg{gen: v.gen - 1, page: taskPage("old", "older")})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"current"}, todoTitles(v))

	// the reload's own result still lands
	_, _ = v.Update(boardLoadedMsg{gen: v.gen, page: taskPage("fresh")})
	assert.Equal(t, []string{"fresh"}, todoTitles(v))
}

func TestBoardDiscardsStaleLoadError(t *testing.T) {
	v := NewBoardView(Deps{}, testProject())

	_, _ = v.Update(boardLoadedMsg{gen: v.gen, page: taskPage("current")})
	_ = v.reload()

	// an error from the superseded load neither toasts nor marks anything
	_, cmd := v.Update(boardLoadedMsg{gen: v.gen - 1, err: assert.AnError})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"current"}, todoTitles(v))
}
