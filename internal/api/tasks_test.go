package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kanwork/kanwork/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskFilterValues(t *testing.T) {
	f := TaskFilter{
		ProjectID:  3,
		Status:     models.StatusTodo,
		AssigneeID: 7,
		Tag:        "infra",
		SortBy:     "due_at",
		SortOrder:  "asc",
	}
	v := f.Values()

	assert.Equal(t, "100", v.Get("limit"))
	assert.Equal(t, "3", v.Get("project_id"))
	assert.Equal(t, "todo", v.Get("status"))
	assert.Equal(t, "7", v.Get("assignee_id"))
	assert.Equal(t, "infra", v.Get("tag"))
	assert.Equal(t, "due_at", v.Get("sort_by"))
	assert.Equal(t, "asc", v.Get("sort_order"))
}

func TestTaskFilterOmitsZeroFields(t *testing.T) {
	v := TaskFilter{ProjectID: 3}.Values()

	assert.Equal(t, "3", v.Get("project_id"))
	for _, param := range []string{"status", "assignee_id", "tag", "due_at_from", "due_at_to", "sort_by", "sort_order"} {
		assert.False(t, v.Has(param), "zero field %s must be omitted", param)
	}
}

func TestTaskFilterCanonicalStable(t *testing.T) {
	a := TaskFilter{ProjectID: 3, Status: models.StatusTodo, Tag: "infra"}
	b := TaskFilter{Tag: "infra", Status: models.StatusTodo, ProjectID: 3}
	assert.Equal(t, a.Canonical(), b.Canonical())

	c := TaskFilter{ProjectID: 3, Status: models.StatusDone, Tag: "infra"}
	assert.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestListTasksQuery(t *testing.T) {
	var gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(models.Page[models.Task]{Items: []models.Task{{ID: 1}}, Total: 1})
	}))

	page, err := client.ListTasks(context.Background(), 5, TaskFilter{ProjectID: 3, Status: models.StatusTodo})
	require.NoError(t, err)
	assert.Equal(t, "/workspaces/5/tasks", gotPath)
	assert.Contains(t, gotQuery, "project_id=3")
	assert.Contains(t, gotQuery, "status=todo")
	assert.Contains(t, gotQuery, "limit=100")
	assert.Equal(t, 1, page.Total)
}

func TestUpdateTaskCarriesVersion(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(models.Task{ID: 9, Version: 4})
	}))

	updated, err := client.UpdateTask(context.Background(), 5, 9, 3, map[string]any{"title": "new title"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/workspaces/5/tasks/9", gotPath)
	assert.Equal(t, "new title", gotBody["title"])
	assert.Equal(t, float64(3), gotBody["version"], "every update must carry the read version")
	assert.Equal(t, int64(4), updated.Version)
}

func TestUpdateTaskNullClearsField(t *testing.T) {
	var raw []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		raw, err = json.Marshal(decodeBody(t, r))
		require.NoError(t, err)
		json.NewEncoder(w).Encode(models.Task{ID: 9, Version: 4})
	}))

	_, err := client.UpdateTask(context.Background(), 5, 9, 3, map[string]any{"due_at": nil})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"due_at":null`, "clearing a field sends an explicit null")
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestTransitionTask(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = decodeBody(t, r)
		json.NewEncoder(w).Encode(models.Task{ID: 9, Status: models.StatusInProgress})
	}))

	task, err := client.TransitionTask(context.Background(), 5, 9, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/workspaces/5/tasks/9/status-transitions", gotPath)
	assert.Equal(t, map[string]any{"to_status": "in_progress"}, gotBody)
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestCreateTaskPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody = decodeBody(t, r)
		json.NewEncoder(w).Encode(models.Task{ID: 1, Title: "ship it"})
	}))

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	desc := "before friday"
	_, err := client.CreateTask(context.Background(), 5, 3, TaskCreate{
		Title:       "ship it",
		Description: &desc,
		DueAt:       &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "/workspaces/5/projects/3/tasks", gotPath)
	assert.Equal(t, "ship it", gotBody["title"])
	assert.Equal(t, "before friday", gotBody["description"])
	assert.NotEmpty(t, gotBody["due_at"])
}
