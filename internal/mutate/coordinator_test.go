package mutate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness wires a coordinator against a scripted HTTP handler and
// records requests and cache invalidations.
type harness struct {
	coord *Coordinator
	cache *cache.Store

	mu       sync.Mutex
	requests []string // "METHOD path"
	notified []cache.Prefix
	handler  http.HandlerFunc
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{handler: handler}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.requests = append(h.requests, r.Method+" "+r.URL.Path)
		h.mu.Unlock()
		h.handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(api.Config{BaseURL: srv.URL, Token: func() string { return "tok" }})
	require.NoError(t, err)

	h.cache = cache.New(func(p cache.Prefix) {
		h.mu.Lock()
		h.notified = append(h.notified, p)
		h.mu.Unlock()
	}, nil)
	h.coord = New(client, h.cache, nil)
	return h
}

func (h *harness) requestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

func (h *harness) invalidated(prefix cache.Prefix) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.notified {
		if p.Resource == prefix.Resource && slices.Equal(p.Scope, prefix.Scope) {
			return true
		}
	}
	return false
}

func respond(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(v)
	}
}

func respondErr(status int, detail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"detail": detail})
	}
}

func baseTask() models.Task {
	desc := "old description"
	return models.Task{
		ID:          9,
		Title:       "old title",
		Description: &desc,
		Status:      models.StatusTodo,
		WorkspaceID: 5,
		ProjectID:   3,
		Version:     2,
	}
}

func TestUpdateTaskUnchangedEditSkipsRequest(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusInternalServerError, "must not be called"))

	task := baseTask()
	updated, err := h.coord.UpdateTask(context.Background(), task, TaskEdit{
		Title:       task.Title,
		Description: *task.Description,
		DueDate:     "",
	})
	require.NoError(t, err)
	assert.Equal(t, task, *updated)
	assert.Zero(t, h.requestCount(), "an unchanged edit must not issue a request")
}

func TestUpdateTaskSendsChangedFieldsAndVersion(t *testing.T) {
	var gotBody map[string]any
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(models.Task{ID: 9, Title: "new title", WorkspaceID: 5, Version: 3})(w, r)
	})

	task := baseTask()
	updated, err := h.coord.UpdateTask(context.Background(), task, TaskEdit{
		Title:       "new title",
		Description: *task.Description,
	})
	require.NoError(t, err)

	assert.Equal(t, "new title", gotBody["title"])
	assert.Equal(t, float64(2), gotBody["version"])
	assert.NotContains(t, gotBody, "description", "unchanged fields stay out of the patch")
	assert.Equal(t, int64(3), updated.Version, "caller adopts the server's version")

	// server entity seeded into the single-task slot, lists invalidated
	data, ok := h.cache.Peek(cache.TaskKey(5, 9))
	require.True(t, ok)
	assert.Equal(t, updated, data)
	assert.True(t, h.invalidated(cache.TasksPrefix(5)))
}

func TestUpdateTaskClearsFields(t *testing.T) {
	var gotBody map[string]any
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(models.Task{ID: 9, WorkspaceID: 5, Version: 3})(w, r)
	})

	task := baseTask()
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	task.DueAt = &due

	_, err := h.coord.UpdateTask(context.Background(), task, TaskEdit{
		Title:       task.Title,
		Description: "",
		DueDate:     "",
	})
	require.NoError(t, err)

	desc, present := gotBody["description"]
	require.True(t, present)
	assert.Nil(t, desc, "clearing description sends null")
	dueVal, present := gotBody["due_at"]
	require.True(t, present)
	assert.Nil(t, dueVal, "clearing due date sends null")
}

func TestUpdateTaskConflictLeavesCacheAlone(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusConflict, "version mismatch"))

	task := baseTask()
	_, err := h.coord.UpdateTask(context.Background(), task, TaskEdit{Title: "new title"})
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))

	_, ok := h.cache.Peek(cache.TaskKey(5, 9))
	assert.False(t, ok, "a rejected update must not seed the cache")
	assert.False(t, h.invalidated(cache.TasksPrefix(5)))
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusInternalServerError, "must not be called"))

	task := baseTask()
	updated, err := h.coord.Transition(context.Background(), task, models.StatusTodo)
	require.NoError(t, err)
	assert.Equal(t, task, *updated)
	assert.Zero(t, h.requestCount())
}

func TestTransitionInvalidatesTaskLists(t *testing.T) {
	h := newHarness(t, respond(models.Task{ID: 9, Status: models.StatusInProgress, WorkspaceID: 5}))

	updated, err := h.coord.Transition(context.Background(), baseTask(), models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.True(t, h.invalidated(cache.TasksPrefix(5)))
}

func TestTransitionFailureChangesNothing(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusUnprocessableEntity, "cannot move"))

	_, err := h.coord.Transition(context.Background(), baseTask(), models.StatusDone)
	require.Error(t, err)
	assert.False(t, h.invalidated(cache.TasksPrefix(5)), "a failed move must not touch the cache")
}

func TestDeleteTaskEvictsDetailSlots(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h.cache.Seed(cache.TaskKey(5, 9), "task")
	h.cache.Seed(cache.CommentsKey(5, 9), "comments")
	h.cache.Seed(cache.TagsKey(5, 9), "tags")
	h.cache.Seed(cache.WatchersKey(5, 9), "watchers")

	require.NoError(t, h.coord.DeleteTask(context.Background(), 5, 9))

	for _, key := range []cache.Key{
		cache.TaskKey(5, 9), cache.CommentsKey(5, 9), cache.TagsKey(5, 9), cache.WatchersKey(5, 9),
	} {
		_, ok := h.cache.Peek(key)
		assert.False(t, ok, "detail slot %v must be evicted", key)
	}
	assert.True(t, h.invalidated(cache.TasksPrefix(5)))
}

func TestSetAssigneeNoopWhenUnchanged(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusInternalServerError, "must not be called"))

	task := baseTask()
	id := int64(7)
	task.AssigneeID = &id

	_, err := h.coord.SetAssignee(context.Background(), task, &id)
	require.NoError(t, err)
	assert.Zero(t, h.requestCount())
}

func TestAddTagNormalizesAndRejectsDuplicates(t *testing.T) {
	var gotBody map[string]any
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(models.TaskTag{ID: 1, TaskID: 9, Tag: "infra"})(w, r)
	})

	// duplicate differing only by case is rejected before any request
	existing := []models.TaskTag{{Tag: "infra"}}
	_, err := h.coord.AddTag(context.Background(), 5, 9, "  INFRA ", existing)
	assert.ErrorIs(t, err, ErrDuplicateTag)
	assert.Zero(t, h.requestCount())

	// empty after normalization
	_, err = h.coord.AddTag(context.Background(), 5, 9, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyTag)
	assert.Zero(t, h.requestCount())

	// a new tag is sent lower-cased
	created, err := h.coord.AddTag(context.Background(), 5, 9, " Infra ", nil)
	require.NoError(t, err)
	assert.Equal(t, "infra", gotBody["tag"])
	assert.Equal(t, "infra", created.Tag)
	assert.True(t, h.invalidated(cache.TagsPrefix(5, 9)))
	assert.True(t, h.invalidated(cache.TasksPrefix(5)))
}

func TestWatchInvalidatesWatchers(t *testing.T) {
	h := newHarness(t, respond(models.TaskWatcher{ID: 1, TaskID: 9, UserID: 7}))

	require.NoError(t, h.coord.Watch(context.Background(), 5, 9, 7))
	assert.True(t, h.invalidated(cache.WatchersPrefix(5, 9)))
}

func TestCommentsInvalidateCommentList(t *testing.T) {
	h := newHarness(t, respond(models.Comment{ID: 1, TaskID: 9, Content: "hi"}))

	_, err := h.coord.AddComment(context.Background(), 5, 9, "hi")
	require.NoError(t, err)
	assert.True(t, h.invalidated(cache.CommentsPrefix(5, 9)))
}

func TestUpdateProjectDirtyCheck(t *testing.T) {
	h := newHarness(t, respondErr(http.StatusInternalServerError, "must not be called"))

	desc := "desc"
	project := models.Project{ID: 3, WorkspaceID: 5, Name: "alpha", Description: &desc}

	updated, err := h.coord.UpdateProject(context.Background(), project, "alpha", "desc")
	require.NoError(t, err)
	assert.Equal(t, project, *updated)
	assert.Zero(t, h.requestCount(), "an unchanged project edit must not issue a request")
}

func TestCreateTaskInvalidatesTaskLists(t *testing.T) {
	h := newHarness(t, respond(models.Task{ID: 1, Title: "ship", WorkspaceID: 5, ProjectID: 3}))

	_, err := h.coord.CreateTask(context.Background(), 5, 3, api.TaskCreate{Title: "ship"})
	require.NoError(t, err)
	assert.True(t, h.invalidated(cache.TasksPrefix(5)))
}
