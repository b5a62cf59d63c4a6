// Package board derives the four-column Kanban grouping from a fetched
// task page. Filtering happens server-side; the projector only groups
// what it receives.
package board

import (
	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/models"
)

// Filters are the board's server-side filter inputs.
type Filters struct {
	Status     models.TaskStatus
	AssigneeID int64
	Tag        string
}

// Active reports whether any filter is set, which drives the
// "Clear filters" control and the empty-state wording.
func (f Filters) Active() bool {
	return f.Status != "" || f.AssigneeID > 0 || f.Tag != ""
}

// TaskFilter converts the board filters into gateway query parameters.
func (f Filters) TaskFilter(projectID int64) api.TaskFilter {
	return api.TaskFilter{
		ProjectID:  projectID,
		Status:     f.Status,
		AssigneeID: f.AssigneeID,
		Tag:        f.Tag,
	}
}

// Column is one status bucket of the board.
type Column struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// EmptyState distinguishes a board with nothing to create from a board
// whose filters matched nothing; the two produce different messages.
type EmptyState int

const (
	EmptyNone      EmptyState = iota // board has tasks
	EmptyNoTasks                     // no tasks exist and no filters are active
	EmptyNoMatches                   // filters are active and matched nothing
)

// Projection is the derived board state for one fetched page.
type Projection struct {
	Columns    []Column
	Fetched    int  // tasks received in this page
	Total      int  // tasks matching on the server, may exceed Fetched
	HasFilters bool
}

// Project groups the fetched page into the four columns. Every task
// lands in exactly one column; a task with an unrecognized status is
// put under todo rather than dropped, so nothing the server returned
// ever disappears from the board.
func Project(page models.Page[models.Task], filters Filters) Projection {
	buckets := make(map[models.TaskStatus][]models.Task, len(models.Statuses))
	for _, task := range page.Items {
		status := task.Status
		if !status.Known() {
			status = models.StatusTodo
		}
		buckets[status] = append(buckets[status], task)
	}

	columns := make([]Column, len(models.Statuses))
	for i, status := range models.Statuses {
		columns[i] = Column{Status: status, Tasks: buckets[status]}
	}

	return Projection{
		Columns:    columns,
		Fetched:    len(page.Items),
		Total:      page.Total,
		HasFilters: filters.Active(),
	}
}

// Truncated reports whether the server holds more tasks than one page.
// The UI shows "showing first N of total" when set.
func (p Projection) Truncated() bool {
	return p.Total > api.PageLimit
}

// Empty returns which empty state, if any, the board is in.
func (p Projection) Empty() EmptyState {
	if p.Fetched > 0 {
		return EmptyNone
	}
	if p.HasFilters {
		return EmptyNoMatches
	}
	return EmptyNoTasks
}

// Find returns the task with the given id and the index of its column.
func (p Projection) Find(taskID int64) (models.Task, int, bool) {
	for col, column := range p.Columns {
		for _, task := range column.Tasks {
			if task.ID == taskID {
				return task, col, true
			}
		}
	}
	return models.Task{}, 0, false
}
