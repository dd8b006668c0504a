package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"taskboard/models"
)

// ErrStatusResync is recorded when an optimistic status change was rejected
// and the task list is being reloaded from the server.
var ErrStatusResync = errors.New("failed to update status, resyncing")

// AssignedToNone matches unassigned tasks in a TaskFilter.
const AssignedToNone = "none"

type TaskFilter struct {
	// Search matches name or description, case-insensitively.
	Search   string
	Priority models.TaskPriority
	// AssignedTo is a user id, or AssignedToNone.
	AssignedTo string
}

func (f TaskFilter) match(t models.TaskView) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	switch f.AssignedTo {
	case "":
	case AssignedToNone:
		if t.AssignedTo != nil {
			return false
		}
	default:
		if t.AssignedTo == nil || t.AssignedTo.ID.Hex() != f.AssignedTo {
			return false
		}
	}
	return true
}

type TaskState struct {
	ProjectID string
	Items     []models.TaskView
	Loading   bool
	Err       error
}

// TaskStore holds the tasks of one project.
type TaskStore struct {
	notifier
	api *APIClient

	mu    sync.RWMutex
	state TaskState
}

func NewTaskStore(api *APIClient) *TaskStore {
	return &TaskStore{api: api}
}

func (s *TaskStore) Snapshot() TaskState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Items = append([]models.TaskView(nil), s.state.Items...)
	return st
}

// Task returns the cached task with the given id.
func (s *TaskStore) Task(id string) (models.TaskView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.Items {
		if t.ID.Hex() == id {
			return t, true
		}
	}
	return models.TaskView{}, false
}

// Fetch loads the tasks of projectID, replacing whatever was cached.
func (s *TaskStore) Fetch(ctx context.Context, projectID string) error {
	s.set(func(st *TaskState) {
		if st.ProjectID != projectID {
			st.Items = nil
		}
		st.ProjectID = projectID
		st.Loading = true
		st.Err = nil
	})
	return s.load(ctx, projectID)
}

// Resync reloads the current project's tasks without clearing the recorded error.
func (s *TaskStore) Resync(ctx context.Context) error {
	projectID := s.Snapshot().ProjectID
	if projectID == "" {
		return nil
	}
	s.set(func(st *TaskState) { st.Loading = true })
	return s.load(ctx, projectID)
}

func (s *TaskStore) load(ctx context.Context, projectID string) error {
	tasks, err := s.api.ListTasks(ctx, projectID)
	if err != nil {
		s.set(func(st *TaskState) {
			st.Loading = false
			st.Err = err
		})
		return err
	}
	s.set(func(st *TaskState) {
		if st.ProjectID == projectID {
			st.Items = tasks
		}
		st.Loading = false
	})
	return nil
}

// Create adds a task; an empty input.ProjectID means the current project.
func (s *TaskStore) Create(ctx context.Context, input models.TaskInput) (*models.TaskView, error) {
	if input.ProjectID == "" {
		input.ProjectID = s.Snapshot().ProjectID
	}
	task, err := s.api.CreateTask(ctx, input)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.set(func(st *TaskState) {
		if st.ProjectID == task.Project.Hex() {
			st.Items = append(st.Items, *task)
		}
		st.Err = nil
	})
	return task, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.TaskView, error) {
	task, err := s.api.UpdateTask(ctx, id, patch)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.replace(*task)
	return task, nil
}

// UpdateStatus moves a task to status immediately, then confirms with the
// server. If the server rejects the change the store records ErrStatusResync
// and reloads the project's tasks.
func (s *TaskStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	found := false
	s.set(func(st *TaskState) {
		for i := range st.Items {
			if st.Items[i].ID.Hex() == id {
				st.Items[i].Status = status
				found = true
			}
		}
	})
	if !found {
		return nil
	}

	task, err := s.api.UpdateTask(ctx, id, models.TaskPatch{Status: models.Some(status)})
	if err != nil {
		s.set(func(st *TaskState) { st.Err = ErrStatusResync })
		if rerr := s.Resync(ctx); rerr != nil {
			s.set(func(st *TaskState) { st.Err = errors.Join(ErrStatusResync, rerr) })
			return errors.Join(err, rerr)
		}
		return err
	}
	s.replace(*task)
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.set(func(st *TaskState) {
		items := make([]models.TaskView, 0, len(st.Items))
		for _, t := range st.Items {
			if t.ID.Hex() != id {
				items = append(items, t)
			}
		}
		st.Items = items
		st.Err = nil
	})
	return nil
}

// Filter returns the cached tasks that match f.
func (s *TaskStore) Filter(f TaskFilter) []models.TaskView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TaskView{}
	for _, t := range s.state.Items {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) replace(task models.TaskView) {
	s.set(func(st *TaskState) {
		for i := range st.Items {
			if st.Items[i].ID == task.ID {
				st.Items[i] = task
			}
		}
		st.Err = nil
	})
}

func (s *TaskStore) fail(err error) {
	s.set(func(st *TaskState) { st.Err = err })
}

func (s *TaskStore) set(mutate func(st *TaskState)) {
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()
	s.notify()
}
