package client

import (
	"context"
	"strings"
	"sync"

	"taskboard/models"
)

type ProjectState struct {
	Items   []models.ProjectView
	Current *models.ProjectView
	Loading bool
	Err     error
}

// ProjectStore caches the signed-in user's projects and the one being viewed.
type ProjectStore struct {
	notifier
	api *APIClient

	mu    sync.RWMutex
	state ProjectState
}

func NewProjectStore(api *APIClient) *ProjectStore {
	return &ProjectStore{api: api}
}

func (s *ProjectStore) Snapshot() ProjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Items = append([]models.ProjectView(nil), s.state.Items...)
	if st.Current != nil {
		p := *st.Current
		st.Current = &p
	}
	return st
}

func (s *ProjectStore) Fetch(ctx context.Context) error {
	s.begin()
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.set(func(st *ProjectState) {
		st.Items = projects
		st.Loading = false
	})
	return nil
}

func (s *ProjectStore) Create(ctx context.Context, name, description string) (*models.ProjectView, error) {
	s.begin()
	project, err := s.api.CreateProject(ctx, models.ProjectInput{Name: name, Description: description})
	if err != nil {
		return nil, s.fail(err)
	}
	s.set(func(st *ProjectState) {
		st.Items = append(st.Items, *project)
		st.Loading = false
	})
	return project, nil
}

// Get loads one project and makes it the current one.
func (s *ProjectStore) Get(ctx context.Context, id string) (*models.ProjectView, error) {
	s.begin()
	project, err := s.api.GetProject(ctx, id)
	if err != nil {
		return nil, s.fail(err)
	}
	s.store(*project)
	return project, nil
}

func (s *ProjectStore) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.ProjectView, error) {
	s.begin()
	project, err := s.api.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, s.fail(err)
	}
	s.store(*project)
	return project, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.api.DeleteProject(ctx, id); err != nil {
		return s.fail(err)
	}
	s.set(func(st *ProjectState) {
		items := st.Items[:0]
		for _, p := range st.Items {
			if p.ID.Hex() != id {
				items = append(items, p)
			}
		}
		st.Items = items
		if st.Current != nil && st.Current.ID.Hex() == id {
			st.Current = nil
		}
		st.Loading = false
	})
	return nil
}

// AddCollaborator invites a user by email and reloads the project.
func (s *ProjectStore) AddCollaborator(ctx context.Context, projectID, email string) (*models.UserSummary, error) {
	s.begin()
	resp, err := s.api.AddCollaborator(ctx, projectID, email)
	if err != nil {
		return nil, s.fail(err)
	}
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *ProjectStore) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	s.begin()
	if err := s.api.RemoveCollaborator(ctx, projectID, userID); err != nil {
		return s.fail(err)
	}
	_, err := s.Get(ctx, projectID)
	return err
}

// Search filters the cached projects by a case-insensitive name match.
func (s *ProjectStore) Search(query string) []models.ProjectView {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ProjectView{}
	for _, p := range s.state.Items {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// store makes project current and replaces or adds it in Items.
func (s *ProjectStore) store(project models.ProjectView) {
	s.set(func(st *ProjectState) {
		current := project
		st.Current = &current
		replaced := false
		for i := range st.Items {
			if st.Items[i].ID == project.ID {
				st.Items[i] = project
				replaced = true
			}
		}
		if !replaced {
			st.Items = append(st.Items, project)
		}
		st.Loading = false
	})
}

func (s *ProjectStore) begin() {
	s.set(func(st *ProjectState) {
		st.Loading = true
		st.Err = nil
	})
}

func (s *ProjectStore) fail(err error) error {
	s.set(func(st *ProjectState) {
		st.Loading = false
		st.Err = err
	})
	return err
}

func (s *ProjectStore) set(mutate func(st *ProjectState)) {
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()
	s.notify()
}
