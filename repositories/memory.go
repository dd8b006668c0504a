package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// memoryDB is a process-local document store used for tests and for running
// the API without a MongoDB deployment. Writes are serialized; a transaction
// holds the write lock for its whole duration and restores a snapshot when
// its function fails.
type memoryDB struct {
	mu       sync.RWMutex
	writeMu  sync.Mutex
	users    map[primitive.ObjectID]models.User
	projects map[primitive.ObjectID]models.Project
	tasks    map[primitive.ObjectID]models.Task
}

type txKey struct{}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:    make(map[primitive.ObjectID]models.User),
		projects: make(map[primitive.ObjectID]models.Project),
		tasks:    make(map[primitive.ObjectID]models.Task),
	}
	return &Store{
		Users:    &memoryUsers{db},
		Projects: &memoryProjects{db},
		Tasks:    &memoryTasks{db},
		Tx:       db,
	}
}

func (db *memoryDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	snap := db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// write runs fn under the data lock, serialized with running transactions
// unless ctx already belongs to one.
func (db *memoryDB) write(ctx context.Context, fn func() error) error {
	if ctx.Value(txKey{}) == nil {
		db.writeMu.Lock()
		defer db.writeMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

type memorySnapshot struct {
	users    map[primitive.ObjectID]models.User
	projects map[primitive.ObjectID]models.Project
	tasks    map[primitive.ObjectID]models.Task
}

func (db *memoryDB) snapshot() memorySnapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snap := memorySnapshot{
		users:    make(map[primitive.ObjectID]models.User, len(db.users)),
		projects: make(map[primitive.ObjectID]models.Project, len(db.projects)),
		tasks:    make(map[primitive.ObjectID]models.Task, len(db.tasks)),
	}
	for id, u := range db.users {
		snap.users[id] = u
	}
	for id, p := range db.projects {
		snap.projects[id] = cloneProject(p)
	}
	for id, t := range db.tasks {
		snap.tasks[id] = cloneTask(t)
	}
	return snap
}

func (db *memoryDB) restore(snap memorySnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = snap.users
	db.projects = snap.projects
	db.tasks = snap.tasks
}

func cloneProject(p models.Project) models.Project {
	p.Collaborators = append([]primitive.ObjectID{}, p.Collaborators...)
	p.Tasks = append([]primitive.ObjectID{}, p.Tasks...)
	return p
}

func cloneTask(t models.Task) models.Task {
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
	}
	return t
}

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) Create(ctx context.Context, user *models.User) error {
	return r.db.write(ctx, func() error {
		for _, u := range r.db.users {
			if strings.EqualFold(u.Email, user.Email) {
				return ErrDuplicate
			}
		}
		if user.ID.IsZero() {
			user.ID = primitive.NewObjectID()
		}
		r.db.users[user.ID] = *user
		return nil
	})
}

func (r *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

type memoryProjects struct{ db *memoryDB }

func (r *memoryProjects) Create(ctx context.Context, project *models.Project) error {
	return r.db.write(ctx, func() error {
		if project.ID.IsZero() {
			project.ID = primitive.NewObjectID()
		}
		if project.Collaborators == nil {
			project.Collaborators = []primitive.ObjectID{}
		}
		if project.Tasks == nil {
			project.Tasks = []primitive.ObjectID{}
		}
		r.db.projects[project.ID] = cloneProject(*project)
		return nil
	})
}

func (r *memoryProjects) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (r *memoryProjects) ListForMember(_ context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	projects := []models.Project{}
	for _, p := range r.db.projects {
		if p.IsMember(userID) {
			projects = append(projects, cloneProject(p))
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID.Hex() < projects[j].ID.Hex()
	})
	return projects, nil
}

func (r *memoryProjects) UpdateDetails(ctx context.Context, project *models.Project) error {
	return r.update(ctx, project.ID, func(p *models.Project) {
		p.Name = project.Name
		p.Description = project.Description
		p.UpdatedAt = project.UpdatedAt
	})
}

func (r *memoryProjects) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.projects[id]; !ok {
			return ErrNotFound
		}
		delete(r.db.projects, id)
		return nil
	})
}

func (r *memoryProjects) AddCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return r.update(ctx, projectID, func(p *models.Project) {
		if !slices.Contains(p.Collaborators, userID) {
			p.Collaborators = append(p.Collaborators, userID)
		}
	})
}

func (r *memoryProjects) RemoveCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return r.update(ctx, projectID, func(p *models.Project) {
		p.Collaborators = slices.DeleteFunc(p.Collaborators, func(id primitive.ObjectID) bool { return id == userID })
	})
}

func (r *memoryProjects) PushTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.update(ctx, projectID, func(p *models.Project) {
		p.Tasks = append(p.Tasks, taskID)
	})
}

func (r *memoryProjects) PullTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.update(ctx, projectID, func(p *models.Project) {
		p.Tasks = slices.DeleteFunc(p.Tasks, func(id primitive.ObjectID) bool { return id == taskID })
	})
}

func (r *memoryProjects) update(ctx context.Context, id primitive.ObjectID, mutate func(p *models.Project)) error {
	return r.db.write(ctx, func() error {
		p, ok := r.db.projects[id]
		if !ok {
			return ErrNotFound
		}
		p = cloneProject(p)
		mutate(&p)
		r.db.projects[id] = p
		return nil
	})
}

type memoryTasks struct{ db *memoryDB }

func (r *memoryTasks) Create(ctx context.Context, task *models.Task) error {
	return r.db.write(ctx, func() error {
		if task.ID.IsZero() {
			task.ID = primitive.NewObjectID()
		}
		r.db.tasks[task.ID] = cloneTask(*task)
		return nil
	})
}

func (r *memoryTasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (r *memoryTasks) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	tasks := []models.Task{}
	for _, t := range r.db.tasks {
		if t.Project == projectID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID.Hex() < tasks[j].ID.Hex()
	})
	return tasks, nil
}

func (r *memoryTasks) Update(ctx context.Context, task *models.Task) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.tasks[task.ID]; !ok {
			return ErrNotFound
		}
		r.db.tasks[task.ID] = cloneTask(*task)
		return nil
	})
}

func (r *memoryTasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.tasks[id]; !ok {
			return ErrNotFound
		}
		delete(r.db.tasks, id)
		return nil
	})
}

func (r *memoryTasks) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	var n int64
	err := r.db.write(ctx, func() error {
		for id, t := range r.db.tasks {
			if t.Project == projectID {
				delete(r.db.tasks, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *memoryTasks) UnassignInProject(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	var n int64
	err := r.db.write(ctx, func() error {
		for id, t := range r.db.tasks {
			if t.Project == projectID && t.AssignedTo != nil && *t.AssignedTo == userID {
				t.AssignedTo = nil
				r.db.tasks[id] = t
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *memoryTasks) CountByStatus(_ context.Context, projectIDs []primitive.ObjectID) (map[models.TaskStatus]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	counts := make(map[models.TaskStatus]int)
	for _, t := range r.db.tasks {
		if slices.Contains(projectIDs, t.Project) {
			counts[t.Status]++
		}
	}
	return counts, nil
}
