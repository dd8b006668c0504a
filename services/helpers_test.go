package services

import (
	"context"
	"testing"
	"time"

	"taskboard/models"
	"taskboard/repositories"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustIssueSubject(t *testing.T, s *TokenService, subject string) string {
	t.Helper()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type fixture struct {
	store     *repositories.Store
	projects  *ProjectService
	tasks     *TaskService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	return &fixture{
		store:     store,
		projects:  NewProjectService(store),
		tasks:     NewTaskService(store),
		dashboard: NewDashboardService(store),
	}
}

// user stores an account directly, skipping bcrypt.
func (f *fixture) user(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	u := &models.User{ID: primitive.NewObjectID(), Name: name, Email: name + "@example.com"}
	if err := f.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

func (f *fixture) project(t *testing.T, owner primitive.ObjectID, name string) *models.ProjectView {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), owner, models.ProjectInput{Name: name})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

func (f *fixture) task(t *testing.T, user primitive.ObjectID, project primitive.ObjectID, name string) *models.TaskView {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), user, models.TaskInput{Name: name, ProjectID: project.Hex()})
	if err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return task
}

func (f *fixture) collaborate(t *testing.T, project *models.ProjectView, name string) {
	t.Helper()
	if _, err := f.projects.AddCollaborator(context.Background(), project.ID.Hex(), project.Owner.ID, models.CollaboratorInput{Email: name + "@example.com"}); err != nil {
		t.Fatalf("add collaborator %s: %v", name, err)
	}
}
