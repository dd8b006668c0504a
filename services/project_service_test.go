package services

import (
	"context"
	"errors"
	"testing"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateProjectTrimsAndStartsEmpty(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	p, err := f.projects.CreateProject(context.Background(), owner, models.ProjectInput{Name: "  Launch  ", Description: " q3 "})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Name != "Launch" || p.Description != "q3" {
		t.Errorf("project = %q/%q, want trimmed", p.Name, p.Description)
	}
	if p.Owner.ID != owner || p.Owner.Name != "owner" {
		t.Errorf("owner = %+v, want resolved owner", p.Owner)
	}
	if len(p.Collaborators) != 0 || len(p.Tasks) != 0 {
		t.Errorf("new project should have no collaborators or tasks: %+v", p)
	}

	if _, err := f.projects.CreateProject(context.Background(), owner, models.ProjectInput{Name: "   "}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v, want ErrValidation", err)
	}
}

func TestProjectAccessGating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	collab := f.user(t, "collab")
	stranger := f.user(t, "stranger")
	p := f.project(t, owner, "P")
	f.collaborate(t, p, "collab")
	id := p.ID.Hex()
	kept := f.task(t, owner, p.ID, "kept").ID.Hex()
	doomed := f.task(t, owner, p.ID, "doomed").ID.Hex()

	tests := []struct {
		name    string
		user    primitive.ObjectID
		op      func(user primitive.ObjectID) error
		wantErr error
	}{
		{"owner reads", owner, func(u primitive.ObjectID) error { _, err := f.projects.GetProject(ctx, id, u); return err }, nil},
		{"collaborator reads", collab, func(u primitive.ObjectID) error { _, err := f.projects.GetProject(ctx, id, u); return err }, nil},
		{"stranger reads", stranger, func(u primitive.ObjectID) error { _, err := f.projects.GetProject(ctx, id, u); return err }, ErrForbidden},
		{"collaborator updates", collab, func(u primitive.ObjectID) error {
			_, err := f.projects.UpdateProject(ctx, id, u, models.ProjectPatch{Name: models.Some("x")})
			return err
		}, ErrForbidden},
		{"collaborator deletes", collab, func(u primitive.ObjectID) error { return f.projects.DeleteProject(ctx, id, u) }, ErrForbidden},
		{"collaborator invites", collab, func(u primitive.ObjectID) error {
			_, err := f.projects.AddCollaborator(ctx, id, u, models.CollaboratorInput{Email: "stranger@example.com"})
			return err
		}, ErrForbidden},
		{"stranger creates task", stranger, func(u primitive.ObjectID) error {
			_, err := f.tasks.CreateTask(ctx, u, models.TaskInput{Name: "t", ProjectID: id})
			return err
		}, ErrForbidden},
		{"collaborator creates task", collab, func(u primitive.ObjectID) error {
			_, err := f.tasks.CreateTask(ctx, u, models.TaskInput{Name: "t", ProjectID: id})
			return err
		}, nil},
		{"owner reads task", owner, func(u primitive.ObjectID) error { _, err := f.tasks.GetTask(ctx, kept, u); return err }, nil},
		{"collaborator reads task", collab, func(u primitive.ObjectID) error { _, err := f.tasks.GetTask(ctx, kept, u); return err }, nil},
		{"stranger reads task", stranger, func(u primitive.ObjectID) error { _, err := f.tasks.GetTask(ctx, kept, u); return err }, ErrForbidden},
		{"stranger lists tasks", stranger, func(u primitive.ObjectID) error { _, err := f.tasks.ListTasks(ctx, id, u); return err }, ErrForbidden},
		{"stranger updates task", stranger, func(u primitive.ObjectID) error {
			_, err := f.tasks.UpdateTask(ctx, kept, u, models.TaskPatch{Name: models.Some("x")})
			return err
		}, ErrForbidden},
		{"stranger deletes task", stranger, func(u primitive.ObjectID) error { return f.tasks.DeleteTask(ctx, doomed, u) }, ErrForbidden},
		{"collaborator deletes task", collab, func(u primitive.ObjectID) error { return f.tasks.DeleteTask(ctx, doomed, u) }, nil},
		{"stranger removes collaborator", stranger, func(u primitive.ObjectID) error {
			return f.projects.RemoveCollaborator(ctx, id, u, collab.Hex())
		}, ErrForbidden},
		{"collaborator removes collaborator", collab, func(u primitive.ObjectID) error {
			return f.projects.RemoveCollaborator(ctx, id, u, collab.Hex())
		}, ErrForbidden},
		{"owner removes non-collaborator", owner, func(u primitive.ObjectID) error {
			return f.projects.RemoveCollaborator(ctx, id, u, stranger.Hex())
		}, nil},
		{"malformed id", owner, func(u primitive.ObjectID) error { _, err := f.projects.GetProject(ctx, "xyz", u); return err }, ErrNotFound},
		{"unknown id", owner, func(u primitive.ObjectID) error {
			_, err := f.projects.GetProject(ctx, primitive.NewObjectID().Hex(), u)
			return err
		}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(tt.user)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListProjectsOwnedAndShared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	f.project(t, a, "mine")
	shared := f.project(t, b, "shared")
	f.project(t, b, "private")
	f.collaborate(t, shared, "a")

	list, err := f.projects.ListProjects(ctx, a)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	names := map[string]bool{}
	for _, p := range list {
		names[p.Name] = true
	}
	if len(list) != 2 || !names["mine"] || !names["shared"] {
		t.Errorf("projects = %v, want mine and shared", names)
	}
}

func TestUpdateProjectPatchSemantics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	p, _ := f.projects.CreateProject(ctx, owner, models.ProjectInput{Name: "Old", Description: "desc"})

	got, err := f.projects.UpdateProject(ctx, p.ID.Hex(), owner, models.ProjectPatch{Name: models.Some(" New ")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got.Name != "New" || got.Description != "desc" {
		t.Errorf("after rename = %q/%q, want New/desc", got.Name, got.Description)
	}

	got, err = f.projects.UpdateProject(ctx, p.ID.Hex(), owner, models.ProjectPatch{Description: models.Some("")})
	if err != nil {
		t.Fatalf("clear description: %v", err)
	}
	if got.Name != "New" || got.Description != "" {
		t.Errorf("after clear = %q/%q, want New/empty", got.Name, got.Description)
	}

	if _, err := f.projects.UpdateProject(ctx, p.ID.Hex(), owner, models.ProjectPatch{Name: models.Some("  ")}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v, want ErrValidation", err)
	}
	if _, err := f.projects.UpdateProject(ctx, p.ID.Hex(), owner, models.ProjectPatch{Name: models.Null[string]()}); !errors.Is(err, ErrValidation) {
		t.Errorf("null name error = %v, want ErrValidation", err)
	}
}

func TestAddCollaboratorErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	f.user(t, "collab")
	p := f.project(t, owner, "P")

	added, err := f.projects.AddCollaborator(ctx, p.ID.Hex(), owner, models.CollaboratorInput{Email: "COLLAB@example.com"})
	if err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}
	if added.Name != "collab" {
		t.Errorf("added = %+v", added)
	}

	tests := []struct {
		email   string
		wantErr error
	}{
		{"owner@example.com", ErrOwnerCannotBeCollaborator},
		{"collab@example.com", ErrAlreadyCollaborator},
		{"ghost@example.com", ErrUserNotFound},
		{"not-an-email", ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			_, err := f.projects.AddCollaborator(ctx, p.ID.Hex(), owner, models.CollaboratorInput{Email: tt.email})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	view, _ := f.projects.GetProject(ctx, p.ID.Hex(), owner)
	if len(view.Collaborators) != 1 {
		t.Errorf("collaborators = %+v, want exactly one", view.Collaborators)
	}
}

func TestRemoveCollaboratorUnassignsTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	collab := f.user(t, "collab")
	p := f.project(t, owner, "P")
	f.collaborate(t, p, "collab")

	task, err := f.tasks.CreateTask(ctx, owner, models.TaskInput{Name: "t", ProjectID: p.ID.Hex(), AssignedTo: collab.Hex()})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := f.projects.RemoveCollaborator(ctx, p.ID.Hex(), owner, collab.Hex()); err != nil {
		t.Fatalf("RemoveCollaborator: %v", err)
	}

	if _, err := f.projects.GetProject(ctx, p.ID.Hex(), collab); !errors.Is(err, ErrForbidden) {
		t.Errorf("removed collaborator read error = %v, want ErrForbidden", err)
	}
	got, _ := f.tasks.GetTask(ctx, task.ID.Hex(), owner)
	if got.AssignedTo != nil {
		t.Errorf("task still assigned to %+v", got.AssignedTo)
	}

	// Removing a non-collaborator is a no-op.
	if err := f.projects.RemoveCollaborator(ctx, p.ID.Hex(), owner, primitive.NewObjectID().Hex()); err != nil {
		t.Errorf("removing non-collaborator: %v", err)
	}
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	p := f.project(t, owner, "P")
	t1 := f.task(t, owner, p.ID, "one")
	f.task(t, owner, p.ID, "two")

	if err := f.projects.DeleteProject(ctx, p.ID.Hex(), owner); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := f.projects.GetProject(ctx, p.ID.Hex(), owner); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("deleted project read error = %v", err)
	}
	if _, err := f.store.Tasks.FindByID(ctx, t1.ID); err == nil {
		t.Errorf("task %s survived project deletion", t1.ID.Hex())
	}
	if err := f.projects.DeleteProject(ctx, p.ID.Hex(), owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
