package repositories

import (
	"context"
	"errors"
	"testing"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project := &models.Project{Name: "p", Owner: primitive.NewObjectID()}
	if err := store.Projects.Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}

	boom := errors.New("boom")
	task := &models.Task{Name: "t", Project: project.ID, Status: models.StatusPending}
	err := store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Tasks.Create(ctx, task); err != nil {
			return err
		}
		if err := store.Projects.PushTask(ctx, project.ID, task.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction error = %v, want boom", err)
	}

	if _, err := store.Tasks.FindByID(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("task survived rollback: %v", err)
	}
	got, err := store.Projects.FindByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("find project: %v", err)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("project tasks = %v after rollback, want empty", got.Tasks)
	}
}

func TestMemoryTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project := &models.Project{Name: "p", Owner: primitive.NewObjectID()}
	_ = store.Projects.Create(ctx, project)

	task := &models.Task{Name: "t", Project: project.ID, Status: models.StatusPending}
	err := store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Tasks.Create(ctx, task); err != nil {
			return err
		}
		return store.Projects.PushTask(ctx, project.ID, task.ID)
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	got, _ := store.Projects.FindByID(ctx, project.ID)
	if len(got.Tasks) != 1 || got.Tasks[0] != task.ID {
		t.Errorf("project tasks = %v, want [%s]", got.Tasks, task.ID.Hex())
	}
}

func TestMemoryUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Users.Create(ctx, &models.User{Name: "a", Email: "a@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := store.Users.Create(ctx, &models.User{Name: "b", Email: "a@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second create error = %v, want ErrDuplicate", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	project := &models.Project{Name: "p", Owner: primitive.NewObjectID()}
	_ = store.Projects.Create(ctx, project)

	got, _ := store.Projects.FindByID(ctx, project.ID)
	got.Collaborators = append(got.Collaborators, primitive.NewObjectID())

	again, _ := store.Projects.FindByID(ctx, project.ID)
	if len(again.Collaborators) != 0 {
		t.Errorf("stored project mutated through returned value: %v", again.Collaborators)
	}
}

func TestMemoryCountByStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mine := primitive.NewObjectID()
	other := primitive.NewObjectID()
	for _, task := range []models.Task{
		{Project: mine, Status: models.StatusPending},
		{Project: mine, Status: models.StatusPending},
		{Project: mine, Status: models.StatusCompleted},
		{Project: other, Status: models.StatusCompleted},
	} {
		task := task
		_ = store.Tasks.Create(ctx, &task)
	}

	counts, err := store.Tasks.CountByStatus(ctx, []primitive.ObjectID{mine})
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.StatusPending] != 2 || counts[models.StatusCompleted] != 1 || counts[models.StatusInProgress] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
