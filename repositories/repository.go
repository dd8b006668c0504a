package repositories

import (
	"context"
	"errors"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Summaries resolves ids to public identities; unknown ids are left out.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	ListForMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
	UpdateDetails(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error
	RemoveCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error
	PushTask(ctx context.Context, projectID, taskID primitive.ObjectID) error
	PullTask(ctx context.Context, projectID, taskID primitive.ObjectID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
	UnassignInProject(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error)
	CountByStatus(ctx context.Context, projectIDs []primitive.ObjectID) (map[models.TaskStatus]int, error)
}

// Transactor runs fn atomically. Repository calls made with the ctx passed to
// fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories and the transactor of one backend.
type Store struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
	Tx       Transactor
}
