package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

// Connect opens a client and pings the server before handing it out.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}
	return client, nil
}

// NewMongoStore wires the repositories to db and makes sure the indexes exist.
func NewMongoStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (*Store, error) {
	users := db.Collection(usersCollection)
	projects := db.Collection(projectsCollection)
	tasks := db.Collection(tasksCollection)

	if err := createIndexes(ctx, users, projects, tasks); err != nil {
		return nil, err
	}

	return &Store{
		Users:    &MongoUserRepository{collection: users},
		Projects: &MongoProjectRepository{collection: projects},
		Tasks:    &MongoTaskRepository{collection: tasks},
		Tx:       &MongoTransactor{client: client},
	}, nil
}

func createIndexes(ctx context.Context, users, projects, tasks *mongo.Collection) error {
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on user email: %w", err)
	}

	_, err = projects.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "collaborators", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create project membership indexes: %w", err)
	}

	_, err = tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task project index: %w", err)
	}
	return nil
}

// MongoTransactor runs multi-document writes in a session transaction.
// Transactions need a replica set or sharded cluster.
type MongoTransactor struct {
	client *mongo.Client
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
