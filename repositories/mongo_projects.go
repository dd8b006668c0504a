package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProjectRepository struct {
	collection *mongo.Collection
}

func (r *MongoProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	// $addToSet and $push fail on a null field, so never store nil slices.
	if project.Collaborators == nil {
		project.Collaborators = []primitive.ObjectID{}
	}
	if project.Tasks == nil {
		project.Tasks = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *MongoProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching project: %w", err)
	}
	return &project, nil
}

func (r *MongoProjectRepository) ListForMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": []bson.M{
		{"owner": userID},
		{"collaborators": userID},
	}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("unsuccessful procurement of projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("unsuccessful decoding of projects: %w", err)
	}
	return projects, nil
}

func (r *MongoProjectRepository) UpdateDetails(ctx context.Context, project *models.Project) error {
	update := bson.M{"$set": bson.M{
		"name":        project.Name,
		"description": project.Description,
		"updatedAt":   project.UpdatedAt,
	}}
	return r.updateOne(ctx, project.ID, update)
}

func (r *MongoProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepository) AddCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return r.updateOne(ctx, projectID, bson.M{
		"$addToSet": bson.M{"collaborators": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *MongoProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return r.updateOne(ctx, projectID, bson.M{
		"$pull": bson.M{"collaborators": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *MongoProjectRepository) PushTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.updateOne(ctx, projectID, bson.M{"$push": bson.M{"tasks": taskID}})
}

func (r *MongoProjectRepository) PullTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.updateOne(ctx, projectID, bson.M{"$pull": bson.M{"tasks": taskID}})
}

func (r *MongoProjectRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
