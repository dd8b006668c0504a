package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTaskRepository struct {
	collection *mongo.Collection
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"project": projectID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	set := bson.M{
		"name":        task.Name,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"updatedAt":   task.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if task.AssignedTo != nil {
		set["assignedTo"] = *task.AssignedTo
	} else {
		update["$unset"] = bson.M{"assignedTo": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"project": projectID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete project tasks: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *MongoTaskRepository) UnassignInProject(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"project": projectID, "assignedTo": userID},
		bson.M{"$unset": bson.M{"assignedTo": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign tasks: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoTaskRepository) CountByStatus(ctx context.Context, projectIDs []primitive.ObjectID) (map[models.TaskStatus]int, error) {
	counts := make(map[models.TaskStatus]int)
	if len(projectIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"project": bson.M{"$in": projectIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks by status: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status models.TaskStatus `bson:"_id"`
		Count  int               `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode task counts: %w", err)
	}
	for _, g := range groups {
		counts[g.Status] = g.Count
	}
	return counts, nil
}
