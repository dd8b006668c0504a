package services

import (
	"context"
	"errors"

	"taskboard/models"
	"taskboard/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a hex id from a URL or body. Malformed ids can never name
// a stored document, so they are reported as notFound.
func ParseID(hex string, notFound error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}

func loadProject(ctx context.Context, projects repositories.ProjectRepository, id primitive.ObjectID) (*models.Project, error) {
	project, err := projects.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	return project, err
}

// memberProject loads the project and checks that userID may see it.
func memberProject(ctx context.Context, projects repositories.ProjectRepository, projectHex string, userID primitive.ObjectID) (*models.Project, error) {
	id, err := ParseID(projectHex, ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, projects, id)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(userID) {
		return nil, ErrForbidden
	}
	return project, nil
}

// ownedProject loads the project and checks that userID owns it.
func ownedProject(ctx context.Context, projects repositories.ProjectRepository, projectHex string, userID primitive.ObjectID) (*models.Project, error) {
	id, err := ParseID(projectHex, ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, projects, id)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(userID) {
		return nil, ErrForbidden
	}
	return project, nil
}
