package services

import (
	"context"

	"taskboard/models"
	"taskboard/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardService struct {
	store *repositories.Store
}

func NewDashboardService(store *repositories.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Stats counts the caller's projects and the tasks in them, grouped by status.
// TotalTasks is the sum of the grouped counts so the two always agree.
func (s *DashboardService) Stats(ctx context.Context, userID primitive.ObjectID) (*models.DashboardStats, error) {
	projects, err := s.store.Projects.ListForMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalProjects: len(projects),
		TasksByStatus: make(map[models.TaskStatus]int, len(models.Statuses)),
	}
	for _, status := range models.Statuses {
		stats.TasksByStatus[status] = 0
	}
	if len(projects) == 0 {
		return stats, nil
	}

	ids := make([]primitive.ObjectID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	counts, err := s.store.Tasks.CountByStatus(ctx, ids)
	if err != nil {
		return nil, err
	}
	for status, n := range counts {
		stats.TasksByStatus[status] += n
		stats.TotalTasks += n
	}
	return stats, nil
}
