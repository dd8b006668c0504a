package services

import (
	"context"
	"testing"

	"taskboard/models"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	mine := f.project(t, a, "mine")
	shared := f.project(t, b, "shared")
	hidden := f.project(t, b, "hidden")
	f.collaborate(t, shared, "a")

	t1 := f.task(t, a, mine.ID, "1")
	f.task(t, a, mine.ID, "2")
	f.task(t, b, shared.ID, "3")
	f.task(t, b, hidden.ID, "4")
	if _, err := f.tasks.UpdateTask(ctx, t1.ID.Hex(), a, models.TaskPatch{Status: models.Some(models.StatusCompleted)}); err != nil {
		t.Fatal(err)
	}

	stats, err := f.dashboard.Stats(ctx, a)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalProjects != 2 || stats.TotalTasks != 3 {
		t.Errorf("totals = %d projects / %d tasks, want 2/3", stats.TotalProjects, stats.TotalTasks)
	}
	want := map[models.TaskStatus]int{
		models.StatusPending:    2,
		models.StatusInProgress: 0,
		models.StatusCompleted:  1,
	}
	sum := 0
	for status, n := range want {
		got, ok := stats.TasksByStatus[status]
		if !ok || got != n {
			t.Errorf("tasksByStatus[%s] = %d (present %v), want %d", status, got, ok, n)
		}
		sum += got
	}
	if sum != stats.TotalTasks {
		t.Errorf("sum of statuses %d != totalTasks %d", sum, stats.TotalTasks)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "lonely")

	stats, err := f.dashboard.Stats(context.Background(), u)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalProjects != 0 || stats.TotalTasks != 0 || len(stats.TasksByStatus) != len(models.Statuses) {
		t.Errorf("stats = %+v, want zeros with every status key", stats)
	}
}
