package client

import (
	"context"

	"taskboard/models"
)

type Column struct {
	Status models.TaskStatus
	Tasks  []models.TaskView
}

// Board arranges a TaskStore's tasks into status columns and turns drops
// into status changes.
type Board struct {
	tasks *TaskStore
}

func NewBoard(tasks *TaskStore) *Board {
	return &Board{tasks: tasks}
}

// Columns returns one column per status, in board order, holding the tasks
// that pass f.
func (b *Board) Columns(f TaskFilter) []Column {
	columns := make([]Column, len(models.Statuses))
	index := make(map[models.TaskStatus]int, len(models.Statuses))
	for i, status := range models.Statuses {
		columns[i] = Column{Status: status, Tasks: []models.TaskView{}}
		index[status] = i
	}
	for _, t := range b.tasks.Filter(f) {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns
}

// Drop handles taskID being released over overID, which is either a column
// status or another task. It reports whether a status change was attempted.
// Unknown ids and drops onto the task's own column do nothing.
func (b *Board) Drop(ctx context.Context, taskID, overID string) (bool, error) {
	task, ok := b.tasks.Task(taskID)
	if !ok {
		return false, nil
	}

	target := models.TaskStatus(overID)
	if !target.Valid() {
		over, ok := b.tasks.Task(overID)
		if !ok {
			return false, nil
		}
		target = over.Status
	}
	if target == task.Status {
		return false, nil
	}
	return true, b.tasks.UpdateStatus(ctx, taskID, target)
}
