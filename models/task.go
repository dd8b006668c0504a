package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Status      TaskStatus          `json:"status" bson:"status"`
	Priority    TaskPriority        `json:"priority" bson:"priority"`
	Project     primitive.ObjectID  `json:"project" bson:"project"`
	AssignedTo  *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedBy   primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// TaskView is a task with assignee and creator resolved to user summaries.
type TaskView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Status      TaskStatus         `json:"status"`
	Priority    TaskPriority       `json:"priority"`
	Project     primitive.ObjectID `json:"project"`
	AssignedTo  *UserSummary       `json:"assignedTo,omitempty"`
	CreatedBy   UserSummary        `json:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type TaskInput struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=2000"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	ProjectID   string       `json:"projectId" validate:"required"`
	AssignedTo  string       `json:"assignedTo"`
}

// TaskPatch carries a partial task update. AssignedTo distinguishes absent
// (unchanged) from null or "" (un-assign).
type TaskPatch struct {
	Name        Optional[string]       `json:"name"`
	Description Optional[string]       `json:"description"`
	Status      Optional[TaskStatus]   `json:"status"`
	Priority    Optional[TaskPriority] `json:"priority"`
	AssignedTo  Optional[string]       `json:"assignedTo"`
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	f := setFields{}
	f.add("name", p.Name.Set, p.Name)
	f.add("description", p.Description.Set, p.Description)
	f.add("status", p.Status.Set, p.Status)
	f.add("priority", p.Priority.Set, p.Priority)
	f.add("assignedTo", p.AssignedTo.Set, p.AssignedTo)
	return json.Marshal(f)
}

func (p ProjectPatch) MarshalJSON() ([]byte, error) {
	f := setFields{}
	f.add("name", p.Name.Set, p.Name)
	f.add("description", p.Description.Set, p.Description)
	return json.Marshal(f)
}

// DashboardStats summarizes the projects a user can see. TasksByStatus is
// keyed by the wire status values (pending, in-progress, completed); clients
// that show localized labels map them on their side.
type DashboardStats struct {
	TotalProjects int                `json:"totalProjects"`
	TotalTasks    int                `json:"totalTasks"`
	TasksByStatus map[TaskStatus]int `json:"tasksByStatus"`
}

type MessageResponse struct {
	Msg string `json:"msg"`
}
