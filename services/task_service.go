package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskboard/logging"
	"taskboard/models"
	"taskboard/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewTaskService(store *repositories.Store) *TaskService {
	return &TaskService{store: store, now: time.Now}
}

// CreateTask inserts a pending task and records its id on the project in the
// same transaction.
func (s *TaskService) CreateTask(ctx context.Context, userID primitive.ObjectID, input models.TaskInput) (*models.TaskView, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.ProjectID = strings.TrimSpace(input.ProjectID)
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	project, err := memberProject(ctx, s.store.Projects, input.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	assignee, err := resolveAssignee(project, input.AssignedTo)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now().UTC()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Status:      models.StatusPending,
		Priority:    priority,
		Project:     project.ID,
		AssignedTo:  assignee,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Tasks.Create(ctx, task); err != nil {
			return err
		}
		return s.store.Projects.PushTask(ctx, project.ID, task.ID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: Creating task in project %s failed: %v", project.ID.Hex(), err)
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s", task.ID.Hex(), project.ID.Hex())
	return s.view(ctx, task)
}

// ListTasks returns the tasks of a project the caller is a member of.
func (s *TaskService) ListTasks(ctx context.Context, projectHex string, userID primitive.ObjectID) ([]models.TaskView, error) {
	if strings.TrimSpace(projectHex) == "" {
		return nil, NewValidationError("project", "project is required")
	}
	project, err := memberProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, t := range tasks {
		ids = append(ids, t.CreatedBy)
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	users, err := s.store.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, taskView(&tasks[i], users))
	}
	return views, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskHex string, userID primitive.ObjectID) (*models.TaskView, error) {
	task, _, err := s.memberTask(ctx, taskHex, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, task)
}

// UpdateTask applies the fields present in patch. Any project member may update.
func (s *TaskService) UpdateTask(ctx context.Context, taskHex string, userID primitive.ObjectID, patch models.TaskPatch) (*models.TaskView, error) {
	task, project, err := s.memberTask(ctx, taskHex, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if name == "" {
			verr.Fields = append(verr.Fields, FieldError{Field: "name", Msg: "name cannot be empty"})
		}
		task.Name = name
	}
	if patch.Description.Set {
		task.Description = strings.TrimSpace(patch.Description.Value)
	}
	if patch.Status.Set {
		if !patch.Status.Value.Valid() {
			verr.Fields = append(verr.Fields, FieldError{Field: "status", Msg: "status must be one of: pending in-progress completed"})
		}
		task.Status = patch.Status.Value
	}
	if patch.Priority.Set {
		if !patch.Priority.Value.Valid() {
			verr.Fields = append(verr.Fields, FieldError{Field: "priority", Msg: "priority must be one of: low medium high"})
		}
		task.Priority = patch.Priority.Value
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	if err := ValidateStruct(models.TaskInput{Name: task.Name, Description: task.Description, ProjectID: project.ID.Hex()}); err != nil {
		return nil, err
	}

	if patch.AssignedTo.Set {
		assignee, err := resolveAssignee(project, patch.AssignedTo.Value)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee
	}

	task.UpdatedAt = s.now().UTC()
	if err := s.store.Tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated, status %s", task.ID.Hex(), task.Status)
	return s.view(ctx, task)
}

// DeleteTask removes the task and its id from the project's task list in one transaction.
func (s *TaskService) DeleteTask(ctx context.Context, taskHex string, userID primitive.ObjectID) error {
	task, project, err := s.memberTask(ctx, taskHex, userID)
	if err != nil {
		return err
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Tasks.Delete(ctx, task.ID); err != nil {
			return err
		}
		return s.store.Projects.PullTask(ctx, project.ID, task.ID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_DELETE_FAILED, Description: Deleting task %s failed: %v", task.ID.Hex(), err)
		return err
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted from project %s", task.ID.Hex(), project.ID.Hex())
	return nil
}

// memberTask loads a task and its project and checks that userID is a member.
func (s *TaskService) memberTask(ctx context.Context, taskHex string, userID primitive.ObjectID) (*models.Task, *models.Project, error) {
	id, err := ParseID(taskHex, ErrTaskNotFound)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.store.Tasks.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	project, err := loadProject(ctx, s.store.Projects, task.Project)
	if err != nil {
		return nil, nil, err
	}
	if !project.IsMember(userID) {
		return nil, nil, ErrForbidden
	}
	return task, project, nil
}

func (s *TaskService) view(ctx context.Context, task *models.Task) (*models.TaskView, error) {
	ids := []primitive.ObjectID{task.CreatedBy}
	if task.AssignedTo != nil {
		ids = append(ids, *task.AssignedTo)
	}
	users, err := s.store.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	v := taskView(task, users)
	return &v, nil
}

// resolveAssignee parses an assignee id; "" means unassigned. The assignee
// must be a member of the project.
func resolveAssignee(project *models.Project, hex string) (*primitive.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil || !project.IsMember(id) {
		return nil, ErrAssigneeNotMember
	}
	return &id, nil
}

func taskView(t *models.Task, users map[primitive.ObjectID]models.UserSummary) models.TaskView {
	v := models.TaskView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Project:     t.Project,
		CreatedBy:   summaryOf(users, t.CreatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		assignee := summaryOf(users, *t.AssignedTo)
		v.AssignedTo = &assignee
	}
	return v
}
