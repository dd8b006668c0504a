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

type ProjectService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewProjectService(store *repositories.Store) *ProjectService {
	return &ProjectService{store: store, now: time.Now}
}

// CreateProject stores a new project owned by ownerID with no collaborators and no tasks.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID primitive.ObjectID, input models.ProjectInput) (*models.ProjectView, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project := &models.Project{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		Description:   input.Description,
		Owner:         ownerID,
		Collaborators: []primitive.ObjectID{},
		Tasks:         []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Projects.Create(ctx, project); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", project.ID.Hex(), ownerID.Hex())
	return s.view(ctx, project)
}

// ListProjects returns every project userID owns or collaborates on.
func (s *ProjectService) ListProjects(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectView, error) {
	projects, err := s.store.Projects.ListForMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for i := range projects {
		ids = append(ids, projects[i].MemberIDs()...)
	}
	users, err := s.store.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, projectView(&projects[i], users))
	}
	return views, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectHex string, userID primitive.ObjectID) (*models.ProjectView, error) {
	project, err := memberProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project)
}

// UpdateProject applies the fields present in patch. Only the owner may update.
func (s *ProjectService) UpdateProject(ctx context.Context, projectHex string, userID primitive.ObjectID, patch models.ProjectPatch) (*models.ProjectView, error) {
	project, err := ownedProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if name == "" {
			return nil, NewValidationError("name", "name cannot be empty")
		}
		project.Name = name
	}
	if patch.Description.Set {
		project.Description = strings.TrimSpace(patch.Description.Value)
	}
	if err := ValidateStruct(models.ProjectInput{Name: project.Name, Description: project.Description}); err != nil {
		return nil, err
	}

	project.UpdatedAt = s.now().UTC()
	if err := s.store.Projects.UpdateDetails(ctx, project); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return s.view(ctx, project)
}

// DeleteProject removes the project together with all of its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, projectHex string, userID primitive.ObjectID) error {
	project, err := ownedProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return err
	}

	var removed int64
	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.Tasks.DeleteByProject(ctx, project.ID)
		if err != nil {
			return err
		}
		removed = n
		return s.store.Projects.Delete(ctx, project.ID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_DELETE_FAILED, Description: Deleting project %s failed: %v", project.ID.Hex(), err)
		return err
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted with %d tasks", project.ID.Hex(), removed)
	return nil
}

// AddCollaborator adds the account registered under input.Email to the project.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectHex string, userID primitive.ObjectID, input models.CollaboratorInput) (*models.UserSummary, error) {
	input.Email = normalizeEmail(input.Email)
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	project, err := ownedProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindByEmail(ctx, input.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if project.IsOwner(user.ID) {
		return nil, ErrOwnerCannotBeCollaborator
	}
	if project.IsCollaborator(user.ID) {
		return nil, ErrAlreadyCollaborator
	}

	if err := s.store.Projects.AddCollaborator(ctx, project.ID, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	logging.Logger.Infof("Event ID: COLLABORATOR_ADDED, Description: User %s added to project %s", user.ID.Hex(), project.ID.Hex())
	summary := user.Summary()
	return &summary, nil
}

// RemoveCollaborator drops collaboratorHex from the project and un-assigns
// them from its tasks. Removing someone who is not a collaborator succeeds
// without changes.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectHex string, userID primitive.ObjectID, collaboratorHex string) error {
	project, err := ownedProject(ctx, s.store.Projects, projectHex, userID)
	if err != nil {
		return err
	}

	collaboratorID, err := primitive.ObjectIDFromHex(collaboratorHex)
	if err != nil || !project.IsCollaborator(collaboratorID) {
		return nil
	}

	var unassigned int64
	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Projects.RemoveCollaborator(ctx, project.ID, collaboratorID); err != nil {
			return err
		}
		n, err := s.store.Tasks.UnassignInProject(ctx, project.ID, collaboratorID)
		unassigned = n
		return err
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		return err
	}

	logging.Logger.Infof("Event ID: COLLABORATOR_REMOVED, Description: User %s removed from project %s, %d tasks unassigned", collaboratorID.Hex(), project.ID.Hex(), unassigned)
	return nil
}

func (s *ProjectService) view(ctx context.Context, project *models.Project) (*models.ProjectView, error) {
	users, err := s.store.Users.Summaries(ctx, project.MemberIDs())
	if err != nil {
		return nil, err
	}
	v := projectView(project, users)
	return &v, nil
}

func projectView(p *models.Project, users map[primitive.ObjectID]models.UserSummary) models.ProjectView {
	collaborators := make([]models.UserSummary, 0, len(p.Collaborators))
	for _, id := range p.Collaborators {
		collaborators = append(collaborators, summaryOf(users, id))
	}
	tasks := p.Tasks
	if tasks == nil {
		tasks = []primitive.ObjectID{}
	}
	return models.ProjectView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Owner:         summaryOf(users, p.Owner),
		Collaborators: collaborators,
		Tasks:         tasks,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// summaryOf falls back to a bare id when the account no longer exists.
func summaryOf(users map[primitive.ObjectID]models.UserSummary, id primitive.ObjectID) models.UserSummary {
	if u, ok := users[id]; ok {
		return u
	}
	return models.UserSummary{ID: id}
}
