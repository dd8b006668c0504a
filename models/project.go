package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

type Project struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name"`
	Description   string               `json:"description,omitempty" bson:"description,omitempty"`
	Owner         primitive.ObjectID   `json:"owner" bson:"owner"`
	Collaborators []primitive.ObjectID `json:"collaborators" bson:"collaborators"`
	Tasks         []primitive.ObjectID `json:"tasks" bson:"tasks"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (p *Project) IsOwner(userID primitive.ObjectID) bool {
	return p.Owner == userID
}

func (p *Project) IsCollaborator(userID primitive.ObjectID) bool {
	return slices.Contains(p.Collaborators, userID)
}

// IsMember reports whether userID is the owner or one of the collaborators.
// Every project- and task-scoped operation is gated on it.
func (p *Project) IsMember(userID primitive.ObjectID) bool {
	return p.IsOwner(userID) || p.IsCollaborator(userID)
}

// MemberIDs returns the owner followed by the collaborators.
func (p *Project) MemberIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(p.Collaborators)+1)
	ids = append(ids, p.Owner)
	return append(ids, p.Collaborators...)
}

// ProjectView is a project with owner and collaborators resolved to user summaries.
type ProjectView struct {
	ID            primitive.ObjectID   `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	Owner         UserSummary          `json:"owner"`
	Collaborators []UserSummary        `json:"collaborators"`
	Tasks         []primitive.ObjectID `json:"tasks"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type ProjectInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type ProjectPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

type CollaboratorInput struct {
	Email string `json:"email" validate:"required,email"`
}

type CollaboratorResponse struct {
	Msg  string      `json:"msg"`
	User UserSummary `json:"user"`
}
