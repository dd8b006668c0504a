package handlers

import (
	"net/http"

	"taskboard/models"
	"taskboard/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	projects, err := h.service.ListProjects(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.ProjectInput
	if !decodeJSON(w, r, &input) {
		return
	}
	project, err := h.service.CreateProject(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	project, err := h.service.GetProject(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	project, err := h.service.UpdateProject(r.Context(), mux.Vars(r)["id"], userID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProject(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "project deleted")
}

func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.CollaboratorInput
	if !decodeJSON(w, r, &input) {
		return
	}
	user, err := h.service.AddCollaborator(r.Context(), mux.Vars(r)["id"], userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CollaboratorResponse{Msg: "collaborator added", User: *user})
}

func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := h.service.RemoveCollaborator(r.Context(), vars["id"], userID, vars["userId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "collaborator removed")
}
