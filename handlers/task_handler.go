package handlers

import (
	"net/http"

	"taskboard/models"
	"taskboard/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// ListTasks serves GET /api/tasks?project={id}.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tasks, err := h.service.ListTasks(r.Context(), r.URL.Query().Get("project"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.TaskInput
	if !decodeJSON(w, r, &input) {
		return
	}
	task, err := h.service.CreateTask(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	task, err := h.service.GetTask(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	task, err := h.service.UpdateTask(r.Context(), mux.Vars(r)["id"], userID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTask(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "task deleted")
}
