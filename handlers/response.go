package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"taskboard/logging"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorsResponse struct {
	Errors []services.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Msg: msg})
}

// writeError maps service errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: verr.Fields})
	case errors.Is(err, services.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrOwnerCannotBeCollaborator),
		errors.Is(err, services.ErrAssigneeNotMember):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst. An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: []services.FieldError{{Field: "body", Msg: "request body must be valid JSON"}}})
	return false
}

// currentUser returns the id placed in the context by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
	}
	return userID, ok
}
