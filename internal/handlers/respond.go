package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/SamEvrald/logbook-app/internal/app"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps the service error taxonomy onto HTTP statuses. Server
// errors carry the underlying error text, client errors only the message.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "validation failed",
			"error":   validationErrs.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrCourseNotFound),
		errors.Is(err, app.ErrEntryNotFound),
		errors.Is(err, app.ErrTeacherNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrEmailInUse):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotAssigned):
		writeMessage(w, http.StatusForbidden, err.Error())
	default:
		logger.Error.Printf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "internal server error",
			"error":   err.Error(),
		})
	}
}
