package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SamEvrald/logbook-app/internal/app"
	"github.com/SamEvrald/logbook-app/internal/models"
)

type TeacherHandler struct {
	service *app.Service
}

func NewTeacherHandler(service *app.Service) *TeacherHandler {
	return &TeacherHandler{
		service: service,
	}
}

func (h *TeacherHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SignupTeacher(&req); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "teacher signup successful, please log in")
}

func (h *TeacherHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, teacher, err := h.service.LoginTeacher(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   token,
		"user": map[string]string{
			"username": teacher.Username,
			"email":    teacher.Email,
			"role":     app.RoleTeacher,
		},
	})
}

// Logout revokes the presented token for its remaining lifetime. With no
// revocation store configured this is a no-op the client can still treat as
// a session end.
func (h *TeacherHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "access denied")
		return
	}

	if err := h.service.Auth.RevokeToken(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "logged out")
}

func (h *TeacherHandler) Courses(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "invalid teacher email")
		return
	}

	courses, err := h.service.TeacherCourses(email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}
