package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SamEvrald/logbook-app/internal/app"
	"github.com/SamEvrald/logbook-app/internal/models"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SignupAdmin(&req); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "admin signup successful, please log in")
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, admin, err := h.service.LoginAdmin(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   token,
		"user": map[string]string{
			"username": admin.Username,
			"email":    admin.Email,
			"role":     app.RoleAdmin,
		},
	})
}

// Courses syncs the full Moodle catalogue into the local store and returns
// it, so the admin dropdowns always show the directory's current state.
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.SyncCourses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

func (h *AdminHandler) Teachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.Store.ListTeachers()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teachers": teachers,
	})
}

func (h *AdminHandler) TeachersWithCourses(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.Store.ListTeachersWithCourses()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teachers": teachers,
	})
}

func (h *AdminHandler) AssignCourse(w http.ResponseWriter, r *http.Request) {
	var req models.AssignCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.AssignCourse(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "course assigned to teacher")
}
