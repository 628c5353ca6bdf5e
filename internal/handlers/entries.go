package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/SamEvrald/logbook-app/internal/app"
	"github.com/SamEvrald/logbook-app/internal/metrics"
	"github.com/SamEvrald/logbook-app/internal/models"
)

type EntryHandler struct {
	service *app.Service
}

func NewEntryHandler(service *app.Service) *EntryHandler {
	return &EntryHandler{
		service: service,
	}
}

// Create accepts a new logbook entry, either as a multipart form (the web
// client uploads attachments alongside the fields) or as plain JSON.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"201",
		).Observe(duration)
	}()

	req, err := decodeEntryRequest(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caseNumber, err := h.service.CreateEntry(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.EntriesCreatedTotal.WithLabelValues(
		strconv.FormatInt(req.CourseID, 10),
	).Inc()

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "logbook entry created successfully",
		"case_number": caseNumber,
	})
}

func (h *EntryHandler) StudentEntries(w http.ResponseWriter, r *http.Request) {
	moodleID, err := strconv.ParseInt(r.PathValue("moodleID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid moodle id")
		return
	}

	entries, err := h.service.ListStudentEntries(moodleID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// CourseEntries is the teacher review queue: submitted entries of a course
// the authenticated teacher is assigned to.
func (h *EntryHandler) CourseEntries(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(r.PathValue("courseID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid course id")
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "access denied")
		return
	}

	entries, err := h.service.CourseEntriesForTeacher(claims.Email, courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (h *EntryHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req models.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.GradeEntry(&req); err != nil {
		writeError(w, err)
		return
	}

	metrics.EntriesGradedTotal.Inc()

	writeMessage(w, http.StatusOK, "entry graded successfully")
}

func (h *EntryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateEntryStatus(&req); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "entry status updated successfully")
}

func decodeEntryRequest(r *http.Request) (*models.NewEntryRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req models.NewEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}

	// numeric fields arrive as form strings; zero on parse failure and let
	// validation report them as missing
	moodleID, err := strconv.ParseInt(r.FormValue("moodle_id"), 10, 64)
	if err != nil {
		logger.Debug.Printf("Bad moodle_id in form: %q", r.FormValue("moodle_id"))
		moodleID = 0
	}
	courseID, err := strconv.ParseInt(r.FormValue("course_id"), 10, 64)
	if err != nil {
		logger.Debug.Printf("Bad course_id in form: %q", r.FormValue("course_id"))
		courseID = 0
	}

	return &models.NewEntryRequest{
		MoodleID:          moodleID,
		CourseID:          courseID,
		RoleInTask:        r.FormValue("role_in_task"),
		TypeOfWork:        r.FormValue("type_of_work"),
		Pathology:         r.FormValue("pathology"),
		ClinicalInfo:      r.FormValue("clinical_info"),
		Content:           r.FormValue("content"),
		ConsentForm:       r.FormValue("consent_form"),
		WorkCompletedDate: r.FormValue("work_completed_date"),
		MediaLink:         r.FormValue("media_link"),
	}, nil
}
