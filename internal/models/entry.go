package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Entry is one logbook row. Grade and Feedback stay nil until a teacher
// grades the entry.
type Entry struct {
	ID                int64   `db:"id" json:"id"`
	CaseNumber        string  `db:"case_number" json:"case_number"`
	StudentID         int64   `db:"student_id" json:"student_id"`
	CourseID          int64   `db:"course_id" json:"course_id"`
	RoleInTask        string  `db:"role_in_task" json:"role_in_task"`
	TypeOfWork        string  `db:"type_of_work" json:"type_of_work"`
	Pathology         string  `db:"pathology" json:"pathology"`
	ClinicalInfo      string  `db:"clinical_info" json:"clinical_info"`
	Content           string  `db:"content" json:"content"`
	ConsentForm       string  `db:"consent_form" json:"consent_form"`
	WorkCompletedDate string  `db:"work_completed_date" json:"work_completed_date"`
	MediaLink         string  `db:"media_link" json:"media_link"`
	Status            string  `db:"status" json:"status"`
	Grade             *int    `db:"grade" json:"grade"`
	Feedback          *string `db:"feedback" json:"feedback"`
	CreatedAt         int64   `db:"created_at" json:"created_at"`
}

type NewEntryRequest struct {
	MoodleID          int64  `json:"moodle_id" validate:"required"`
	CourseID          int64  `json:"course_id" validate:"required"`
	RoleInTask        string `json:"role_in_task" validate:"omitempty,oneof=leader observer collaborator"`
	TypeOfWork        string `json:"type_of_work"`
	Pathology         string `json:"pathology"`
	ClinicalInfo      string `json:"clinical_info"`
	Content           string `json:"content"`
	ConsentForm       string `json:"consent_form" validate:"omitempty,oneof=yes no"`
	WorkCompletedDate string `json:"work_completed_date" validate:"required,datetime=2006-01-02"`
	MediaLink         string `json:"media_link"`
}

type GradeRequest struct {
	EntryID  int64  `json:"entry_id" validate:"required"`
	Grade    *int   `json:"grade" validate:"required,min=0,max=100"`
	Feedback string `json:"feedback" validate:"required"`
}

type StatusRequest struct {
	EntryID int64  `json:"entry_id" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=submitted graded"`
}

func (r *NewEntryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

func (r *GradeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

func (r *StatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CaseNumber derives the human-readable identifier for the n-th entry of a
// course: the course full name uppercased with every whitespace run
// collapsed to a single hyphen, then the sequence number.
func CaseNumber(courseFullName string, seq int) string {
	name := whitespaceRun.ReplaceAllString(strings.ToUpper(courseFullName), "-")
	return fmt.Sprintf("%s-%d", name, seq)
}
