package models

import "github.com/go-playground/validator/v10"

// Course mirrors the Moodle catalogue row. IDs are assigned by Moodle; rows
// appear locally the first time an entry references them.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	FullName  string `db:"fullname" json:"fullname"`
	ShortName string `db:"shortname" json:"shortname"`
}

// TeacherCourses is the admin overview row: one teacher with every course
// currently assigned to them.
type TeacherCourses struct {
	Teacher Teacher  `json:"teacher"`
	Courses []Course `json:"courses"`
}

type AssignCourseRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required"`
	CourseID  int64 `json:"course_id" validate:"required"`
}

func (r *AssignCourseRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
