package models

import "github.com/go-playground/validator/v10"

// User is a student synced from Moodle. MoodleID is assigned by the LMS and
// never changes once set.
type User struct {
	ID       int64  `db:"id" json:"id"`
	MoodleID int64  `db:"moodle_id" json:"moodle_id"`
	Username string `db:"username" json:"username"`
}

// Teacher and Admin share the same credential shape but live in separate
// tables, matching the role claim in issued tokens.
type Teacher struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"-"`
}

type Admin struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"-"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *SignupRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
