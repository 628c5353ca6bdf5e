package app

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP statuses, the
// messages are what API clients see.
var (
	ErrUserNotFound       = errors.New("no user found with this moodle id")
	ErrCourseNotFound     = errors.New("course does not exist in moodle")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrEmailInUse         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExternalLookup     = errors.New("failed to fetch course from moodle")
	ErrNotAssigned        = errors.New("teacher is not assigned to this course")
)
