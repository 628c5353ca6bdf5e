package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/SamEvrald/logbook-app/internal/models"
)

// ErrNotFound is returned by mutating calls that matched zero rows.
var ErrNotFound = errors.New("not found")

// caseNumberRetries bounds how often an entry insert is replayed after a
// case_number unique violation caused by a concurrent insert for the same
// course.
const caseNumberRetries = 3

type LogbookStore interface {
	Close() error
	ApplyMigrations(dir string) error

	GetUserByMoodleID(moodleID int64) (*models.User, error)
	CreateUser(user *models.User) error

	GetCourse(id int64) (*models.Course, error)
	UpsertCourse(course models.Course) error
	ListCourses() ([]models.Course, error)

	CreateEntry(entry *models.Entry, courseFullName string) (string, error)
	GetEntry(id int64) (*models.Entry, error)
	ListStudentEntries(studentID int64) ([]models.Entry, error)
	ListCourseEntriesByStatus(courseID int64, status string) ([]models.Entry, error)
	GradeEntry(id int64, grade int, feedback string) error
	UpdateEntryStatus(id int64, status string) error

	CreateTeacher(teacher *models.Teacher) error
	GetTeacherByEmail(email string) (*models.Teacher, error)
	ListTeachers() ([]models.Teacher, error)
	AssignCourse(teacherID, courseID int64) error
	ListTeacherCourses(teacherID int64) ([]models.Course, error)
	ListTeachersWithCourses() ([]models.TeacherCourses, error)
	TeacherAssignedToCourse(teacherID, courseID int64) (bool, error)

	CreateAdmin(admin *models.Admin) error
	GetAdminByEmail(email string) (*models.Admin, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB *sqlx.DB
	// Converter rewrites ? placeholders into the dialect's form
	Converter func(string) string
	// IsUniqueViolation reports whether err is the driver's unique
	// constraint error
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		ddl := string(content)
		if translateSQL != nil {
			ddl = translateSQL(ddl)
		}

		if _, err := s.DB.Exec(ddl); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetUserByMoodleID(moodleID int64) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, moodle_id, username
		FROM users
		WHERE moodle_id = ?
	`)

	err := s.DB.Get(&user, query, moodleID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by moodle id: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (moodle_id, username)
		VALUES (:moodle_id, :username)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetCourse(id int64) (*models.Course, error) {
	var course models.Course
	query := s.Converter(`
		SELECT id, fullname, shortname
		FROM courses
		WHERE id = ?
	`)

	err := s.DB.Get(&course, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// UpsertCourse must stay idempotent: two requests racing on the same missing
// course both write, the second overwrites with identical values.
func (s *BaseStore) UpsertCourse(course models.Course) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO courses (id, fullname, shortname)
		VALUES (:id, :fullname, :shortname)
		ON CONFLICT(id) DO UPDATE SET
		fullname = excluded.fullname,
		shortname = excluded.shortname
	`, course)
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

func (s *BaseStore) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.Select(&courses, `
		SELECT id, fullname, shortname
		FROM courses
		ORDER BY fullname, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// CreateEntry allocates the next per-course case number and inserts the
// entry in one transaction. The sequence comes from a count over the same
// course, so the unique index on case_number plus a bounded retry covers
// concurrent inserts.
func (s *BaseStore) CreateEntry(entry *models.Entry, courseFullName string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < caseNumberRetries; attempt++ {
		caseNumber, err := s.insertEntry(entry, courseFullName)
		if err == nil {
			return caseNumber, nil
		}
		if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
			lastErr = err
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("failed to allocate case number after %d attempts: %w", caseNumberRetries, lastErr)
}

func (s *BaseStore) insertEntry(entry *models.Entry, courseFullName string) (string, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin entry transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	query := s.Converter(`SELECT COUNT(*) FROM logbook_entries WHERE course_id = ?`)
	if err := tx.Get(&count, query, entry.CourseID); err != nil {
		return "", fmt.Errorf("failed to count course entries: %w", err)
	}

	entry.CaseNumber = models.CaseNumber(courseFullName, count+1)
	entry.Status = models.StatusSubmitted

	_, err = tx.NamedExec(`
		INSERT INTO logbook_entries (
			case_number, student_id, course_id, role_in_task, type_of_work,
			pathology, clinical_info, content, consent_form,
			work_completed_date, media_link, status, created_at
		) VALUES (
			:case_number, :student_id, :course_id, :role_in_task, :type_of_work,
			:pathology, :clinical_info, :content, :consent_form,
			:work_completed_date, :media_link, :status, :created_at
		)
	`, entry)
	if err != nil {
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit entry: %w", err)
	}
	return entry.CaseNumber, nil
}

func (s *BaseStore) GetEntry(id int64) (*models.Entry, error) {
	var entry models.Entry
	query := s.Converter(`
		SELECT id, case_number, student_id, course_id, role_in_task,
			type_of_work, pathology, clinical_info, content, consent_form,
			work_completed_date, media_link, status, grade, feedback, created_at
		FROM logbook_entries
		WHERE id = ?
	`)

	err := s.DB.Get(&entry, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return &entry, nil
}

func (s *BaseStore) ListStudentEntries(studentID int64) ([]models.Entry, error) {
	var entries []models.Entry
	query := s.Converter(`
		SELECT id, case_number, student_id, course_id, role_in_task,
			type_of_work, pathology, clinical_info, content, consent_form,
			work_completed_date, media_link, status, grade, feedback, created_at
		FROM logbook_entries
		WHERE student_id = ?
		ORDER BY work_completed_date DESC, created_at DESC
	`)

	err := s.DB.Select(&entries, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student entries: %w", err)
	}
	return entries, nil
}

func (s *BaseStore) ListCourseEntriesByStatus(courseID int64, status string) ([]models.Entry, error) {
	var entries []models.Entry
	query := s.Converter(`
		SELECT id, case_number, student_id, course_id, role_in_task,
			type_of_work, pathology, clinical_info, content, consent_form,
			work_completed_date, media_link, status, grade, feedback, created_at
		FROM logbook_entries
		WHERE course_id = ?
		AND status = ?
		ORDER BY work_completed_date DESC, created_at DESC
	`)

	err := s.DB.Select(&entries, query, courseID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list course entries: %w", err)
	}
	return entries, nil
}

// GradeEntry is last-write-wins: re-grading overwrites grade and feedback.
func (s *BaseStore) GradeEntry(id int64, grade int, feedback string) error {
	query := s.Converter(`
		UPDATE logbook_entries
		SET grade = ?, feedback = ?, status = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query, grade, feedback, models.StatusGraded, id)
	if err != nil {
		return fmt.Errorf("failed to grade entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check graded rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) UpdateEntryStatus(id int64, status string) error {
	query := s.Converter(`
		UPDATE logbook_entries
		SET status = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) CreateTeacher(teacher *models.Teacher) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO teachers (username, email, password)
		VALUES (:username, :email, :password)
	`, teacher)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (s *BaseStore) GetTeacherByEmail(email string) (*models.Teacher, error) {
	var teacher models.Teacher
	query := s.Converter(`
		SELECT id, username, email, password
		FROM teachers
		WHERE email = ?
	`)

	err := s.DB.Get(&teacher, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher by email: %w", err)
	}
	return &teacher, nil
}

func (s *BaseStore) ListTeachers() ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := s.DB.Select(&teachers, `
		SELECT id, username, email, password
		FROM teachers
		ORDER BY username, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

// AssignCourse is idempotent, re-assigning an existing pair is a no-op.
func (s *BaseStore) AssignCourse(teacherID, courseID int64) error {
	query := s.Converter(`
		INSERT INTO teacher_courses (teacher_id, course_id)
		VALUES (?, ?)
		ON CONFLICT(teacher_id, course_id) DO NOTHING
	`)

	if _, err := s.DB.Exec(query, teacherID, courseID); err != nil {
		return fmt.Errorf("failed to assign course: %w", err)
	}
	return nil
}

func (s *BaseStore) ListTeacherCourses(teacherID int64) ([]models.Course, error) {
	var courses []models.Course
	query := s.Converter(`
		SELECT c.id, c.fullname, c.shortname
		FROM teacher_courses tc
		JOIN courses c ON c.id = tc.course_id
		WHERE tc.teacher_id = ?
		ORDER BY c.fullname, c.id
	`)

	err := s.DB.Select(&courses, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) ListTeachersWithCourses() ([]models.TeacherCourses, error) {
	teachers, err := s.ListTeachers()
	if err != nil {
		return nil, err
	}

	result := make([]models.TeacherCourses, 0, len(teachers))
	for _, teacher := range teachers {
		courses, err := s.ListTeacherCourses(teacher.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, models.TeacherCourses{
			Teacher: teacher,
			Courses: courses,
		})
	}
	return result, nil
}

func (s *BaseStore) TeacherAssignedToCourse(teacherID, courseID int64) (bool, error) {
	var count int
	query := s.Converter(`
		SELECT COUNT(*)
		FROM teacher_courses
		WHERE teacher_id = ?
		AND course_id = ?
	`)

	if err := s.DB.Get(&count, query, teacherID, courseID); err != nil {
		return false, fmt.Errorf("failed to check course assignment: %w", err)
	}
	return count > 0, nil
}

func (s *BaseStore) CreateAdmin(admin *models.Admin) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO admins (username, email, password)
		VALUES (:username, :email, :password)
	`, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	query := s.Converter(`
		SELECT id, username, email, password
		FROM admins
		WHERE email = ?
	`)

	err := s.DB.Get(&admin, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &admin, nil
}
