package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/SamEvrald/logbook-app/internal/metrics"
	"github.com/SamEvrald/logbook-app/internal/models"
	"github.com/SamEvrald/logbook-app/internal/moodle"
	"github.com/SamEvrald/logbook-app/internal/store"
)

// CourseDirectory is the external course catalogue, in production the Moodle
// webservice client.
type CourseDirectory interface {
	FetchCourses(ctx context.Context) ([]moodle.Course, error)
}

type Service struct {
	Config *Config
	Store  store.LogbookStore
	Moodle CourseDirectory
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logbookStore, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	directory := moodle.NewClient(
		config.Moodle.BaseURL,
		config.Moodle.Token,
		time.Duration(config.Moodle.TimeoutSeconds)*time.Second,
	)

	return &Service{
		Config: config,
		Store:  logbookStore,
		Moodle: directory,
		Auth:   auth,
	}, nil
}

// ResolveCourse returns the course row for id, syncing it from Moodle on a
// local miss. The upsert keeps concurrent first requests idempotent.
func (s *Service) ResolveCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	course, err := s.Store.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course != nil {
		return course, nil
	}

	logger.Debug.Printf("Course %d not found locally, fetching from Moodle", courseID)

	catalogue, err := s.Moodle.FetchCourses(ctx)
	if err != nil {
		metrics.MoodleLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrExternalLookup, err)
	}

	for _, c := range catalogue {
		if c.ID != courseID {
			continue
		}
		metrics.MoodleLookupsTotal.WithLabelValues("found").Inc()

		resolved := models.Course{
			ID:        c.ID,
			FullName:  c.FullName,
			ShortName: c.ShortName,
		}
		if err := s.Store.UpsertCourse(resolved); err != nil {
			return nil, err
		}
		return &resolved, nil
	}

	metrics.MoodleLookupsTotal.WithLabelValues("not_found").Inc()
	return nil, ErrCourseNotFound
}

// CreateEntry runs the submission flow: resolve student, resolve course,
// derive case number, persist with status submitted. Returns the case
// number.
func (s *Service) CreateEntry(ctx context.Context, req *models.NewEntryRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	user, err := s.Store.GetUserByMoodleID(req.MoodleID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	course, err := s.ResolveCourse(ctx, req.CourseID)
	if err != nil {
		return "", err
	}

	entry := models.Entry{
		StudentID:         user.ID,
		CourseID:          course.ID,
		RoleInTask:        req.RoleInTask,
		TypeOfWork:        req.TypeOfWork,
		Pathology:         req.Pathology,
		ClinicalInfo:      req.ClinicalInfo,
		Content:           req.Content,
		ConsentForm:       req.ConsentForm,
		WorkCompletedDate: req.WorkCompletedDate,
		MediaLink:         req.MediaLink,
		CreatedAt:         time.Now().Unix(),
	}

	caseNumber, err := s.Store.CreateEntry(&entry, course.FullName)
	if err != nil {
		return "", err
	}

	logger.Info.Printf("Created entry %s for student %d in course %d", caseNumber, user.ID, course.ID)
	return caseNumber, nil
}

func (s *Service) ListStudentEntries(moodleID int64) ([]models.Entry, error) {
	user, err := s.Store.GetUserByMoodleID(moodleID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.Store.ListStudentEntries(user.ID)
}

// CourseEntriesForTeacher returns the submitted entries of a course, but
// only for a teacher actually assigned to it.
func (s *Service) CourseEntriesForTeacher(teacherEmail string, courseID int64) ([]models.Entry, error) {
	teacher, err := s.Store.GetTeacherByEmail(teacherEmail)
	if err != nil {
		return nil, err
	}
	if teacher == nil {
		return nil, ErrTeacherNotFound
	}

	assigned, err := s.Store.TeacherAssignedToCourse(teacher.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	return s.Store.ListCourseEntriesByStatus(courseID, models.StatusSubmitted)
}

func (s *Service) GradeEntry(req *models.GradeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.Store.GradeEntry(req.EntryID, *req.Grade, req.Feedback); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}

func (s *Service) UpdateEntryStatus(req *models.StatusRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.Store.UpdateEntryStatus(req.EntryID, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}

func (s *Service) TeacherCourses(email string) ([]models.Course, error) {
	teacher, err := s.Store.GetTeacherByEmail(email)
	if err != nil {
		return nil, err
	}
	if teacher == nil {
		return nil, ErrTeacherNotFound
	}

	return s.Store.ListTeacherCourses(teacher.ID)
}

func (s *Service) SignupTeacher(req *models.SignupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := s.Store.GetTeacherByEmail(req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailInUse
	}

	hash, err := s.Auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	return s.Store.CreateTeacher(&models.Teacher{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	})
}

// LoginTeacher returns a signed token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) LoginTeacher(req *models.LoginRequest) (string, *models.Teacher, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}

	teacher, err := s.Store.GetTeacherByEmail(req.Email)
	if err != nil {
		return "", nil, err
	}
	if teacher == nil || !s.Auth.CheckPassword(teacher.Password, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Auth.IssueToken(teacher.ID, teacher.Email, RoleTeacher)
	if err != nil {
		return "", nil, err
	}
	return token, teacher, nil
}

func (s *Service) SignupAdmin(req *models.SignupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := s.Store.GetAdminByEmail(req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailInUse
	}

	hash, err := s.Auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	return s.Store.CreateAdmin(&models.Admin{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	})
}

func (s *Service) LoginAdmin(req *models.LoginRequest) (string, *models.Admin, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}

	admin, err := s.Store.GetAdminByEmail(req.Email)
	if err != nil {
		return "", nil, err
	}
	if admin == nil || !s.Auth.CheckPassword(admin.Password, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Auth.IssueToken(admin.ID, admin.Email, RoleAdmin)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// SyncCourses pulls the whole Moodle catalogue, upserts every row and
// returns the local course list. Admin view.
func (s *Service) SyncCourses(ctx context.Context) ([]models.Course, error) {
	catalogue, err := s.Moodle.FetchCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalLookup, err)
	}

	for _, c := range catalogue {
		course := models.Course{
			ID:        c.ID,
			FullName:  c.FullName,
			ShortName: c.ShortName,
		}
		if err := s.Store.UpsertCourse(course); err != nil {
			return nil, err
		}
	}

	return s.Store.ListCourses()
}

// AssignCourse links a teacher to a course, lazily syncing the course from
// Moodle if it is not known locally yet.
func (s *Service) AssignCourse(ctx context.Context, req *models.AssignCourseRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.ResolveCourse(ctx, req.CourseID); err != nil {
		return err
	}

	return s.Store.AssignCourse(req.TeacherID, req.CourseID)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
