package app

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SamEvrald/logbook-app/internal/models"
	"github.com/SamEvrald/logbook-app/internal/moodle"
	"github.com/SamEvrald/logbook-app/internal/store/sqlite"
)

// fakeDirectory stands in for the Moodle catalogue and counts how often it
// was hit.
type fakeDirectory struct {
	courses []moodle.Course
	err     error
	calls   int
}

func (f *fakeDirectory) FetchCourses(ctx context.Context) ([]moodle.Course, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

func newTestService(t *testing.T, directory *fakeDirectory) (*Service, func()) {
	config := &Config{}
	config.Server.Port = ":0"
	config.Auth.JWTSecret = "test-secret-test-secret-test-secret"
	config.Auth.BcryptCost = bcrypt.MinCost

	s, err := sqlite.NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")
	s.DB.SetMaxOpenConns(1)
	require.NoError(t, s.ApplyMigrations("../../migrations"), "Failed to apply migrations")

	auth, err := NewAuth(config)
	require.NoError(t, err)

	service := &Service{
		Config: config,
		Store:  s,
		Moodle: directory,
		Auth:   auth,
	}

	return service, func() {
		require.NoError(t, service.Close())
	}
}

func seedStudent(t *testing.T, service *Service, moodleID int64) *models.User {
	require.NoError(t, service.Store.CreateUser(&models.User{MoodleID: moodleID, Username: "jane.doe"}))
	user, err := service.Store.GetUserByMoodleID(moodleID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func validEntryRequest(moodleID, courseID int64) *models.NewEntryRequest {
	return &models.NewEntryRequest{
		MoodleID:          moodleID,
		CourseID:          courseID,
		RoleInTask:        "leader",
		TypeOfWork:        "extraction",
		ConsentForm:       "yes",
		WorkCompletedDate: "2024-03-01",
	}
}

func TestResolveCourse(t *testing.T) {
	directory := &fakeDirectory{courses: []moodle.Course{
		{ID: 12, FullName: "Intro To Surgery", ShortName: "ITS"},
		{ID: 13, FullName: "Oral Pathology", ShortName: "OP"},
	}}
	service, cleanup := newTestService(t, directory)
	defer cleanup()

	t.Run("local hit skips the directory", func(t *testing.T) {
		require.NoError(t, service.Store.UpsertCourse(models.Course{ID: 1, FullName: "Local", ShortName: "L"}))

		course, err := service.ResolveCourse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Local", course.FullName)
		assert.Equal(t, 0, directory.calls)
	})

	t.Run("miss syncs from directory once", func(t *testing.T) {
		course, err := service.ResolveCourse(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, "Intro To Surgery", course.FullName)
		assert.Equal(t, 1, directory.calls)

		// second resolve hits the upserted row
		course, err = service.ResolveCourse(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, "Intro To Surgery", course.FullName)
		assert.Equal(t, 1, directory.calls)
	})

	t.Run("unknown everywhere", func(t *testing.T) {
		_, err := service.ResolveCourse(context.Background(), 999)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("empty catalogue behaves like not found", func(t *testing.T) {
		empty := &fakeDirectory{}
		svc, done := newTestService(t, empty)
		defer done()

		_, err := svc.ResolveCourse(context.Background(), 12)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("directory failure surfaces as external lookup error", func(t *testing.T) {
		broken := &fakeDirectory{err: errors.New("connection refused")}
		svc, done := newTestService(t, broken)
		defer done()

		_, err := svc.ResolveCourse(context.Background(), 12)
		assert.ErrorIs(t, err, ErrExternalLookup)
	})
}

func TestCreateEntry(t *testing.T) {
	directory := &fakeDirectory{courses: []moodle.Course{
		{ID: 12, FullName: "Intro To Surgery", ShortName: "ITS"},
	}}
	service, cleanup := newTestService(t, directory)
	defer cleanup()

	student := seedStudent(t, service, 501)

	t.Run("happy path creates course and entry", func(t *testing.T) {
		caseNumber, err := service.CreateEntry(context.Background(), validEntryRequest(501, 12))
		require.NoError(t, err)
		assert.Equal(t, "INTRO-TO-SURGERY-1", caseNumber)

		courses, err := service.Store.ListCourses()
		require.NoError(t, err)
		assert.Len(t, courses, 1)

		entries, err := service.Store.ListStudentEntries(student.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.StatusSubmitted, entries[0].Status)
	})

	t.Run("second entry advances the sequence", func(t *testing.T) {
		caseNumber, err := service.CreateEntry(context.Background(), validEntryRequest(501, 12))
		require.NoError(t, err)
		assert.Equal(t, "INTRO-TO-SURGERY-2", caseNumber)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := service.CreateEntry(context.Background(), validEntryRequest(666, 12))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown course writes nothing", func(t *testing.T) {
		_, err := service.CreateEntry(context.Background(), validEntryRequest(501, 999))
		assert.ErrorIs(t, err, ErrCourseNotFound)

		entries, err := service.Store.ListStudentEntries(student.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("missing completion date is a validation error", func(t *testing.T) {
		req := validEntryRequest(501, 12)
		req.WorkCompletedDate = ""

		_, err := service.CreateEntry(context.Background(), req)
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})
}

func TestGradeAndStatusFlow(t *testing.T) {
	directory := &fakeDirectory{courses: []moodle.Course{
		{ID: 12, FullName: "Intro To Surgery", ShortName: "ITS"},
	}}
	service, cleanup := newTestService(t, directory)
	defer cleanup()

	student := seedStudent(t, service, 501)
	_, err := service.CreateEntry(context.Background(), validEntryRequest(501, 12))
	require.NoError(t, err)

	entries, err := service.Store.ListStudentEntries(student.ID)
	require.NoError(t, err)
	entryID := entries[0].ID

	grade := 87
	require.NoError(t, service.GradeEntry(&models.GradeRequest{
		EntryID:  entryID,
		Grade:    &grade,
		Feedback: "Good work",
	}))

	entries, err = service.ListStudentEntries(501)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGraded, entries[0].Status)
	assert.Equal(t, 87, *entries[0].Grade)
	assert.Equal(t, "Good work", *entries[0].Feedback)

	t.Run("grading a missing entry", func(t *testing.T) {
		err := service.GradeEntry(&models.GradeRequest{EntryID: 4242, Grade: &grade, Feedback: "x"})
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("status transitions restricted to the enum", func(t *testing.T) {
		err := service.UpdateEntryStatus(&models.StatusRequest{EntryID: entryID, Status: "archived"})
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)

		require.NoError(t, service.UpdateEntryStatus(&models.StatusRequest{
			EntryID: entryID,
			Status:  models.StatusSubmitted,
		}))
	})
}

func TestTeacherAuthFlows(t *testing.T) {
	service, cleanup := newTestService(t, &fakeDirectory{})
	defer cleanup()

	signup := &models.SignupRequest{
		Username: "dr.smith",
		Email:    "smith@clinic.edu",
		Password: "super-secret",
	}
	require.NoError(t, service.SignupTeacher(signup))

	t.Run("duplicate email rejected", func(t *testing.T) {
		assert.ErrorIs(t, service.SignupTeacher(signup), ErrEmailInUse)
	})

	t.Run("login issues a teacher token", func(t *testing.T) {
		token, teacher, err := service.LoginTeacher(&models.LoginRequest{
			Email:    "smith@clinic.edu",
			Password: "super-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "dr.smith", teacher.Username)

		claims, err := service.Auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, RoleTeacher, claims.Role)
		assert.Equal(t, "smith@clinic.edu", claims.Email)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, errWrongPassword := service.LoginTeacher(&models.LoginRequest{
			Email:    "smith@clinic.edu",
			Password: "nope-nope-nope",
		})
		_, _, errUnknownEmail := service.LoginTeacher(&models.LoginRequest{
			Email:    "ghost@clinic.edu",
			Password: "whatever-pass",
		})
		assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})
}

func TestCourseEntriesForTeacher(t *testing.T) {
	directory := &fakeDirectory{courses: []moodle.Course{
		{ID: 12, FullName: "Intro To Surgery", ShortName: "ITS"},
	}}
	service, cleanup := newTestService(t, directory)
	defer cleanup()

	seedStudent(t, service, 501)
	_, err := service.CreateEntry(context.Background(), validEntryRequest(501, 12))
	require.NoError(t, err)

	require.NoError(t, service.SignupTeacher(&models.SignupRequest{
		Username: "dr.smith",
		Email:    "smith@clinic.edu",
		Password: "super-secret",
	}))
	teacher, err := service.Store.GetTeacherByEmail("smith@clinic.edu")
	require.NoError(t, err)

	t.Run("unassigned teacher is rejected", func(t *testing.T) {
		_, err := service.CourseEntriesForTeacher("smith@clinic.edu", 12)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("assigned teacher sees the review queue", func(t *testing.T) {
		require.NoError(t, service.AssignCourse(context.Background(), &models.AssignCourseRequest{
			TeacherID: teacher.ID,
			CourseID:  12,
		}))

		entries, err := service.CourseEntriesForTeacher("smith@clinic.edu", 12)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := service.CourseEntriesForTeacher("ghost@clinic.edu", 12)
		assert.ErrorIs(t, err, ErrTeacherNotFound)
	})
}

func TestSyncCourses(t *testing.T) {
	directory := &fakeDirectory{courses: []moodle.Course{
		{ID: 12, FullName: "Intro To Surgery", ShortName: "ITS"},
		{ID: 13, FullName: "Oral Pathology", ShortName: "OP"},
	}}
	service, cleanup := newTestService(t, directory)
	defer cleanup()

	courses, err := service.SyncCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	// a second sync upserts the same rows without duplication
	courses, err = service.SyncCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}
