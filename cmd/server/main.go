package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/SamEvrald/logbook-app/internal/app"
	"github.com/SamEvrald/logbook-app/internal/handlers"
)

func main() {
	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	mw := handlers.NewMiddleware(service.Auth)
	entryHandler := handlers.NewEntryHandler(service)
	teacherHandler := handlers.NewTeacherHandler(service)
	adminHandler := handlers.NewAdminHandler(service)

	http.HandleFunc("POST /api/v1/entries", mw.Authenticate(entryHandler.Create))
	http.HandleFunc("GET /api/v1/entries/student/{moodleID}", mw.Authenticate(entryHandler.StudentEntries))
	http.HandleFunc("GET /api/v1/entries/course/{courseID}",
		mw.Authenticate(mw.RequireRole(app.RoleTeacher, entryHandler.CourseEntries)))
	http.HandleFunc("POST /api/v1/entries/grade",
		mw.Authenticate(mw.RequireRole(app.RoleTeacher, entryHandler.Grade)))
	http.HandleFunc("POST /api/v1/entries/status", mw.Authenticate(entryHandler.UpdateStatus))

	http.HandleFunc("POST /api/v1/teachers/signup", teacherHandler.Signup)
	http.HandleFunc("POST /api/v1/teachers/login", teacherHandler.Login)
	http.HandleFunc("POST /api/v1/teachers/logout", mw.Authenticate(teacherHandler.Logout))
	http.HandleFunc("GET /api/v1/teachers/{email}/courses",
		mw.Authenticate(mw.RequireRole(app.RoleTeacher, teacherHandler.Courses)))

	http.HandleFunc("POST /api/v1/admin/signup", adminHandler.Signup)
	http.HandleFunc("POST /api/v1/admin/login", adminHandler.Login)
	http.HandleFunc("POST /api/v1/admin/logout", mw.Authenticate(teacherHandler.Logout))
	http.HandleFunc("GET /api/v1/admin/courses",
		mw.Authenticate(mw.RequireRole(app.RoleAdmin, adminHandler.Courses)))
	http.HandleFunc("GET /api/v1/admin/teachers",
		mw.Authenticate(mw.RequireRole(app.RoleAdmin, adminHandler.Teachers)))
	http.HandleFunc("GET /api/v1/admin/teachers-with-courses",
		mw.Authenticate(mw.RequireRole(app.RoleAdmin, adminHandler.TeachersWithCourses)))
	http.HandleFunc("POST /api/v1/admin/assign-course",
		mw.Authenticate(mw.RequireRole(app.RoleAdmin, adminHandler.AssignCourse)))

	http.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting logbook server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Logbook server failed: %v", err)
	}
}
