package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/crucial707/timetable/internal/auth"
	"github.com/crucial707/timetable/internal/config"
	"github.com/crucial707/timetable/internal/handlers"
	"github.com/crucial707/timetable/internal/middleware"
	"github.com/crucial707/timetable/internal/repo"
	"github.com/crucial707/timetable/internal/service"
)

func newRouter(db *sql.DB, cfg config.Config, log *logrus.Logger) http.Handler {
	// ==========================
	// Repos, services, handlers
	// ==========================
	userRepo := repo.NewUserRepo(db)
	scheduleRepo := repo.NewScheduleRepo(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)
	directory := service.NewDirectory(userRepo, scheduleRepo, auth.NewBcryptHasher(), tokens, log)
	engine := service.NewScheduleEngine(userRepo, scheduleRepo, cfg.MaxPeriodLimit, log)

	authHandler := &handlers.AuthHandler{Directory: directory}
	profileHandler := &handlers.ProfileHandler{Directory: directory}
	scheduleHandler := &handlers.ScheduleHandler{Engine: engine}

	// ==========================
	// Router
	// ==========================
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONOK(w, http.StatusOK, "ok", nil)
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			log.WithError(err).Warn("readiness check failed")
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		handlers.JSONOK(w, http.StatusOK, "ready", nil)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth routes, rate limited per client IP
	limiter := middleware.AuthRateLimiter(cfg.TrustProxy)
	r.Route("/auth", func(r chi.Router) {
		r.With(limiter.Middleware).Post("/register", authHandler.Register)
		r.With(limiter.Middleware).Post("/login", authHandler.Login)
		r.With(limiter.Middleware, middleware.JWTMiddleware(tokens)).Delete("/account", authHandler.Deregister)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(tokens))

		r.Get("/profile", profileHandler.GetProfile)
		r.Patch("/profile", profileHandler.PatchProfile)

		r.Post("/schedule", scheduleHandler.CreateEntry)
		r.Get("/schedule", scheduleHandler.ListEntries)
		r.Patch("/schedule", scheduleHandler.PatchEntries)
	})

	return r
}
