package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/timetable/internal/config"
	"github.com/crucial707/timetable/internal/db"
	"github.com/crucial707/timetable/internal/logger"
	"github.com/crucial707/timetable/internal/repo"
	"github.com/crucial707/timetable/internal/scheduler"
)

func main() {

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	database, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()
	log.Info("connected to the database")

	// Schema is owned by the embedded migrations
	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Background stats job
	if cfg.StatsCron != "" {
		go func() {
			if err := scheduler.Run(ctx, cfg.StatsCron, repo.NewStatsRepo(database), log); err != nil {
				log.WithError(err).Error("stats scheduler not started")
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown")
		}
	}()

	// Start server LAST
	log.WithField("port", cfg.Port).Info("starting server")
	if cfg.TLSCertFile != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
