package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campushr/internal/domain/attendance"
	"campushr/internal/domain/auth"
	"campushr/internal/domain/leave"
	"campushr/internal/domain/notifications"
	"campushr/internal/platform/config"
	"campushr/internal/platform/db"
	"campushr/internal/platform/email"
	"campushr/internal/platform/metrics"
	attendancehandler "campushr/internal/transport/http/handlers/attendance"
	authhandler "campushr/internal/transport/http/handlers/auth"
	leavehandler "campushr/internal/transport/http/handlers/leave"
	notificationshandler "campushr/internal/transport/http/handlers/notifications"
	"campushr/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
}

// New connects the database, runs migrations and seeding when enabled, and
// assembles the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, DB: pool}
	app.Router = buildRouter(cfg, pool)
	return app, nil
}

func buildRouter(cfg config.Config, pool *db.Pool) http.Handler {
	authStore := auth.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		leaveStore.Observe = m.ObserveQuery
		attendanceStore.Observe = m.ObserveQuery
	}

	notificationsSvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	leaveSvc := leave.NewService(leaveStore, notificationsSvc)
	attendanceSvc := attendance.NewService(attendanceStore, cfg.NormalWorkingHours, cfg.OvertimeMultiplier, cfg.AutoCheckoutHours)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if cfg.RequestLogEnabled {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(1 << 20))
	router.Use(middleware.Auth(cfg.JWTSecret))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, authStore, m).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationsSvc, authStore).RegisterRoutes(r)
	})

	return router
}

// Run blocks serving HTTP until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
