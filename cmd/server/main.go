/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave management server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment, apply command-line overrides
  2. Configure logging
  3. Open the store (SQLite or PostgreSQL)
  4. Load the leave policy
  5. Wire holidays, notifications, leave, auth and reports
  6. Optionally seed demo data
  7. Start the holiday sync scheduler and the HTTP server

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the holiday scheduler
  4. Wait for queued notification emails
  5. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Run against PostgreSQL
  DB_DRIVER=postgres DATABASE_URL=postgres://... ./server

ENVIRONMENT:
  See config/config.go for every key. JWT_SECRET is required.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment keys
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/holidays"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/notify"
	"github.com/warp/leave-engine/store/postgres"
	"github.com/warp/leave-engine/store/sqlite"
)

// appStore is what both database backends provide.
type appStore interface {
	leave.TxStore
	leave.HolidayStore
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	// Flags override env
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := newLogger(cfg)

	// Initialize store
	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.DBDriver).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Leave policy
	pf := factory.NewPolicyFactory()
	policy := pf.Default()
	if cfg.LeavePolicyFile != "" {
		if policy, err = pf.LoadFile(cfg.LeavePolicyFile); err != nil {
			log.WithError(err).WithField("file", cfg.LeavePolicyFile).Fatal("failed to load leave policy")
		}
	}
	if cfg.HolidayCountry != "" {
		policy.HolidayCountry = cfg.HolidayCountry
	}

	// Holidays
	holidaySvc := holidays.NewService(store, holidays.NewCalendarLookup(), policy.HolidayCountry)
	holidaySvc.Log = log.WithField("component", "holidays")
	if !holidays.Supports(holidaySvc.Lookup, policy.HolidayCountry) {
		log.WithField("country", policy.HolidayCountry).Info("no holiday calendar for policy country, holidays are entered by hand")
	}
	scheduler := holidays.NewScheduler(holidaySvc, cfg.HolidaySyncCountries)
	scheduler.CheckInterval = cfg.HolidaySyncInterval
	scheduler.Log = log.WithField("component", "holiday-scheduler")

	// Notifications
	mailer := notify.NewMailer(cfg.SMTP, log.WithField("component", "mailer"))
	notifier, err := notify.New(store, mailer, cfg.FrontendURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize notifications")
	}
	notifier.Log = log.WithField("component", "notify")

	// Leave, auth, handler
	leaveSvc := leave.NewService(store, holidaySvc, notifier, policy)
	leaveSvc.Log = log.WithField("component", "leave")
	authSvc := auth.NewService(leaveSvc, auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL))

	handler := api.NewHandler(leaveSvc, authSvc, holidaySvc, notifier)
	handler.PolicyFactory = pf
	handler.Ping = store.Ping
	handler.Log = log.WithField("component", "api")

	if cfg.SeedDemo {
		seeded, err := api.SeedDemo(context.Background(), handler)
		if err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
		if !seeded {
			log.Info("store not empty, demo seed skipped")
		}
	}

	router := api.NewRouter(handler, api.RouterConfig{CORSOrigins: cfg.CORSOrigins})

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"driver":  cfg.DBDriver,
			"country": policy.HolidayCountry,
			"smtp":    cfg.SMTP.Enabled,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	scheduler.Stop()
	notifier.Close()

	log.Info("server stopped")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func openStore(cfg config.Config) (appStore, error) {
	if cfg.DBDriver == "postgres" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
