package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	_ "github.com/lib/pq"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/config"
	"github.com/vanchuyen/driver-gateway/internal/db"
	httphandler "github.com/vanchuyen/driver-gateway/internal/http"
	"github.com/vanchuyen/driver-gateway/internal/http/handlers"
	"github.com/vanchuyen/driver-gateway/internal/observability"
	"github.com/vanchuyen/driver-gateway/internal/repo"
)

func main() {
	// .env from CWD so it works from the repo root (env vars override)
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger()
	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		log.Fatalf("Failed to init error reporting: %v", err)
	}
	defer observability.FlushSentry()

	ctx := context.Background()

	// Without DATABASE_URL the seeded in-memory directory serves dev mode.
	var drivers repo.DriverRepo
	if cfg.DatabaseURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()
		logger.Info("database connected", map[string]any{"dsn": db.RedactDSN(cfg.DatabaseURL)})

		if err := runMigrations(database); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		drivers = repo.NewPostgresDriverRepo(database)
	} else {
		logger.Info("no DATABASE_URL, using seeded in-memory directory", nil)
		drivers = repo.NewSeededDriverRepo()
	}

	rate := auth.NewRateLimiter(cfg.RateWindow, cfg.RateCapacity)
	lockout := auth.NewLockoutTracker(cfg.FailWindow, cfg.MaxFails)
	otp := auth.NewOtpSessionStore(auth.OtpConfig{
		TTL:            cfg.OTPTTL,
		MaxAttempts:    cfg.OTPMaxAttempts,
		LockDuration:   cfg.OTPLockDuration,
		ResendMax:      cfg.ResendMax,
		ResendCooldown: cfg.ResendCooldown,
		Salt:           cfg.OTPSalt,
		DevMode:        cfg.DevMode,
	})
	tokens := auth.NewTokenStore(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	svc := auth.NewService(drivers, rate, lockout, otp, tokens)
	svc.SetReporter(func(err error) {
		logger.Error("internal fault", map[string]any{"error": err.Error()})
		observability.CaptureError(err)
	})

	authHandler := handlers.NewAuthHandler(svc, logger)
	router := httphandler.NewRouter(authHandler, svc, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", map[string]any{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("server exited", nil)
}

// runMigrations runs database migrations using goose.
func runMigrations(database *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from the repo root)")
	}

	absDir, _ := filepath.Abs(migrationDir)
	log.Printf("Running migrations from %s", absDir)

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
