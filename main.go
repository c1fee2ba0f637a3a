package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsdesk/internal/account"
	"opsdesk/internal/assignment"
	"opsdesk/internal/audit"
	"opsdesk/internal/config"
	"opsdesk/internal/dashboard"
	"opsdesk/internal/database"
	"opsdesk/internal/lead"
	"opsdesk/internal/middleware"
	"opsdesk/internal/order"
	"opsdesk/internal/ratelimit"
	"opsdesk/internal/storage"
	"opsdesk/internal/telemetry"
	"opsdesk/internal/user"
	"opsdesk/internal/validator"
	"opsdesk/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Println("Received signal:", sig)
		cancel()
	}()

	cfg := config.NewConfig()

	// Set up telemetry and logging
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to shutdown telemetry:", err)
		}
	}()

	logger := tel.Logger()

	// Set up Postgres connection
	db := database.NewDatabase()
	if err := db.Connect(ctx, cfg.Database.DSN()); err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return err
	}
	defer db.Close()

	// Set up Redis for rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	limiter := ratelimit.NewLimiter(redisClient)

	// Set up S3 storage for attachments
	s3Storage, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		return err
	}

	// Set up session store backed by Postgres
	sessionStorage := postgres.New(postgres.Config{
		ConnectionURI: cfg.Database.URL(),
		Table:         "tbl_session",
		Reset:         false,
	})
	sessionStore := session.New(session.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == config.EnvironmentProduction,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Session.Expiration,
	})

	// Managers
	auditor := audit.NewAuditor(logger, &db)
	accountManager := account.NewManager(logger, &db, limiter, &auditor)
	userManager := user.NewManager(logger, &db, &auditor)
	leadManager := lead.NewManager(logger, &db, &auditor)
	orderManager := order.NewManager(logger, &db, &auditor)
	dashboardManager := dashboard.NewManager(logger, &db)
	assignmentManager := assignment.NewManager(logger, &db, 0)

	// Warm the in-memory assignment index before serving traffic.
	if err := assignmentManager.LoadAll(ctx); err != nil {
		logger.Error("Failed to load assignments", "error", err)
		return err
	}

	handler := web.NewHandler(web.HandlerParams{
		Logger:       logger,
		SessionStore: sessionStore,
		Validator:    validator.New(),
		DB:           &db,
		Accounts:     accountManager,
		Users:        userManager,
		Leads:        leadManager,
		Orders:       orderManager,
		Dashboards:   dashboardManager,
		Assignments:  assignmentManager,
		Storage:      s3Storage,
		Limiter:      limiter,
		Auditor:      &auditor,
	})

	// Set up Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(middleware.Logger(logger))
	if tel.IsEnabled() {
		app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName))
	}

	handler.RegisterRoutes(app, sessionStore)

	// Serve until the context is cancelled
	errChan := make(chan error, 1)
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Starting server", "addr", addr, "environment", cfg.Server.Environment)
		errChan <- app.Listen(addr)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
