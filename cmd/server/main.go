package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/authstarter/internal/config"
	"github.com/authstarter/internal/db"
	"github.com/authstarter/internal/http"
	"github.com/authstarter/internal/jobs"
	"github.com/authstarter/internal/logger"
	"github.com/authstarter/internal/service"
)

const usage = `usage: server [command]

commands:
  serve              run the HTTP server (default)
  migrate up         apply pending migrations
  migrate status     list migrations and whether they are applied`

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Optional; the environment alone is enough
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.InitLogger(cfg.Environment, cfg.JSONLogs())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	switch {
	case len(args) == 0 || args[0] == "serve":
		err = serve(ctx, cfg, appLogger)
	case args[0] == "migrate" && len(args) == 2 && args[1] == "up":
		err = migrateUp(ctx, cfg, appLogger)
	case args[0] == "migrate" && len(args) == 2 && args[1] == "status":
		err = migrateStatus(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		appLogger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	appLogger.Info("starting server",
		"environment", cfg.Environment,
		"address", cfg.ServerAddress,
		"auth_path", cfg.Auth.APIPath,
		"database", cfg.DatabasePath,
		"cors_origins", cfg.CORS.AllowedOrigins,
	)

	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	accounts := service.NewAccountService(database, database, cfg, appLogger)

	sweeper, err := jobs.NewSessionSweeper(accounts, cfg.Auth.SweepSchedule, appLogger)
	if err != nil {
		return err
	}
	// Run returns early on listen errors, so the sweeper gets its own cancel
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	sweeperDone := make(chan error, 1)
	go func() {
		sweeperDone <- sweeper.Start(sweepCtx)
	}()

	server := http.NewServer(cfg, accounts, appLogger)
	runErr := server.Run(ctx)

	cancelSweep()
	if err := <-sweeperDone; err != nil {
		appLogger.Warn("session sweeper stopped with error", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("run server: %w", runErr)
	}

	appLogger.Info("server stopped")
	return nil
}

func migrateUp(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		appLogger.Info("database is up to date", "path", database.GetDBPath())
		return nil
	}
	appLogger.Info("migrations applied", "versions", applied, "path", database.GetDBPath())
	return nil
}

func migrateStatus(ctx context.Context, cfg *config.Config) error {
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	states, err := database.MigrationStatus(ctx)
	if err != nil {
		return err
	}
	for _, s := range states {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%05d  %-8s %s\n", s.Version, state, s.Path)
	}
	return nil
}
