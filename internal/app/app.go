package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/labworks/tracker/internal/config"
	"github.com/labworks/tracker/internal/db"
	"github.com/labworks/tracker/internal/polish"
	"github.com/labworks/tracker/internal/repository"
	"github.com/labworks/tracker/internal/service"
	"github.com/labworks/tracker/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Users           repository.UserRepository
	AuthService     *service.AuthService
	GoalService     *service.GoalService
	ActivityService *service.ActivityService
	ExportService   *service.ExportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := NewWithDB(ctx, cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB wires repositories and services over an already migrated
// database.
func NewWithDB(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	activityRepository := repository.NewActivityRepository(database)

	// Export storage is optional
	var exportStorage storage.Storage
	if cfg.ExportStorageEnabled() {
		s3Storage, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		exportStorage = s3Storage
	}

	polisher := polish.New(polish.Config{
		APIKey:     cfg.GroqAPIKey,
		BaseURL:    cfg.GroqBaseURL,
		Model:      cfg.GroqModel,
		Timeout:    cfg.PolishTimeout,
		MaxRetries: cfg.PolishMaxRetries,
	})
	if !cfg.PolishEnabled() {
		slog.Warn("GROQ_API_KEY not set, text polishing disabled")
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)
	goalService := service.NewGoalService(goalRepository)
	activityService := service.NewActivityService(activityRepository, goalRepository, polisher)
	exportService := service.NewExportService(goalService, activityService, userRepository, exportStorage)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Users:           userRepository,
		AuthService:     authService,
		GoalService:     goalService,
		ActivityService: activityService,
		ExportService:   exportService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
