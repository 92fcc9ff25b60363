package main

import (
	"github.com/rentfolio/rentfolio/internal/config"
	"github.com/rentfolio/rentfolio/internal/handlers"
	"github.com/rentfolio/rentfolio/internal/models"
	"github.com/rentfolio/rentfolio/internal/services"
	"github.com/rentfolio/rentfolio/internal/utils"
	"github.com/rentfolio/rentfolio/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	retentionService *services.RetentionService
	authHandler      *handlers.AuthHandler
	templateHandler  *handlers.TemplateHandler
	repairHandler    *handlers.RepairHandler
}

// bootstrap wires the database, services, and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	services.InitSystemLogger(db)

	store, err := services.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatalf("Failed to initialize template storage: %v", err)
	}

	sampleService := services.NewSampleDataService(db, cfg.Sample.Timeout)
	previewService := services.NewPreviewService(db, store, sampleService)
	attemptService := services.NewValidationAttemptService(db)

	usageService := services.NewAIUsageService(db)
	completionClient := services.NewCompletionClient(&cfg.Completion)
	repairService := services.NewRepairService(completionClient, usageService, &cfg.Completion)

	retentionService := services.NewRetentionService(
		&cfg.Retention,
		attemptService,
		usageService,
		services.NewSystemLogService(db),
	)
	retentionService.StartScheduler()

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		retentionService: retentionService,
		authHandler:      authHandler,
		templateHandler:  handlers.NewTemplateHandler(previewService, attemptService),
		repairHandler:    handlers.NewRepairHandler(repairService),
	}
}

// shutdown stops background schedulers.
func (s *appServices) shutdown() {
	s.retentionService.StopScheduler()
	logger.Info().Msg("All schedulers stopped")
}
