package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rentfolio/rentfolio/internal/config"
	"github.com/rentfolio/rentfolio/internal/handlers"
	"github.com/rentfolio/rentfolio/internal/middleware"
	"github.com/rentfolio/rentfolio/internal/models"
	"github.com/rentfolio/rentfolio/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for completion-backed routes
	helpLimiter := middleware.NewRateLimiter(cfg.Completion.HelpRPS, cfg.Completion.HelpBurst)

	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Template preview and validation
			protected.POST("/templates/preview", svc.templateHandler.Preview)
			protected.POST("/templates/validate", svc.templateHandler.Validate)
			protected.GET("/templates/configs", svc.templateHandler.ListConfigs)
			protected.GET("/templates/validation-attempts", svc.templateHandler.ListAttempts)
			protected.GET("/templates/:category/history", svc.templateHandler.History)
			protected.GET("/templates/:category/active", svc.templateHandler.ActiveConfig)

			// AI repair (rate limited per IP)
			help := protected.Group("", helpLimiter.Middleware())
			{
				help.POST("/templates/ai-help", svc.repairHandler.SuggestFixes)
				help.POST("/templates/apply-ai-fixes", svc.repairHandler.ApplyFixes)
			}

			// Usage statistics
			usageHandler := handlers.NewAIUsageHandler(models.GetDB())
			protected.GET("/ai-usage/stats", usageHandler.GetStats)
			protected.GET("/ai-usage/trend", usageHandler.GetDailyTrend)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.POST("/templates/approve", svc.templateHandler.Approve)
			admin.POST("/templates/reject", svc.templateHandler.Reject)
			admin.POST("/templates/:category/rollback", svc.templateHandler.Rollback)

			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
		}
	}
}
