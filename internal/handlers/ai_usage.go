package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rentfolio/rentfolio/internal/middleware"
	"github.com/rentfolio/rentfolio/internal/services"
	"github.com/rentfolio/rentfolio/pkg/response"
	"gorm.io/gorm"
)

// AIUsageHandler provides endpoints for completion usage statistics.
type AIUsageHandler struct {
	usageService *services.AIUsageService
}

func NewAIUsageHandler(db *gorm.DB) *AIUsageHandler {
	return &AIUsageHandler{
		usageService: services.NewAIUsageService(db),
	}
}

// GetStats returns aggregated usage for the tenant.
// GET /api/ai-usage/stats
func (h *AIUsageHandler) GetStats(c *gin.Context) {
	stats, err := h.usageService.GetStats(
		middleware.GetTenantID(c),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		response.ServerError(c, "failed to get usage stats: "+err.Error())
		return
	}
	response.Success(c, stats)
}

// GetDailyTrend returns per-day usage for charting.
// GET /api/ai-usage/trend
func (h *AIUsageHandler) GetDailyTrend(c *gin.Context) {
	trend, err := h.usageService.GetDailyTrend(
		middleware.GetTenantID(c),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		response.ServerError(c, "failed to get usage trend: "+err.Error())
		return
	}
	response.Success(c, gin.H{"trend": trend})
}
