package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rentfolio/rentfolio/internal/middleware"
	"github.com/rentfolio/rentfolio/internal/services"
	"github.com/rentfolio/rentfolio/internal/templates"
	"github.com/rentfolio/rentfolio/pkg/response"
)

// RepairHandler exposes the AI-assisted repair endpoints.
type RepairHandler struct {
	repairService *services.RepairService
}

func NewRepairHandler(repair *services.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repair}
}

type suggestRequest struct {
	Category string            `json:"category" binding:"required"`
	Content  string            `json:"content" binding:"required"`
	Issues   []templates.Issue `json:"issues" binding:"required"`
}

// SuggestFixes asks the completion service for repair suggestions.
// POST /api/templates/ai-help
func (h *RepairHandler) SuggestFixes(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bundle, err := h.repairService.SuggestFixes(
		c.Request.Context(),
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(req.Category),
		req.Content,
		req.Issues,
	)
	if err != nil {
		var unknownCategory *templates.UnknownCategoryError
		if errors.As(err, &unknownCategory) {
			response.Error(c, response.NewBadRequest(err.Error()))
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, bundle)
}

type applyFixesRequest struct {
	Content  string                   `json:"content" binding:"required"`
	Fixes    []services.FixSuggestion `json:"fixes" binding:"required"`
	Selected []int                    `json:"selected" binding:"required"`
}

// ApplyFixes applies the explicitly selected auto-fixable suggestions and
// returns the updated content. Nothing is validated or persisted here;
// callers re-run validation on the result.
// POST /api/templates/apply-ai-fixes
func (h *RepairHandler) ApplyFixes(c *gin.Context) {
	var req applyFixesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	content, applied := services.ApplyFixes(req.Content, req.Fixes, req.Selected)
	response.Success(c, gin.H{
		"content": content,
		"applied": applied,
	})
}
