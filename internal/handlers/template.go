package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rentfolio/rentfolio/internal/middleware"
	"github.com/rentfolio/rentfolio/internal/services"
	"github.com/rentfolio/rentfolio/internal/templates"
	"github.com/rentfolio/rentfolio/pkg/response"
	"gorm.io/gorm"
)

// TemplateHandler exposes the preview, validation, and lifecycle endpoints
// for tenant template configurations.
type TemplateHandler struct {
	previewService *services.PreviewService
	attemptService *services.ValidationAttemptService
}

func NewTemplateHandler(preview *services.PreviewService, attempts *services.ValidationAttemptService) *TemplateHandler {
	return &TemplateHandler{
		previewService: preview,
		attemptService: attempts,
	}
}

type previewRequest struct {
	Category      string            `json:"category" binding:"required"`
	Content       string            `json:"content" binding:"required"`
	FieldMappings map[string]string `json:"field_mappings"`
}

// Preview validates a template and renders it with the tenant's most
// recent records.
// POST /api/templates/preview
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.previewService.GeneratePreview(
		c.Request.Context(),
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(req.Category),
		req.Content,
		req.FieldMappings,
	)
	if err != nil {
		templateError(c, err)
		return
	}

	// Previews must never execute; the sandbox headers apply when the
	// client renders the returned HTML in a frame.
	c.Header("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	response.Success(c, result)
}

type validateRequest struct {
	Category string `json:"category" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// Validate runs static validation without rendering a preview.
// POST /api/templates/validate
func (h *TemplateHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.previewService.Validate(
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(req.Category),
		req.Content,
	)
	if err != nil {
		templateError(c, err)
		return
	}

	response.Success(c, result)
}

type approveRequest struct {
	Category      string            `json:"category" binding:"required"`
	Content       string            `json:"content" binding:"required"`
	FieldMappings map[string]string `json:"field_mappings"`
	Notes         string            `json:"notes"`
}

// Approve activates a validated template as the new version.
// POST /api/templates/approve
func (h *TemplateHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.previewService.Approve(
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(req.Category),
		req.Content,
		req.FieldMappings,
		req.Notes,
	)
	if err != nil {
		templateError(c, err)
		return
	}

	response.Created(c, result)
}

type rejectRequest struct {
	Category string `json:"category" binding:"required"`
	Reason   string `json:"reason"`
}

// Reject records a rejection decision without changing configuration.
// POST /api/templates/reject
func (h *TemplateHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.previewService.Reject(
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(req.Category),
		req.Reason,
	); err != nil {
		templateError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "rejection recorded"})
}

// Rollback reactivates the previous version of a category's template.
// POST /api/templates/:category/rollback
func (h *TemplateHandler) Rollback(c *gin.Context) {
	result, err := h.previewService.Rollback(
		middleware.GetTenantID(c),
		middleware.GetUsername(c),
		templates.Category(c.Param("category")),
	)
	if err != nil {
		templateError(c, err)
		return
	}

	response.Success(c, result)
}

// ListConfigs returns every configuration row for the tenant.
// GET /api/templates/configs
func (h *TemplateHandler) ListConfigs(c *gin.Context) {
	configs, err := h.previewService.ListConfigs(middleware.GetTenantID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"configs": configs})
}

// History returns all versions for one category, newest first.
// GET /api/templates/:category/history
func (h *TemplateHandler) History(c *gin.Context) {
	configs, err := h.previewService.History(
		middleware.GetTenantID(c),
		templates.Category(c.Param("category")),
	)
	if err != nil {
		templateError(c, err)
		return
	}
	response.Success(c, gin.H{"versions": configs})
}

// ActiveConfig returns the currently active configuration for a category.
// GET /api/templates/:category/active
func (h *TemplateHandler) ActiveConfig(c *gin.Context) {
	config, err := h.previewService.ActiveConfig(
		middleware.GetTenantID(c),
		templates.Category(c.Param("category")),
	)
	if err != nil {
		templateError(c, err)
		return
	}
	response.Success(c, config)
}

// ListAttempts returns the tenant's validation attempt log.
// GET /api/templates/validation-attempts
func (h *TemplateHandler) ListAttempts(c *gin.Context) {
	var req services.ValidationAttemptListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.TenantID = middleware.GetTenantID(c)

	resp, err := h.attemptService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// templateError maps domain errors to HTTP responses.
func templateError(c *gin.Context, err error) {
	var unknownCategory *templates.UnknownCategoryError
	switch {
	case errors.As(err, &unknownCategory):
		response.Error(c, response.NewBadRequest(err.Error()))
	case errors.Is(err, services.ErrApprovalRejected):
		response.Error(c, response.NewUnprocessable(err.Error()))
	case errors.Is(err, services.ErrVersionConflict):
		response.Error(c, response.NewConflict(err.Error()))
	case errors.Is(err, services.ErrNoPreviousVersion):
		response.Error(c, response.NewConflict(err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "no active template configuration")
	default:
		response.ServerError(c, err.Error())
	}
}
