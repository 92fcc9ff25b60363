package services

import (
	"time"

	"github.com/rentfolio/rentfolio/internal/models"
	"gorm.io/gorm"
)

// ValidationAttemptService reads the append-only validation attempt log.
// Rows are written by PreviewService; this service only queries and
// expires them.
type ValidationAttemptService struct {
	db *gorm.DB
}

func NewValidationAttemptService(db *gorm.DB) *ValidationAttemptService {
	return &ValidationAttemptService{db: db}
}

type ValidationAttemptListRequest struct {
	TenantID string `form:"-"`
	Category string `form:"category"`
	Valid    *bool  `form:"valid"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ValidationAttemptListResponse struct {
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Attempts []models.ValidationAttempt `json:"attempts"`
}

// List returns a tenant's validation attempts, newest first.
func (s *ValidationAttemptService) List(req *ValidationAttemptListRequest) (*ValidationAttemptListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.ValidationAttempt{}).Where("tenant_id = ?", req.TenantID)
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Valid != nil {
		query = query.Where("valid = ?", *req.Valid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var attempts []models.ValidationAttempt
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&attempts).Error; err != nil {
		return nil, err
	}

	return &ValidationAttemptListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Attempts: attempts,
	}, nil
}

// CleanupBefore deletes attempts older than the given time.
func (s *ValidationAttemptService) CleanupBefore(before time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", before).Delete(&models.ValidationAttempt{})
	return result.RowsAffected, result.Error
}
