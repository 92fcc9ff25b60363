package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rentfolio/rentfolio/internal/models"
	"github.com/rentfolio/rentfolio/internal/templates"
	"github.com/rentfolio/rentfolio/pkg/logger"
	"gorm.io/gorm"
)

var (
	// ErrApprovalRejected means the latest validation for the submitted
	// content is not valid (or validation was never run).
	ErrApprovalRejected = errors.New("approval rejected: content has no valid validation result")
	// ErrVersionConflict means a concurrent approval won the race for the
	// same (tenant, category).
	ErrVersionConflict = errors.New("version conflict: template configuration changed concurrently")
	// ErrNoPreviousVersion means rollback was requested but the active
	// version has no recorded predecessor.
	ErrNoPreviousVersion = errors.New("no previous version available for rollback")
)

// PreviewService composes the validator, sample data provider and renderer,
// and owns the template configuration lifecycle.
type PreviewService struct {
	db      *gorm.DB
	store   *FileStore
	samples *SampleDataService
}

func NewPreviewService(db *gorm.DB, store *FileStore, samples *SampleDataService) *PreviewService {
	return &PreviewService{db: db, store: store, samples: samples}
}

// SampleInfo reports where preview data came from.
type SampleInfo struct {
	Source      string `json:"source"` // database, placeholder
	RecordCount int64  `json:"record_count"`
}

// PreviewResult is the combined outcome of one preview call.
type PreviewResult struct {
	Validation  *templates.ValidationResult `json:"validation"`
	PreviewHTML string                      `json:"preview_html"`
	Sample      *SampleInfo                 `json:"sample_data"`
	Active      *models.TemplateConfig      `json:"active_config,omitempty"`
}

// ApprovalResult identifies the newly activated template version.
type ApprovalResult struct {
	TemplateID uint   `json:"template_id"`
	FileID     string `json:"file_id"`
	Version    int    `json:"version"`
}

// Validate runs static validation only and records an immutable
// validation attempt. Cheaper than GeneratePreview: no sample fetch, no
// render.
func (s *PreviewService) Validate(tenantID, actor string, category templates.Category, content string) (*templates.ValidationResult, error) {
	result, err := templates.Validate(category, content)
	if err != nil {
		return nil, err
	}
	s.recordAttempt(tenantID, actor, category, content, result)
	return result, nil
}

// GeneratePreview validates the content and, regardless of validity,
// attempts a best-effort rendered preview so the administrator can see the
// output even for an invalid template. A rendering problem downgrades to an
// empty preview; it never blocks returning validation results.
func (s *PreviewService) GeneratePreview(ctx context.Context, tenantID, actor string, category templates.Category, content string, mappings map[string]string) (*PreviewResult, error) {
	def, err := templates.Lookup(category)
	if err != nil {
		return nil, err
	}

	validation, err := templates.Validate(category, content)
	if err != nil {
		return nil, err
	}
	s.recordAttempt(tenantID, actor, category, content, validation)

	sample := s.samples.Fetch(ctx, tenantID, category)

	previewHTML := func() (html string) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[Preview] render panic for tenant=%s category=%s: %v", tenantID, category, r)
				html = ""
			}
		}()
		return templates.Render(content, def, sample, mappings)
	}()

	result := &PreviewResult{
		Validation:  validation,
		PreviewHTML: previewHTML,
		Sample:      &SampleInfo{Source: sample.Source, RecordCount: sample.RecordCount},
	}

	if active, err := s.ActiveConfig(tenantID, category); err == nil {
		result.Active = active
	}

	return result, nil
}

// Approve activates a new template version. It refuses content whose most
// recent validation is not valid (re-validating defensively when no result
// is on record), then archives the current active row and creates the new
// one inside a single transaction guarded by an optimistic version check.
// Concurrent approvals for the same (tenant, category): exactly one wins,
// the loser gets ErrVersionConflict.
func (s *PreviewService) Approve(tenantID, approver string, category templates.Category, content string, mappings map[string]string, notes string) (*ApprovalResult, error) {
	if _, err := templates.Lookup(category); err != nil {
		return nil, err
	}

	hash := hashContent(content)

	var attempt models.ValidationAttempt
	err := s.db.Where("tenant_id = ? AND category = ? AND content_hash = ?", tenantID, string(category), hash).
		Order("created_at DESC").First(&attempt).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No validation on record for this exact content; validate now.
		result, verr := s.Validate(tenantID, approver, category, content)
		if verr != nil {
			return nil, verr
		}
		if !result.Valid {
			return nil, ErrApprovalRejected
		}
	case err != nil:
		return nil, err
	case !attempt.Valid:
		return nil, ErrApprovalRejected
	}

	mappingsJSON := ""
	if len(mappings) > 0 {
		if b, merr := json.Marshal(mappings); merr == nil {
			mappingsJSON = string(b)
		}
	}

	fileID, err := s.store.Put(content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newConfig := models.TemplateConfig{
		TenantID:      tenantID,
		Category:      string(category),
		FileID:        fileID,
		FieldMappings: mappingsJSON,
		Status:        models.TemplateStatusActive,
		ApprovedBy:    approver,
		ApprovedAt:    &now,
		Notes:         notes,
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.TemplateConfig
		err := tx.Where("tenant_id = ? AND category = ? AND status = ?", tenantID, string(category), models.TemplateStatusActive).
			First(&current).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			newConfig.Version = 1
		case err != nil:
			return err
		default:
			newConfig.Version = current.Version + 1
			newConfig.PreviousFileID = current.FileID

			// Optimistic check: the archive update only succeeds if the row
			// we read is still the active one at its observed version.
			res := tx.Model(&models.TemplateConfig{}).
				Where("id = ? AND version = ? AND status = ?", current.ID, current.Version, models.TemplateStatusActive).
				Update("status", models.TemplateStatusArchived)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
		}

		if err := tx.Create(&newConfig).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrVersionConflict
			}
			return err
		}
		return nil
	})

	if txErr != nil {
		// Undo the orphaned content write; the config row never existed.
		if derr := s.store.Delete(fileID); derr != nil {
			logger.Warnf("[Preview] failed to clean up orphaned template content %s: %v", fileID, derr)
		}
		return nil, txErr
	}

	LogInfo("Templates", "Approve",
		"template approved for "+string(category),
		tenantID, approver, "",
		map[string]interface{}{"version": newConfig.Version, "file_id": fileID, "notes": notes})

	return &ApprovalResult{
		TemplateID: newConfig.ID,
		FileID:     fileID,
		Version:    newConfig.Version,
	}, nil
}

// Reject records the administrator's decision. Pure logging; template
// configuration state is untouched.
func (s *PreviewService) Reject(tenantID, actor string, category templates.Category, reason string) error {
	if _, err := templates.Lookup(category); err != nil {
		return err
	}
	LogInfo("Templates", "Reject",
		"template rejected for "+string(category),
		tenantID, actor, "",
		map[string]interface{}{"reason": reason})
	return nil
}

// ActiveConfig returns the active template configuration for a tenant and
// category, or gorm.ErrRecordNotFound.
func (s *PreviewService) ActiveConfig(tenantID string, category templates.Category) (*models.TemplateConfig, error) {
	var config models.TemplateConfig
	err := s.db.Where("tenant_id = ? AND category = ? AND status = ?", tenantID, string(category), models.TemplateStatusActive).
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// ListConfigs returns every template configuration row for a tenant,
// newest version first within each category.
func (s *PreviewService) ListConfigs(tenantID string) ([]models.TemplateConfig, error) {
	var configs []models.TemplateConfig
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("category ASC, version DESC").Find(&configs).Error
	return configs, err
}

// History returns all versions for one category, newest first.
func (s *PreviewService) History(tenantID string, category templates.Category) ([]models.TemplateConfig, error) {
	if _, err := templates.Lookup(category); err != nil {
		return nil, err
	}
	var configs []models.TemplateConfig
	err := s.db.Where("tenant_id = ? AND category = ?", tenantID, string(category)).
		Order("version DESC").Find(&configs).Error
	return configs, err
}

// Rollback reactivates the active version's recorded predecessor as a new
// version. The linked history makes this an ordinary approval-shaped write:
// the current active row is archived and a new active row pointing at the
// predecessor's content is created.
func (s *PreviewService) Rollback(tenantID, actor string, category templates.Category) (*ApprovalResult, error) {
	if _, err := templates.Lookup(category); err != nil {
		return nil, err
	}

	var result ApprovalResult
	now := time.Now()

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.TemplateConfig
		err := tx.Where("tenant_id = ? AND category = ? AND status = ?", tenantID, string(category), models.TemplateStatusActive).
			First(&current).Error
		if err != nil {
			return err
		}
		if current.PreviousFileID == "" {
			return ErrNoPreviousVersion
		}

		res := tx.Model(&models.TemplateConfig{}).
			Where("id = ? AND version = ? AND status = ?", current.ID, current.Version, models.TemplateStatusActive).
			Update("status", models.TemplateStatusArchived)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		restored := models.TemplateConfig{
			TenantID:       tenantID,
			Category:       string(category),
			Version:        current.Version + 1,
			FileID:         current.PreviousFileID,
			PreviousFileID: current.FileID,
			FieldMappings:  current.FieldMappings,
			Status:         models.TemplateStatusActive,
			ApprovedBy:     actor,
			ApprovedAt:     &now,
			Notes:          "rollback of version " + strconv.Itoa(current.Version),
		}
		if err := tx.Create(&restored).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrVersionConflict
			}
			return err
		}

		result = ApprovalResult{TemplateID: restored.ID, FileID: restored.FileID, Version: restored.Version}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	LogInfo("Templates", "Rollback",
		"template rolled back for "+string(category),
		tenantID, actor, "",
		map[string]interface{}{"version": result.Version})

	return &result, nil
}

// recordAttempt writes the immutable validation attempt row. A failed write
// is logged but never fails the validation call itself.
func (s *PreviewService) recordAttempt(tenantID, actor string, category templates.Category, content string, result *templates.ValidationResult) {
	errorsJSON, _ := json.Marshal(result.Errors)
	warningsJSON, _ := json.Marshal(result.Warnings)
	checksJSON, _ := json.Marshal(result.Checks)

	attempt := models.ValidationAttempt{
		TenantID:    tenantID,
		Category:    string(category),
		ContentHash: hashContent(content),
		Valid:       result.Valid,
		Errors:      string(errorsJSON),
		Warnings:    string(warningsJSON),
		Checks:      string(checksJSON),
		Actor:       actor,
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		logger.Errorf("[Preview] failed to record validation attempt: %v", err)
	}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// isDuplicateKey detects unique-constraint violations across the supported
// drivers without requiring gorm error translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
