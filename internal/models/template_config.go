package models

import "time"

// Template configuration lifecycle statuses. Exactly one row per
// (tenant, category) may be active at a time; the preview service enforces
// this with an optimistic version check, not storage constraints alone.
// "draft" is reserved for a future save-without-activating flow and is
// never produced today.
const (
	TemplateStatusDraft    = "draft"
	TemplateStatusActive   = "active"
	TemplateStatusArchived = "archived"
)

// TemplateConfig is one version of a tenant's template for a category.
// Rows are never hard-deleted; approval archives the previous active row
// and records its storage handle so rollback is a first-class operation.
type TemplateConfig struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	TenantID       string     `gorm:"size:100;not null;index:idx_tenant_category;uniqueIndex:idx_tenant_category_version" json:"tenant_id"`
	Category       string     `gorm:"size:50;not null;index:idx_tenant_category;uniqueIndex:idx_tenant_category_version" json:"category"`
	Version        int        `gorm:"not null;uniqueIndex:idx_tenant_category_version" json:"version"`
	FileID         string     `gorm:"size:64;not null" json:"file_id"`                 // opaque storage handle
	PreviousFileID string     `gorm:"size:64" json:"previous_file_id,omitempty"`       // predecessor's handle, for rollback
	FieldMappings  string     `gorm:"type:text" json:"field_mappings,omitempty"`       // JSON object: placeholder -> data path
	Status         string     `gorm:"size:20;not null;index" json:"status"`            // draft, active, archived
	ApprovedBy     string     `gorm:"size:200" json:"approved_by"`
	ApprovedAt     *time.Time `json:"approved_at"`
	Notes          string     `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (TemplateConfig) TableName() string { return "template_configs" }
