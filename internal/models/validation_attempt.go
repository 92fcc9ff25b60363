package models

import "time"

// ValidationAttempt is an immutable log entry recording one validation run.
// Created once per validation call; never mutated. The content hash lets the
// approval path verify that the content being approved is the content that
// was validated.
type ValidationAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    string    `gorm:"size:100;index:idx_attempt_tenant_category" json:"tenant_id"`
	Category    string    `gorm:"size:50;index:idx_attempt_tenant_category" json:"category"`
	ContentHash string    `gorm:"size:64;index" json:"content_hash"`
	Valid       bool      `json:"valid"`
	Errors      string    `gorm:"type:text" json:"errors"`   // JSON array of issues
	Warnings    string    `gorm:"type:text" json:"warnings"` // JSON array of issues
	Checks      string    `gorm:"size:500" json:"checks"`    // JSON array of check identifiers
	Actor       string    `gorm:"size:200" json:"actor"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ValidationAttempt) TableName() string { return "validation_attempts" }
