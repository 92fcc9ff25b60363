package models

import "time"

// AIUsageLog records each completion-service call for cost and usage
// tracking. Written unconditionally, fallback responses included, so the
// audit trail stays honest even when token usage is zero.
type AIUsageLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TenantID         string    `gorm:"size:100;index" json:"tenant_id"`
	Category         string    `gorm:"size:50;index" json:"category"`
	Provider         string    `gorm:"size:50" json:"provider"`
	Model            string    `gorm:"size:100" json:"model"`
	Actor            string    `gorm:"size:100" json:"actor"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostEstimate     float64   `json:"cost_estimate"`
	LatencyMs        int64     `json:"latency_ms"`
	Fallback         bool      `json:"fallback"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (AIUsageLog) TableName() string { return "ai_usage_logs" }
