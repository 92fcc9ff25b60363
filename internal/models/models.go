package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a local account. Most callers authenticate with bearer
// tokens issued by the external identity provider; local users exist for
// the bootstrap admin and development setups.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Email     string         `gorm:"size:255" json:"email"`
	TenantID  string         `gorm:"size:100;index" json:"tenant_id"`
	Role      string         `gorm:"size:50;default:admin" json:"role"` // admin, user
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Booking is a short-term-rental stay; the most recent paid booking feeds
// rental invoice previews.
type Booking struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"size:100;index;not null" json:"tenant_id"`
	InvoiceNumber string    `gorm:"size:50" json:"invoice_number"`
	InvoiceDate   string    `gorm:"size:20" json:"invoice_date"`
	GuestName     string    `gorm:"size:200" json:"guest_name"`
	PropertyName  string    `gorm:"size:200" json:"property_name"`
	CheckIn       string    `gorm:"size:20" json:"check_in"`
	CheckOut      string    `gorm:"size:20" json:"check_out"`
	Nights        int       `json:"nights"`
	NightlyRate   float64   `json:"nightly_rate"`
	TaxAmount     float64   `json:"tax_amount"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `gorm:"size:50;index" json:"status"` // pending, paid, cancelled
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TaxFiling is one quarterly tax declaration; the most recent filed quarter
// feeds tax filing previews.
type TaxFiling struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TenantID           string     `gorm:"size:100;index;not null" json:"tenant_id"`
	TaxYear            int        `gorm:"index" json:"tax_year"`
	Quarter            int        `json:"quarter"` // 1-4
	GrossIncome        float64    `json:"gross_income"`
	DeductibleExpenses float64    `json:"deductible_expenses"`
	TaxDue             float64    `json:"tax_due"`
	Filed              bool       `gorm:"index" json:"filed"`
	FiledAt            *time.Time `json:"filed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FinancialStatement is a periodic income/expense summary; the most recent
// finalized period feeds financial statement previews.
type FinancialStatement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"size:100;index;not null" json:"tenant_id"`
	PeriodStart   string    `gorm:"size:20" json:"period_start"`
	PeriodEnd     string    `gorm:"size:20" json:"period_end"`
	TotalIncome   float64   `json:"total_income"`
	TotalExpenses float64   `json:"total_expenses"`
	NetResult     float64   `json:"net_result"`
	Finalized     bool      `gorm:"index" json:"finalized"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken stores the sha256 hash of an issued refresh token.
// Rotation on use: refreshing revokes the old row and links it to the
// replacement.
type RefreshToken struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	TokenHash         string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt         time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	ReplacedByTokenID uint       `json:"-"`
	CreatedByIP       string     `gorm:"size:50" json:"-"`
	UserAgent         string     `gorm:"size:255" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SystemLog represents a system operation log entry.
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	TenantID  string    `gorm:"size:100;index" json:"tenant_id"`
	Actor     string    `gorm:"size:200" json:"actor"`
	IP        string    `gorm:"size:50" json:"ip"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (User) TableName() string               { return "users" }
func (Booking) TableName() string            { return "bookings" }
func (TaxFiling) TableName() string          { return "tax_filings" }
func (FinancialStatement) TableName() string { return "financial_statements" }
func (RefreshToken) TableName() string       { return "refresh_tokens" }
func (SystemLog) TableName() string          { return "system_logs" }
