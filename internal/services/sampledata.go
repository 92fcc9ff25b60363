package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rentfolio/rentfolio/internal/models"
	"github.com/rentfolio/rentfolio/internal/templates"
	"github.com/rentfolio/rentfolio/pkg/logger"
	"gorm.io/gorm"
)

// SampleDataService fetches the most representative real record for a
// tenant and category, falling back to deterministic synthetic data when no
// real record exists or the store is slow. Absence of data and fetch
// timeouts are expected conditions, not failures: Fetch never errors.
type SampleDataService struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewSampleDataService(db *gorm.DB, timeout time.Duration) *SampleDataService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SampleDataService{db: db, timeout: timeout}
}

// Fetch returns sample data for a preview. Source is "database" when a real
// record was found, "placeholder" otherwise.
func (s *SampleDataService) Fetch(ctx context.Context, tenantID string, category templates.Category) *templates.SampleData {
	def, err := templates.Lookup(category)
	if err != nil {
		// Unknown categories are rejected before rendering; treat as no data.
		return &templates.SampleData{Source: "placeholder", Values: map[string]string{}}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.fetchReal(fetchCtx, tenantID, category)
	if err == nil && data != nil {
		return data
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Warnf("[Sample] fetch failed for tenant=%s category=%s, using placeholder data: %v", tenantID, category, err)
	}

	return s.synthetic(def)
}

func (s *SampleDataService) fetchReal(ctx context.Context, tenantID string, category templates.Category) (*templates.SampleData, error) {
	db := s.db.WithContext(ctx)

	switch category {
	case templates.CategoryRentalInvoice:
		var booking models.Booking
		var count int64
		db.Model(&models.Booking{}).Where("tenant_id = ? AND status = ?", tenantID, "paid").Count(&count)
		err := db.Where("tenant_id = ? AND status = ?", tenantID, "paid").
			Order("check_out DESC").First(&booking).Error
		if err != nil {
			return nil, err
		}
		return &templates.SampleData{
			Source:      "database",
			RecordCount: count,
			Values: map[string]string{
				"booking.invoice_number": booking.InvoiceNumber,
				"booking.invoice_date":   booking.InvoiceDate,
				"booking.guest_name":     booking.GuestName,
				"booking.property_name":  booking.PropertyName,
				"booking.check_in":       booking.CheckIn,
				"booking.check_out":      booking.CheckOut,
				"booking.nights":         fmt.Sprintf("%d", booking.Nights),
				"booking.nightly_rate":   fmt.Sprintf("%.2f", booking.NightlyRate),
				"booking.tax_amount":     fmt.Sprintf("%.2f", booking.TaxAmount),
				"booking.total_amount":   fmt.Sprintf("%.2f", booking.TotalAmount),
			},
		}, nil

	case templates.CategoryTaxFiling:
		var filing models.TaxFiling
		var count int64
		db.Model(&models.TaxFiling{}).Where("tenant_id = ? AND filed = ?", tenantID, true).Count(&count)
		err := db.Where("tenant_id = ? AND filed = ?", tenantID, true).
			Order("tax_year DESC, quarter DESC").First(&filing).Error
		if err != nil {
			return nil, err
		}
		filedDate := ""
		if filing.FiledAt != nil {
			filedDate = filing.FiledAt.Format("2006-01-02")
		}
		return &templates.SampleData{
			Source:      "database",
			RecordCount: count,
			Values: map[string]string{
				"filing.tax_year":            fmt.Sprintf("%d", filing.TaxYear),
				"filing.quarter":             fmt.Sprintf("Q%d", filing.Quarter),
				"filing.gross_income":        fmt.Sprintf("%.2f", filing.GrossIncome),
				"filing.deductible_expenses": fmt.Sprintf("%.2f", filing.DeductibleExpenses),
				"filing.tax_due":             fmt.Sprintf("%.2f", filing.TaxDue),
				"filing.filed_date":          filedDate,
			},
		}, nil

	case templates.CategoryFinancialStatement:
		var statement models.FinancialStatement
		var count int64
		db.Model(&models.FinancialStatement{}).Where("tenant_id = ? AND finalized = ?", tenantID, true).Count(&count)
		err := db.Where("tenant_id = ? AND finalized = ?", tenantID, true).
			Order("period_end DESC").First(&statement).Error
		if err != nil {
			return nil, err
		}
		return &templates.SampleData{
			Source:      "database",
			RecordCount: count,
			Values: map[string]string{
				"statement.period_start":   statement.PeriodStart,
				"statement.period_end":     statement.PeriodEnd,
				"statement.total_income":   fmt.Sprintf("%.2f", statement.TotalIncome),
				"statement.total_expenses": fmt.Sprintf("%.2f", statement.TotalExpenses),
				"statement.net_result":     fmt.Sprintf("%.2f", statement.NetResult),
			},
		}, nil
	}

	return nil, gorm.ErrRecordNotFound
}

// synthetic builds the deterministic placeholder record for a category.
func (s *SampleDataService) synthetic(def *templates.Definition) *templates.SampleData {
	values := make(map[string]string, len(def.Samples))
	for path, v := range def.Samples {
		values[path] = v
	}
	return &templates.SampleData{
		Source:      "placeholder",
		RecordCount: 0,
		Values:      values,
	}
}
