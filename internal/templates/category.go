package templates

import "fmt"

// Category identifies a kind of tenant-customizable report template.
// The set is closed: unknown categories are rejected up front rather than
// defaulted, so a category/placeholder mismatch surfaces at validation time.
type Category string

const (
	CategoryRentalInvoice      Category = "rental_invoice"
	CategoryTaxFiling          Category = "tax_filing"
	CategoryFinancialStatement Category = "financial_statement"
)

// Definition describes one template category: which placeholders it must
// contain, where each placeholder's value comes from by default, and the
// synthetic values used when a tenant has no real records yet.
type Definition struct {
	Category Category
	Label    string
	// Required placeholders; a template missing any of these is invalid.
	Required []string
	// Fields maps every known placeholder to its default data path.
	// Tenants may override individual paths via field mappings.
	Fields map[string]string
	// Samples maps data paths to deterministic placeholder values.
	Samples map[string]string
}

var registry = map[Category]*Definition{
	CategoryRentalInvoice: {
		Category: CategoryRentalInvoice,
		Label:    "Rental Invoice",
		Required: []string{"invoice_number", "invoice_date", "guest_name", "total_amount"},
		Fields: map[string]string{
			"invoice_number": "booking.invoice_number",
			"invoice_date":   "booking.invoice_date",
			"guest_name":     "booking.guest_name",
			"property_name":  "booking.property_name",
			"check_in":       "booking.check_in",
			"check_out":      "booking.check_out",
			"nights":         "booking.nights",
			"nightly_rate":   "booking.nightly_rate",
			"tax_amount":     "booking.tax_amount",
			"total_amount":   "booking.total_amount",
		},
		Samples: map[string]string{
			"booking.invoice_number": "INV-2025-0001",
			"booking.invoice_date":   "2025-06-01",
			"booking.guest_name":     "Sample Guest",
			"booking.property_name":  "Seaside Apartment 2B",
			"booking.check_in":       "2025-05-24",
			"booking.check_out":      "2025-05-31",
			"booking.nights":         "7",
			"booking.nightly_rate":   "120.00",
			"booking.tax_amount":     "84.00",
			"booking.total_amount":   "924.00",
		},
	},
	CategoryTaxFiling: {
		Category: CategoryTaxFiling,
		Label:    "Tax Filing",
		Required: []string{"tax_year", "quarter", "gross_income", "tax_due"},
		Fields: map[string]string{
			"tax_year":            "filing.tax_year",
			"quarter":             "filing.quarter",
			"gross_income":        "filing.gross_income",
			"deductible_expenses": "filing.deductible_expenses",
			"tax_due":             "filing.tax_due",
			"filed_date":          "filing.filed_date",
		},
		Samples: map[string]string{
			"filing.tax_year":            "2025",
			"filing.quarter":             "Q1",
			"filing.gross_income":        "18450.00",
			"filing.deductible_expenses": "4230.00",
			"filing.tax_due":             "2986.20",
			"filing.filed_date":          "2025-04-15",
		},
	},
	CategoryFinancialStatement: {
		Category: CategoryFinancialStatement,
		Label:    "Financial Statement",
		Required: []string{"period_start", "period_end", "total_income", "total_expenses", "net_result"},
		Fields: map[string]string{
			"period_start":   "statement.period_start",
			"period_end":     "statement.period_end",
			"total_income":   "statement.total_income",
			"total_expenses": "statement.total_expenses",
			"net_result":     "statement.net_result",
		},
		Samples: map[string]string{
			"statement.period_start":   "2025-01-01",
			"statement.period_end":     "2025-03-31",
			"statement.total_income":   "32500.00",
			"statement.total_expenses": "11240.00",
			"statement.net_result":     "21260.00",
		},
	},
}

// ErrUnknownCategory is returned when a request names a category outside the
// registry. Contract error: rejected immediately, never defaulted.
type UnknownCategoryError struct {
	Category Category
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown template category: %q", e.Category)
}

// Lookup returns the definition for a category.
func Lookup(c Category) (*Definition, error) {
	def, ok := registry[c]
	if !ok {
		return nil, &UnknownCategoryError{Category: c}
	}
	return def, nil
}

// All returns every registered definition; order is unspecified.
func All() []*Definition {
	defs := make([]*Definition, 0, len(registry))
	for _, d := range registry {
		defs = append(defs, d)
	}
	return defs
}

// ResolvePath returns the data path feeding a placeholder, applying any
// tenant field-mapping override.
func (d *Definition) ResolvePath(placeholder string, mappings map[string]string) (string, bool) {
	if mappings != nil {
		if path, ok := mappings[placeholder]; ok && path != "" {
			return path, true
		}
	}
	path, ok := d.Fields[placeholder]
	return path, ok
}
