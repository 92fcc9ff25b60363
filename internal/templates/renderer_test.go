package templates

import (
	"strings"
	"testing"
)

func sampleFromDefinition(def *Definition) *SampleData {
	return &SampleData{
		Source:      "placeholder",
		RecordCount: 0,
		Values:      def.Samples,
	}
}

func TestRender_Substitution(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)
	content := "<p>{{guest_name}} owes {{total_amount}} for {{ nights }} nights</p>"

	out := Render(content, def, sampleFromDefinition(def), nil)

	if !strings.Contains(out, "Sample Guest") {
		t.Errorf("guest_name not substituted: %q", out)
	}
	if !strings.Contains(out, "924.00") {
		t.Errorf("total_amount not substituted: %q", out)
	}
	if !strings.Contains(out, "7 nights") {
		t.Errorf("spaced placeholder not substituted: %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("unexpected leftover placeholder: %q", out)
	}
}

func TestRender_MappingOverride(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)
	content := "<p>{{guest_name}}</p>"
	mappings := map[string]string{"guest_name": "booking.property_name"}

	out := Render(content, def, sampleFromDefinition(def), mappings)

	if !strings.Contains(out, "Seaside Apartment 2B") {
		t.Errorf("mapping override not applied: %q", out)
	}
	if strings.Contains(out, "Sample Guest") {
		t.Errorf("default path used despite override: %q", out)
	}
}

func TestRender_UnknownPlaceholderLeftAsIs(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)
	content := "<p>{{guest_name}} {{custom_note}}</p>"

	out := Render(content, def, sampleFromDefinition(def), nil)

	if !strings.Contains(out, "{{custom_note}}") {
		t.Errorf("unknown placeholder should survive untouched: %q", out)
	}
}

func TestRender_MissingValueLeftAsIs(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)
	data := &SampleData{
		Source: "database",
		Values: map[string]string{"booking.guest_name": "Ada"},
	}
	content := "<p>{{guest_name}} {{total_amount}}</p>"

	out := Render(content, def, data, nil)

	if !strings.Contains(out, "Ada") {
		t.Errorf("available value not substituted: %q", out)
	}
	if !strings.Contains(out, "{{total_amount}}") {
		t.Errorf("placeholder without a value should survive: %q", out)
	}
}

func TestRender_NilData(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)
	content := "<p>{{guest_name}}</p>"
	if out := Render(content, def, nil, nil); out != content {
		t.Errorf("nil data should return content unchanged, got %q", out)
	}
}
