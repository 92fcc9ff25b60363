package templates

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, c := range []Category{CategoryRentalInvoice, CategoryTaxFiling, CategoryFinancialStatement} {
		def, err := Lookup(c)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", c, err)
			continue
		}
		if def.Category != c {
			t.Errorf("Lookup(%q).Category = %q", c, def.Category)
		}
		if len(def.Required) == 0 {
			t.Errorf("Lookup(%q) has no required placeholders", c)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("receipt")
	var unknown *UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
}

func TestAll(t *testing.T) {
	defs := All()
	if len(defs) != 3 {
		t.Errorf("All() returned %d definitions, want 3", len(defs))
	}
}

func TestDefinition_RequiredHavePathsAndSamples(t *testing.T) {
	for _, def := range All() {
		for _, name := range def.Required {
			path, ok := def.Fields[name]
			if !ok {
				t.Errorf("%s: required placeholder %q has no data path", def.Category, name)
				continue
			}
			if _, ok := def.Samples[path]; !ok {
				t.Errorf("%s: data path %q has no sample value", def.Category, path)
			}
		}
	}
}

func TestResolvePath(t *testing.T) {
	def, _ := Lookup(CategoryRentalInvoice)

	tests := []struct {
		name        string
		placeholder string
		mappings    map[string]string
		wantPath    string
		wantOK      bool
	}{
		{"default path", "guest_name", nil, "booking.guest_name", true},
		{"override wins", "guest_name", map[string]string{"guest_name": "booking.property_name"}, "booking.property_name", true},
		{"empty override ignored", "guest_name", map[string]string{"guest_name": ""}, "booking.guest_name", true},
		{"unknown placeholder", "custom_note", nil, "", false},
		{"override for unknown placeholder", "custom_note", map[string]string{"custom_note": "booking.guest_name"}, "booking.guest_name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := def.ResolvePath(tt.placeholder, tt.mappings)
			if ok != tt.wantOK || path != tt.wantPath {
				t.Errorf("ResolvePath(%q) = (%q, %v), want (%q, %v)", tt.placeholder, path, ok, tt.wantPath, tt.wantOK)
			}
		})
	}
}
