package services

import (
	"testing"

	"github.com/rentfolio/rentfolio/internal/templates"
)

func TestSynthetic(t *testing.T) {
	svc := &SampleDataService{}

	for _, def := range templates.All() {
		t.Run(string(def.Category), func(t *testing.T) {
			data := svc.synthetic(def)

			if data.Source != "placeholder" {
				t.Errorf("source = %q, want placeholder", data.Source)
			}
			if data.RecordCount != 0 {
				t.Errorf("record count = %d, want 0", data.RecordCount)
			}
			for _, name := range def.Required {
				path, ok := def.ResolvePath(name, nil)
				if !ok {
					t.Fatalf("required placeholder %q has no data path", name)
				}
				if data.Values[path] == "" {
					t.Errorf("no synthetic value for %q (path %q)", name, path)
				}
			}
		})
	}
}

func TestSynthetic_CopiesValues(t *testing.T) {
	svc := &SampleDataService{}
	def, _ := templates.Lookup(templates.CategoryRentalInvoice)

	data := svc.synthetic(def)
	data.Values["booking.guest_name"] = "mutated"

	if def.Samples["booking.guest_name"] == "mutated" {
		t.Error("synthetic data must not alias the registry samples")
	}
}
