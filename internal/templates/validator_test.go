package templates

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

const validInvoice = `<html>
<body>
<h1>Invoice {{invoice_number}}</h1>
<p>Date: {{invoice_date}}</p>
<p>Guest: {{guest_name}}</p>
<p>Total: {{total_amount}}</p>
</body>
</html>`

func TestValidate_ValidTemplate(t *testing.T) {
	result, err := Validate(CategoryRentalInvoice, validInvoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid, got errors: %+v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %d", len(result.Warnings))
	}
	wantChecks := []string{CheckSyntax, CheckPlaceholders, CheckSecurity}
	if !reflect.DeepEqual(result.Checks, wantChecks) {
		t.Errorf("checks = %v, want %v", result.Checks, wantChecks)
	}
}

func TestValidate_UnknownCategory(t *testing.T) {
	_, err := Validate(Category("purchase_order"), "<p>hi</p>")
	var unknown *UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if unknown.Category != "purchase_order" {
		t.Errorf("Category = %q, want %q", unknown.Category, "purchase_order")
	}
}

func TestValidate_MissingPlaceholder(t *testing.T) {
	content := strings.Replace(validInvoice, "{{total_amount}}", "", 1)
	result, err := Validate(CategoryRentalInvoice, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Valid {
		t.Error("expected invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(result.Errors), result.Errors)
	}
	issue := result.Errors[0]
	if issue.Type != IssueMissingPlaceholder {
		t.Errorf("type = %q, want %q", issue.Type, IssueMissingPlaceholder)
	}
	if issue.Placeholder != "total_amount" {
		t.Errorf("placeholder = %q, want %q", issue.Placeholder, "total_amount")
	}
	if issue.Severity != SeverityError {
		t.Errorf("severity = %q, want %q", issue.Severity, SeverityError)
	}
}

func TestValidate_PlaceholderWithWhitespace(t *testing.T) {
	content := strings.Replace(validInvoice, "{{total_amount}}", "{{ total_amount }}", 1)
	result, err := Validate(CategoryRentalInvoice, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.Valid {
		t.Errorf("whitespace inside braces should still count: %+v", result.Errors)
	}
}

func TestValidate_SecurityViolations(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		wantMsg string
	}{
		{"script element", `<script>alert(1)</script>`, "<script>"},
		{"event handler", `<div onclick="steal()">x</div>`, "event handler"},
		{"javascript url", `<a href="javascript:alert(1)">link</a>`, "javascript:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validInvoice, "</body>", tt.snippet+"\n</body>", 1)
			result, err := Validate(CategoryRentalInvoice, content)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if result.Valid {
				t.Fatal("expected invalid")
			}
			found := false
			for _, issue := range result.Errors {
				if issue.Type == IssueSecurityViolation && strings.Contains(issue.Message, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("no security violation mentioning %q in %+v", tt.wantMsg, result.Errors)
			}
		})
	}
}

func TestValidate_EventHandlerTextNotFlagged(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
	}{
		{"prose in text content", `<p>Payments made online = processed same day</p>`},
		{"inside attribute value", `<p title="use onclick= sparingly">note</p>`},
		{"tag name prefix", `<p>Book on-site or online</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validInvoice, "</body>", tt.snippet+"\n</body>", 1)
			result, err := Validate(CategoryRentalInvoice, content)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if !result.Valid {
				t.Errorf("expected valid, got errors: %+v", result.Errors)
			}
		})
	}
}

func TestValidate_ConcurrentUse(t *testing.T) {
	// Validate and Render share the placeholder pattern table and run on
	// every request; both must be safe to call from parallel goroutines.
	def, err := Lookup(CategoryRentalInvoice)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	data := &SampleData{
		Source: "placeholder",
		Values: map[string]string{"booking.guest_name": "Sample Guest"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := Validate(CategoryRentalInvoice, validInvoice); err != nil {
					t.Errorf("Validate() error = %v", err)
					return
				}
				Render(validInvoice, def, data, nil)
			}
		}()
	}
	wg.Wait()
}

func TestValidate_ExternalResourceWarns(t *testing.T) {
	content := strings.Replace(validInvoice, "</body>",
		`<img src="https://cdn.example.com/logo.png">`+"\n</body>", 1)
	result, err := Validate(CategoryRentalInvoice, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.Valid {
		t.Errorf("external resources warn but must not invalidate: %+v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	if result.Warnings[0].Type != IssueExternalResource {
		t.Errorf("type = %q, want %q", result.Warnings[0].Type, IssueExternalResource)
	}
	if result.Warnings[0].Severity != SeverityWarning {
		t.Errorf("severity = %q, want %q", result.Warnings[0].Severity, SeverityWarning)
	}
}

func TestCheckSyntax(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMsgs []string
		wantLine int
	}{
		{
			name:     "unclosed tag",
			content:  "<div>\n<p>text</p>",
			wantMsgs: []string{"unclosed tag <div>"},
			wantLine: 1,
		},
		{
			name:     "stray closing tag",
			content:  "<p>text</p>\n</div>",
			wantMsgs: []string{"closing tag </div> has no matching opening tag"},
			wantLine: 2,
		},
		{
			name:     "mismatched nesting",
			content:  "<b><i>text</b></i>",
			wantMsgs: []string{"unclosed tag <i>", "closing tag </i> has no matching opening tag"},
		},
		{
			name:    "void elements need no close",
			content: "<p>line one<br>line two<img src=\"x.png\"><hr></p>",
		},
		{
			name:    "self closing",
			content: "<div><span/></div>",
		},
		{
			name:    "comments and doctype ignored",
			content: "<!DOCTYPE html>\n<!-- <div> never closed -->\n<p>fine</p>",
		},
		{
			name:    "angle brackets inside attribute values",
			content: `<p title="a > b">ok</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := checkSyntax(tt.content)
			if len(issues) != len(tt.wantMsgs) {
				t.Fatalf("got %d issues %+v, want %d", len(issues), issues, len(tt.wantMsgs))
			}
			for i, want := range tt.wantMsgs {
				if issues[i].Message != want {
					t.Errorf("issue %d message = %q, want %q", i, issues[i].Message, want)
				}
			}
			if tt.wantLine > 0 && len(issues) > 0 && issues[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", issues[0].Line, tt.wantLine)
			}
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	content := strings.Replace(validInvoice, "{{guest_name}}", "<script>x</script>", 1)
	first, err := Validate(CategoryRentalInvoice, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	second, err := Validate(CategoryRentalInvoice, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical content produced different results:\n%+v\n%+v", first, second)
	}
}

func TestValidate_AllCategories(t *testing.T) {
	for _, def := range All() {
		t.Run(string(def.Category), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("<html><body>")
			for _, name := range def.Required {
				b.WriteString("<p>{{" + name + "}}</p>")
			}
			b.WriteString("</body></html>")

			result, err := Validate(def.Category, b.String())
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if !result.Valid {
				t.Errorf("template with all required placeholders should validate: %+v", result.Errors)
			}
		})
	}
}
