package templates

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue severities. Errors block validity; warnings never do.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue types.
const (
	IssueInvalidSyntax      = "invalid_syntax"
	IssueMissingPlaceholder = "missing_placeholder"
	IssueSecurityViolation  = "security_violation"
	IssueExternalResource   = "external_resource"
)

// Check identifiers recorded on every validation result.
const (
	CheckSyntax       = "html_syntax"
	CheckPlaceholders = "required_placeholders"
	CheckSecurity     = "security"
)

// Issue is a single validation finding. Errors and warnings share the shape;
// only Severity differs.
type Issue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	Line        int    `json:"line,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ValidationResult aggregates all findings of one validation pass.
type ValidationResult struct {
	Valid    bool     `json:"is_valid"`
	Errors   []Issue  `json:"errors"`
	Warnings []Issue  `json:"warnings"`
	Checks   []string `json:"checks_performed"`
}

var (
	tagRegex          = regexp.MustCompile(`<\s*(/?)([a-zA-Z][a-zA-Z0-9-]*)((?:[^>"']|"[^"]*"|'[^']*')*?)(/?)>`)
	commentRegex      = regexp.MustCompile(`(?s)<!--.*?-->`)
	doctypeRegex      = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	scriptRegex       = regexp.MustCompile(`(?i)<\s*script\b`)
	attrValueRegex    = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	eventHandlerRegex = regexp.MustCompile(`(?i)[\s/]on[a-z]+\s*=`)
	jsURLRegex        = regexp.MustCompile(`(?i)(href|src)\s*=\s*["']?\s*javascript:`)
	externalRegex     = regexp.MustCompile(`(?i)(src|href)\s*=\s*["']?(https?:)?//[^\s"'>]+`)
)

// Void elements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Validate statically inspects a candidate template for structural breakage,
// missing required placeholders and disallowed constructs. Pure function:
// identical content always yields an identical result.
func Validate(category Category, content string) (*ValidationResult, error) {
	def, err := Lookup(category)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Checks:   []string{CheckSyntax, CheckPlaceholders, CheckSecurity},
	}

	result.Errors = append(result.Errors, checkSyntax(content)...)
	result.Errors = append(result.Errors, checkPlaceholders(def, content)...)

	secErrors, secWarnings := checkSecurity(content)
	result.Errors = append(result.Errors, secErrors...)
	result.Warnings = append(result.Warnings, secWarnings...)

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// lineOf returns the 1-based line number of a byte offset.
func lineOf(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n") + 1
}

// blankOut replaces a matched region with spaces, preserving newlines so
// later line numbers stay accurate.
func blankOut(content string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(content, func(m string) string {
		b := []byte(m)
		for i := range b {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
		return string(b)
	})
}

type openTag struct {
	name string
	line int
}

// checkSyntax reports unclosed and mismatched tags. It deliberately stops
// short of full HTML5 conformance; the goal is catching structural breakage
// that would corrupt rendered output.
func checkSyntax(content string) []Issue {
	var issues []Issue

	scanned := blankOut(content, commentRegex)
	scanned = blankOut(scanned, doctypeRegex)

	var stack []openTag
	for _, m := range tagRegex.FindAllStringSubmatchIndex(scanned, -1) {
		closing := scanned[m[2]:m[3]] == "/"
		name := strings.ToLower(scanned[m[4]:m[5]])
		selfClosed := scanned[m[8]:m[9]] == "/"
		line := lineOf(scanned, m[0])

		if voidElements[name] || selfClosed {
			continue
		}

		if !closing {
			stack = append(stack, openTag{name: name, line: line})
			continue
		}

		// Closing tag: match against the innermost open tag.
		if len(stack) == 0 {
			issues = append(issues, Issue{
				Type:     IssueInvalidSyntax,
				Severity: SeverityError,
				Message:  fmt.Sprintf("closing tag </%s> has no matching opening tag", name),
				Line:     line,
			})
			continue
		}

		top := stack[len(stack)-1]
		if top.name == name {
			stack = stack[:len(stack)-1]
			continue
		}

		// Mismatch. If the tag matches something deeper in the stack, the
		// tags in between were left unclosed; otherwise the closing tag
		// itself is stray.
		matched := -1
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].name == name {
				matched = i
				break
			}
		}
		if matched == -1 {
			issues = append(issues, Issue{
				Type:     IssueInvalidSyntax,
				Severity: SeverityError,
				Message:  fmt.Sprintf("mismatched closing tag </%s>; expected </%s>", name, top.name),
				Line:     line,
			})
			continue
		}
		for i := len(stack) - 1; i > matched; i-- {
			issues = append(issues, Issue{
				Type:     IssueInvalidSyntax,
				Severity: SeverityError,
				Message:  fmt.Sprintf("unclosed tag <%s>", stack[i].name),
				Line:     stack[i].line,
			})
		}
		stack = stack[:matched]
	}

	for i := len(stack) - 1; i >= 0; i-- {
		issues = append(issues, Issue{
			Type:     IssueInvalidSyntax,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unclosed tag <%s>", stack[i].name),
			Line:     stack[i].line,
		})
	}

	return issues
}

// checkPlaceholders reports one error per missing required token for the
// category. Extra or unknown placeholders are not errors.
func checkPlaceholders(def *Definition, content string) []Issue {
	var issues []Issue
	for _, name := range def.Required {
		re := placeholderPattern(name)
		if !re.MatchString(content) {
			issues = append(issues, Issue{
				Type:        IssueMissingPlaceholder,
				Severity:    SeverityError,
				Message:     fmt.Sprintf("required placeholder {{%s}} is missing", name),
				Placeholder: name,
			})
		}
	}
	return issues
}

// Placeholder patterns are compiled once at package init; the registry is
// closed, so the map is never written afterwards and concurrent validations
// can read it without locking.
var placeholderPatterns = func() map[string]*regexp.Regexp {
	patterns := map[string]*regexp.Regexp{}
	for _, def := range All() {
		for name := range def.Fields {
			patterns[name] = compilePlaceholderPattern(name)
		}
	}
	return patterns
}()

func compilePlaceholderPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\s*\}\}`)
}

func placeholderPattern(name string) *regexp.Regexp {
	if re, ok := placeholderPatterns[name]; ok {
		return re
	}
	// Unregistered names are compiled on the fly, never cached.
	return compilePlaceholderPattern(name)
}

// checkSecurity rejects script elements, inline event handlers and
// javascript: URLs outright; externally-hosted resources only warn.
func checkSecurity(content string) (errors, warnings []Issue) {
	scanned := blankOut(content, commentRegex)

	for _, m := range scriptRegex.FindAllStringIndex(scanned, -1) {
		errors = append(errors, Issue{
			Type:     IssueSecurityViolation,
			Severity: SeverityError,
			Message:  "<script> elements are not allowed; templates must never execute code",
			Line:     lineOf(scanned, m[0]),
		})
	}
	// Event handlers are only flagged in attribute position inside a tag,
	// with quoted attribute values blanked first, so prose like "go online ="
	// in text content never trips the check.
	for _, m := range tagRegex.FindAllStringSubmatchIndex(scanned, -1) {
		attrs := blankOut(scanned[m[6]:m[7]], attrValueRegex)
		if eventHandlerRegex.MatchString(attrs) {
			errors = append(errors, Issue{
				Type:     IssueSecurityViolation,
				Severity: SeverityError,
				Message:  "inline event handler attributes are not allowed",
				Line:     lineOf(scanned, m[0]),
			})
		}
	}
	for _, m := range jsURLRegex.FindAllStringIndex(scanned, -1) {
		errors = append(errors, Issue{
			Type:     IssueSecurityViolation,
			Severity: SeverityError,
			Message:  "javascript: URLs are not allowed",
			Line:     lineOf(scanned, m[0]),
		})
	}
	for _, m := range externalRegex.FindAllStringIndex(scanned, -1) {
		warnings = append(warnings, Issue{
			Type:     IssueExternalResource,
			Severity: SeverityWarning,
			Message:  "externally-hosted resource reference; may leak requests at render time and break offline preview",
			Line:     lineOf(scanned, m[0]),
		})
	}
	return errors, warnings
}
