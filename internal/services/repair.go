package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rentfolio/rentfolio/internal/config"
	"github.com/rentfolio/rentfolio/internal/models"
	"github.com/rentfolio/rentfolio/internal/templates"
	"github.com/rentfolio/rentfolio/pkg/logger"
)

// RepairService asks the completion service for fix suggestions on a
// template that failed validation. Template content is sanitized before
// it leaves the process, every call is written to the usage ledger, and
// any transport or parse failure degrades to a generic suggestion set
// instead of an error.
type RepairService struct {
	client *CompletionClient
	usage  *AIUsageService
	cfg    *config.CompletionConfig
}

func NewRepairService(client *CompletionClient, usage *AIUsageService, cfg *config.CompletionConfig) *RepairService {
	return &RepairService{client: client, usage: usage, cfg: cfg}
}

// FixSuggestion is one proposed repair. Search/CodeExample describe a
// textual replacement when the fix can be applied mechanically.
type FixSuggestion struct {
	Issue       string `json:"issue"`
	Suggestion  string `json:"suggestion"`
	CodeExample string `json:"code_example,omitempty"`
	Search      string `json:"search,omitempty"`
	Location    string `json:"location,omitempty"`
	Confidence  string `json:"confidence"`
	AutoFixable bool   `json:"auto_fixable"`
}

// SuggestionBundle is the full repair response returned to the caller.
type SuggestionBundle struct {
	Analysis     string          `json:"analysis"`
	Fixes        []FixSuggestion `json:"fixes"`
	Fallback     bool            `json:"fallback"`
	TokensUsed   int             `json:"tokens_used"`
	CostEstimate float64         `json:"cost_estimate"`
}

type suggestionPayload struct {
	Analysis string          `json:"analysis"`
	Fixes    []FixSuggestion `json:"fixes"`
}

// SuggestFixes produces repair suggestions for a template with the given
// validation issues. The only error it returns is an unknown category;
// completion failures are absorbed into a fallback bundle.
func (s *RepairService) SuggestFixes(ctx context.Context, tenantID, actor string, category templates.Category, content string, issues []templates.Issue) (*SuggestionBundle, error) {
	def, err := templates.Lookup(category)
	if err != nil {
		return nil, err
	}

	prompt := buildRepairPrompt(def, SanitizeContent(content), issues)
	start := time.Now()
	resp, callErr := s.client.Complete(ctx, prompt)
	latency := time.Since(start).Milliseconds()

	entry := &models.AIUsageLog{
		TenantID:  tenantID,
		Category:  string(category),
		Provider:  s.cfg.Provider,
		Model:     s.cfg.Model,
		Actor:     actor,
		LatencyMs: latency,
	}

	if callErr != nil {
		// The call may never have reached the provider; the ledger records
		// zero tokens and zero cost rather than an estimate for a request
		// that was not billed.
		entry.Success = false
		entry.Fallback = true
		entry.ErrorMessage = callErr.Error()
		s.usage.Record(entry)
		logger.Warn().Err(callErr).Str("tenant_id", tenantID).Msg("completion call failed, using fallback suggestions")
		return s.fallbackBundle(def, issues), nil
	}

	entry.PromptTokens = resp.PromptTokens
	entry.CompletionTokens = resp.CompletionTokens
	entry.TotalTokens = resp.TotalTokens()
	entry.CostEstimate = s.costFor(entry.TotalTokens)

	payload, parseErr := parseSuggestions(resp.Content)
	if parseErr != nil {
		entry.Success = false
		entry.Fallback = true
		entry.ErrorMessage = parseErr.Error()
		s.usage.Record(entry)
		logger.Warn().Err(parseErr).Str("tenant_id", tenantID).Msg("unparseable completion response, using fallback suggestions")
		bundle := s.fallbackBundle(def, issues)
		bundle.TokensUsed = entry.TotalTokens
		bundle.CostEstimate = entry.CostEstimate
		return bundle, nil
	}

	entry.Success = true
	s.usage.Record(entry)

	return &SuggestionBundle{
		Analysis:     payload.Analysis,
		Fixes:        payload.Fixes,
		TokensUsed:   entry.TotalTokens,
		CostEstimate: entry.CostEstimate,
	}, nil
}

func (s *RepairService) costFor(totalTokens int) float64 {
	return float64(totalTokens) / 1000.0 * s.cfg.PricePerKTok
}

func (s *RepairService) fallbackBundle(def *templates.Definition, issues []templates.Issue) *SuggestionBundle {
	return &SuggestionBundle{
		Analysis: "Automated analysis is temporarily unavailable. The suggestions below are generated from the validation results.",
		Fixes:    FallbackSuggestions(def, issues),
		Fallback: true,
	}
}

// ApplyFixes applies the fixes at the selected indexes to content.
// Only fixes explicitly selected and marked auto-fixable are applied;
// everything else is ignored, including replacements whose search text no
// longer appears in the content. Returns the updated content and the
// number of fixes applied.
func ApplyFixes(content string, fixes []FixSuggestion, selected []int) (string, int) {
	applied := 0
	for _, idx := range selected {
		if idx < 0 || idx >= len(fixes) {
			continue
		}
		fix := fixes[idx]
		if !fix.AutoFixable || fix.CodeExample == "" {
			continue
		}
		if fix.Search != "" {
			// A replacement whose anchor is gone (content edited since the
			// suggestion was made) is stale; skip it rather than let it
			// degrade into an insertion.
			if !strings.Contains(content, fix.Search) {
				continue
			}
			content = strings.Replace(content, fix.Search, fix.CodeExample, 1)
			applied++
			continue
		}
		content = insertBeforeBodyClose(content, fix.CodeExample)
		applied++
	}
	return content, applied
}

var bodyClosePattern = regexp.MustCompile(`(?i)</body\s*>`)

func insertBeforeBodyClose(content, snippet string) string {
	loc := bodyClosePattern.FindStringIndex(content)
	if loc == nil {
		return content + "\n" + snippet
	}
	return content[:loc[0]] + snippet + "\n" + content[loc[0]:]
}

// FallbackSuggestions builds a generic suggestion per issue from the
// validation result alone. Always returns at least one entry.
func FallbackSuggestions(def *templates.Definition, issues []templates.Issue) []FixSuggestion {
	var fixes []FixSuggestion
	for _, issue := range issues {
		switch issue.Type {
		case templates.IssueMissingPlaceholder:
			fixes = append(fixes, FixSuggestion{
				Issue:       issue.Message,
				Suggestion:  fmt.Sprintf("Add the {{%s}} placeholder where the value should appear in the document.", issue.Placeholder),
				CodeExample: fmt.Sprintf("<p>{{%s}}</p>", issue.Placeholder),
				Confidence:  "medium",
				AutoFixable: true,
			})
		case templates.IssueSecurityViolation:
			fixes = append(fixes, FixSuggestion{
				Issue:      issue.Message,
				Suggestion: "Remove the script, event handler, or javascript: URL. Templates render static documents and must not contain executable content.",
				Confidence: "high",
			})
		case templates.IssueInvalidSyntax:
			fixes = append(fixes, FixSuggestion{
				Issue:      issue.Message,
				Suggestion: "Check that every opening tag has a matching closing tag and that tags are closed in the reverse order they were opened.",
				Confidence: "medium",
			})
		case templates.IssueExternalResource:
			fixes = append(fixes, FixSuggestion{
				Issue:      issue.Message,
				Suggestion: "Inline the resource or remove the external reference. External URLs are blocked when previews render.",
				Confidence: "medium",
			})
		}
	}
	if len(fixes) == 0 {
		fixes = append(fixes, FixSuggestion{
			Issue:      "No specific problems identified",
			Suggestion: fmt.Sprintf("Review the template against the %s requirements and re-run validation.", def.Label),
			Confidence: "low",
		})
	}
	return fixes
}

func buildRepairPrompt(def *templates.Definition, sanitized string, issues []templates.Issue) string {
	var b strings.Builder
	b.WriteString("You are helping a property manager repair an HTML report template. ")
	b.WriteString(fmt.Sprintf("The template type is %q (%s).\n\n", def.Category, def.Label))

	b.WriteString("Required placeholders (each must appear as {{name}}):\n")
	for _, name := range def.Required {
		b.WriteString(fmt.Sprintf("- {{%s}}\n", name))
	}

	b.WriteString("\nValidation problems:\n")
	for i, issue := range issues {
		b.WriteString(fmt.Sprintf("%d. [%s/%s] %s", i+1, issue.Severity, issue.Type, issue.Message))
		if issue.Line > 0 {
			b.WriteString(fmt.Sprintf(" (line %d)", issue.Line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nTemplate content (personal data has been redacted):\n")
	b.WriteString("```html\n")
	b.WriteString(sanitized)
	b.WriteString("\n```\n\n")

	b.WriteString(`Respond with a single fenced JSON block in exactly this shape:
` + "```json" + `
{
  "analysis": "one paragraph summary of what is wrong",
  "fixes": [
    {
      "issue": "what is wrong",
      "suggestion": "how to fix it",
      "code_example": "corrected HTML snippet",
      "search": "exact text the snippet replaces, empty if it should be inserted",
      "location": "where in the template",
      "confidence": "high, medium or low",
      "auto_fixable": true
    }
  ]
}
` + "```" + `
Mark a fix auto_fixable only when code_example can be applied mechanically without human judgement. Do not invent placeholders outside the required list.`)

	return b.String()
}

var (
	emailPattern        = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	addressPattern      = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z][A-Za-z .]{0,40}?\b(Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Drive|Dr|Boulevard|Blvd|Court|Ct|Place|Pl|Way)\b\.?`)
	labeledPhonePattern = regexp.MustCompile(`(?i)\b((?:telephone|phone|tel|mobile|fax|cell)\s*:\s*)\+?\(?\d[\d\-. ()]{4,}\d`)
	phonePattern        = regexp.MustCompile(`\+?\(?\d[\d\-. ()]{6,}\d`)
)

// SanitizeContent strips personal data from template content before it
// is sent to the completion service. Emails, street addresses, and
// phone numbers are replaced with redaction markers. A number labeled as
// a phone ("Phone: 555-1234", href="tel:...") is redacted outright;
// unlabeled matching requires at least nine digits so dates and monetary
// amounts survive.
func SanitizeContent(content string) string {
	content = emailPattern.ReplaceAllString(content, "[redacted-email]")
	content = addressPattern.ReplaceAllString(content, "[redacted-address]")
	content = labeledPhonePattern.ReplaceAllString(content, "${1}[redacted-phone]")
	content = phonePattern.ReplaceAllStringFunc(content, func(match string) string {
		if countDigits(match) >= 9 {
			return "[redacted-phone]"
		}
		return match
	})
	return content
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseSuggestions extracts the fenced JSON block from a completion
// response. Responses without a fence fall back to the outermost braces.
func parseSuggestions(response string) (*suggestionPayload, error) {
	raw := ""
	if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
		raw = m[1]
	} else {
		start := strings.Index(response, "{")
		end := strings.LastIndex(response, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in completion response")
		}
		raw = response[start : end+1]
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid suggestion JSON: %w", err)
	}
	if len(payload.Fixes) == 0 {
		return nil, fmt.Errorf("completion response contained no fixes")
	}
	for i := range payload.Fixes {
		switch payload.Fixes[i].Confidence {
		case "high", "medium", "low":
		default:
			payload.Fixes[i].Confidence = "low"
		}
	}
	return &payload, nil
}
