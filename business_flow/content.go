package businessflow

import (
	"strings"

	"github.com/tavolo/tavolo/utils"
)

// firstNamePlaceholders are the spellings accepted in campaign bodies
var firstNamePlaceholders = []string{"{FirstName}", "{firstname}", "{FIRSTNAME}"}

// RenderTemplate substitutes every first-name placeholder spelling in the
// template. Diners without a recorded first name render with an empty
// string. Rendering is idempotent: the output contains no placeholders.
func RenderTemplate(template string, firstName *string) string {
	var name string
	if firstName != nil {
		name = strings.TrimSpace(*firstName)
	}

	rendered := template
	for _, placeholder := range firstNamePlaceholders {
		rendered = strings.ReplaceAll(rendered, placeholder, name)
	}
	return rendered
}

// HasFirstNamePlaceholder reports whether the template personalizes by name
func HasFirstNamePlaceholder(template string) bool {
	for _, placeholder := range firstNamePlaceholders {
		if strings.Contains(template, placeholder) {
			return true
		}
	}
	return false
}

// EnsureFirstNamePlaceholder prepends a greeting when the copy carries no
// personalization placeholder
func EnsureFirstNamePlaceholder(body string) string {
	if HasFirstNamePlaceholder(body) {
		return body
	}
	return "Hi {FirstName}! " + body
}

// TruncateAtWordBoundary shortens s to at most maxLen runes. When the text
// is cut, the cut lands on the last word boundary that leaves room for the
// trailing ellipsis, so no word is split mid-way.
func TruncateAtWordBoundary(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	cut := maxLen - 3
	truncated := string(runes[:cut])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return strings.TrimRight(truncated, " ,.;:!?") + "..."
}

// TidySubject normalizes an email subject to a single line within the
// recommended header length
func TidySubject(subject string) string {
	subject = strings.Join(strings.Fields(subject), " ")
	subject = strings.Trim(subject, `"'`)
	return TruncateAtWordBoundary(subject, utils.MaxEmailSubjectLength)
}

// DinerDisplayName builds the name a preview addresses the diner by
func DinerDisplayName(firstName, lastName *string) string {
	var parts []string
	if firstName != nil && strings.TrimSpace(*firstName) != "" {
		parts = append(parts, strings.TrimSpace(*firstName))
	}
	if lastName != nil && strings.TrimSpace(*lastName) != "" {
		parts = append(parts, strings.TrimSpace(*lastName))
	}
	if len(parts) == 0 {
		return "Diner"
	}
	return strings.Join(parts, " ")
}
