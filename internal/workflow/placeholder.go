package workflow

import (
	"strings"
	"unicode"
)

// --- Placeholder detection ---
//
// Agents routinely invent generic resource names ("my_table",
// "sample_schema.users") instead of asking the user for real warehouse
// objects. The detector flags those so they can never be confirmed or
// approved.

// exactPatterns are matched against the whole normalized name and
// against each delimited token.
var exactPatterns = map[string]struct{}{
	"my_database":     {},
	"my_schema":       {},
	"my_table":        {},
	"my_connection":   {},
	"example_db":      {},
	"sample_schema":   {},
	"test_table":      {},
	"your_database":   {},
	"your_schema":     {},
	"your_table":      {},
	"database_name":   {},
	"schema_name":     {},
	"table_name":      {},
	"connection_name": {},
	"user_confirmed":  {},
	"user_chosen":     {},
}

// prefixPatterns are matched against the start of the normalized name.
var prefixPatterns = []string{"my_", "your_", "demo_", "example_"}

// IsPlaceholder reports whether name looks like a generic/fake resource
// name rather than a real warehouse identifier.
//
// The input is lowercased and split into tokens on every
// non-alphanumeric rune. A name is a placeholder when the whole
// normalized string matches a pattern exactly, any token matches a
// pattern exactly, or the normalized string starts with a prefix
// pattern. Empty or whitespace-only input is not a placeholder.
func IsPlaceholder(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}

	if _, ok := exactPatterns[normalized]; ok {
		return true
	}

	for _, prefix := range prefixPatterns {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}

	for _, token := range splitTokens(normalized) {
		if _, ok := exactPatterns[token]; ok {
			return true
		}
	}

	return false
}

// splitTokens breaks a normalized name on every non-alphanumeric rune.
// "prod_db.events" → ["prod", "db", "events"].
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
