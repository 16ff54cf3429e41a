package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Chocolate Cake" → "chocolate-cake"
//   - "Tarts & Pies" → "tarts-pies"
//   - "  Hello   World!  " → "hello-world"
//
// Generate is idempotent: applying it to its own output returns the same slug.
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	// Replace any run of non-alphanumeric characters with a single hyphen.
	slug = slugRegexp.ReplaceAllString(slug, "-")

	// Trim leading and trailing hyphens.
	return strings.Trim(slug, "-")
}
