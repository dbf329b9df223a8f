package records

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-{2,}`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// DeriveSlug turns a title into a URL-safe slug: lowercase letters, digits, and
// single interior hyphens. The result is stable under repeated application.
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether value is an acceptable manual slug.
func ValidSlug(value string) bool {
	if !slugPattern.MatchString(value) {
		return false
	}
	return slug.IsValid(value)
}
