package payload

import (
	"regexp"
	"strings"
)

// Runs of anything outside lowercase Latin, digits, and CJK ideographs
// collapse to a single hyphen. Keeping the Han range means CJK titles stay
// legible in slugs instead of collapsing entirely.
var slugStripRe = regexp.MustCompile(`[^a-z0-9\p{Han}]+`)

// Slugify derives a URL-safe slug from a title. Idempotent:
// Slugify(Slugify(x)) == Slugify(x).
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
