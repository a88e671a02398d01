// Package classify derives the publishable content type from frontmatter.
package classify

import (
	"strings"

	"github.com/starford/ehwaz/internal/models"
)

// Classify maps a frontmatter map to Note or Post. Pure function; the type
// is always recomputed, never cached across publish cycles.
//
// Decision order is load-bearing: an explicit type declaration overrides
// inferred signals, and category signals override note-specific signals
// when both are present.
func Classify(fm *models.Frontmatter) models.ContentType {
	if t, ok := fm.Text(models.FieldType); ok {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case string(models.TypePost):
			return models.TypePost
		case string(models.TypeNote):
			return models.TypeNote
		}
	}
	if fm.Has(models.FieldCategories) || fm.Has(models.FieldCategoryID) {
		return models.TypePost
	}
	if fm.Has(models.FieldMood) || fm.Has(models.FieldWeather) || fm.Has(models.FieldTopicID) {
		return models.TypeNote
	}
	return models.TypeNote
}
