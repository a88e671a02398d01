// Package payload builds normalized create/update payloads from parsed
// documents.
package payload

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/ehwaz/internal/apperr"
	"github.com/starford/ehwaz/internal/models"
)

// CategorySource supplies the remote category list for Post resolution.
// Both the live client and the metadata cache satisfy it.
type CategorySource interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// BuildNote assembles a Note payload. The title is always the caller's
// display name (the file name), never the in-document title field; optional
// fields are copied only when present in the frontmatter.
func BuildNote(fm *models.Frontmatter, body, displayName string) *models.NotePayload {
	p := &models.NotePayload{
		Title: displayName,
		Text:  stripTitleHeading(body, displayName),
	}
	if v, ok := fm.Text(models.FieldMood); ok {
		p.Mood = v
	}
	if v, ok := fm.Text(models.FieldWeather); ok {
		p.Weather = v
	}
	if v, ok := fm.Bool("allowComment"); ok {
		p.AllowComment = &v
	}
	if v, ok := fm.Text("password"); ok {
		p.Password = v
	}
	if v, ok := fm.Text("publicAt"); ok {
		p.PublicAt = v
	}
	if v, ok := fm.Bool("bookmark"); ok {
		p.Bookmark = &v
	}
	if v, ok := fm.Text("location"); ok {
		p.Location = v
	}
	if coords, ok := parseCoordinates(fm); ok {
		p.Coordinates = coords
	}
	if v, ok := fm.Text(models.FieldTopicID); ok {
		p.TopicID = v
	}
	return p
}

// BuildPost assembles a Post payload, resolving the category against the
// remote list. It fails when the category cannot be resolved; the error
// then enumerates every available category for diagnostics.
func BuildPost(ctx context.Context, fm *models.Frontmatter, body, displayName string, cats CategorySource) (*models.PostPayload, error) {
	categoryID, err := resolveCategoryID(ctx, fm, displayName, cats)
	if err != nil {
		return nil, err
	}

	slug, ok := fm.Text(models.FieldSlug)
	if !ok || slug == "" {
		slug = Slugify(displayName)
	}

	p := &models.PostPayload{
		Title:      displayName,
		Text:       stripTitleHeading(body, displayName),
		Slug:       slug,
		CategoryID: categoryID,
	}
	if raw, ok := fm.Get(models.FieldTags); ok {
		p.Tags = models.NormalizeTags(raw)
	}
	if v, ok := fm.Text("summary"); ok {
		p.Summary = v
	}
	if v, ok := fm.Bool("copyright"); ok {
		p.Copyright = &v
	}
	if v, ok := fm.Bool("allowComment"); ok {
		p.AllowComment = &v
	}
	if v, ok := fm.Bool("pin"); ok {
		p.Pin = &v
	}
	return p, nil
}

func resolveCategoryID(ctx context.Context, fm *models.Frontmatter, displayName string, cats CategorySource) (string, error) {
	// A direct id wins without a remote lookup.
	if id, ok := fm.Text(models.FieldCategoryID); ok && id != "" {
		return id, nil
	}

	name, ok := fm.Text(models.FieldCategories)
	if !ok || name == "" {
		return "", fmt.Errorf("payload: post %q has neither a category nor a categoryId: %w",
			displayName, apperr.ErrMissingCategory)
	}

	available, err := cats.Categories(ctx)
	if err != nil {
		return "", fmt.Errorf("payload: load categories: %w", err)
	}
	if match, _ := models.MatchCategory(available, name); match != nil {
		return match.ID, nil
	}
	return "", fmt.Errorf("payload: category %q not found, available: %s: %w",
		name, models.CategorySummaries(available), apperr.ErrCategoryNotFound)
}

// stripTitleHeading drops a leading level-1 heading that exactly matches
// the resolved title, plus any blank lines right after it, so the title is
// not duplicated inside the rendered content.
func stripTitleHeading(body, title string) string {
	lines := strings.Split(body, "\n")
	if len(lines) == 0 {
		return body
	}
	first := strings.TrimRight(lines[0], "\r ")
	if !strings.HasPrefix(first, "# ") || strings.TrimSpace(first[2:]) != title {
		return body
	}
	i := 1
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return strings.Join(lines[i:], "\n")
}

// parseCoordinates reads the "coordinates" field as either a "lat, lng"
// string or a two-element list. Malformed values are ignored, not errors.
func parseCoordinates(fm *models.Frontmatter) (*models.Coordinates, bool) {
	raw, ok := fm.Get("coordinates")
	if !ok {
		return nil, false
	}
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	default:
		return nil, false
	}
	if len(parts) != 2 {
		return nil, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return &models.Coordinates{Latitude: lat, Longitude: lng}, true
}
