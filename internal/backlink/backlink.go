// Package backlink rewrites [[wikilink]] references into remote URLs.
package backlink

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/ehwaz/internal/apperr"
	"github.com/starford/ehwaz/internal/classify"
	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/parser"
)

var refRe = regexp.MustCompile(`\[\[(.+?)\]\]`)

// FileLookup resolves a reference target to a vault path and reads it.
// Resolution tries an exact identifier match first (case-sensitive name or
// path, with or without the markdown extension), then a case-insensitive
// basename match.
type FileLookup interface {
	Resolve(target string) (string, bool)
	Read(path string) ([]byte, error)
}

// CategorySource supplies the remote category list, fetched once per call.
type CategorySource interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// RefError is one failed reference. Any RefError blocks the whole publish.
type RefError struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// Trace records how a single reference was handled, success or not.
type Trace struct {
	Target       string `json:"target"`
	ResolvedPath string `json:"resolvedPath,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	RawCategory  string `json:"rawCategory,omitempty"`
	Note         string `json:"note,omitempty"`
	URL          string `json:"url,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Debug carries the diagnostics shown in the preview surface.
type Debug struct {
	CategoriesLoaded int      `json:"categoriesLoaded"`
	Categories       []string `json:"categories,omitempty"`
	Conversions      []Trace  `json:"conversions,omitempty"`
}

// Result is the conversion outcome. Errors is empty iff every reference in
// the input resolved; a non-empty Errors list means the caller must abort
// the publish before any remote write.
type Result struct {
	Text   string     `json:"text"`
	Errors []RefError `json:"errors,omitempty"`
	Debug  Debug      `json:"debug"`
}

// Convert rewrites every [[target]] and [[target|label]] reference in body
// to a standard link addressed under siteBaseURL. Individual failures are
// collected and processing continues; nothing short-circuits.
//
// With an empty siteBaseURL the conversion is a passthrough: the text is
// returned unchanged with zero errors, but category debug info is still
// gathered so callers can preview diagnostics while conversion is disabled.
func Convert(ctx context.Context, body, siteBaseURL string, files FileLookup, cats CategorySource) *Result {
	res := &Result{Text: body}

	var categories []models.Category
	if cats != nil {
		if list, err := cats.Categories(ctx); err == nil {
			categories = list
		}
		res.Debug.CategoriesLoaded = len(categories)
		for _, c := range categories {
			res.Debug.Categories = append(res.Debug.Categories, c.Summary())
		}
	}

	if siteBaseURL == "" {
		return res
	}
	base := strings.TrimRight(siteBaseURL, "/")

	matches := refRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return res
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		spanStart, spanEnd := m[0], m[1]
		target, label := splitAlias(body[m[2]:m[3]])

		trace := Trace{Target: target}
		url, err := resolveRef(target, base, files, categories, &trace)

		out.WriteString(body[last:spanStart])
		if err != nil {
			trace.Error = err.Error()
			res.Errors = append(res.Errors, RefError{Reference: target, Reason: err.Error()})
			out.WriteString(body[spanStart:spanEnd])
		} else {
			trace.URL = url
			out.WriteString("[" + label + "](" + url + ")")
		}
		res.Debug.Conversions = append(res.Debug.Conversions, trace)
		last = spanEnd
	}
	out.WriteString(body[last:])
	res.Text = out.String()
	return res
}

// resolveRef turns one reference into its remote URL, filling the trace as
// it goes.
func resolveRef(target, base string, files FileLookup, cats []models.Category, trace *Trace) (string, error) {
	path, ok := files.Resolve(target)
	if !ok {
		trace.Note = "no vault file matched, exact or case-insensitive"
		return "", fmt.Errorf("file %w", apperr.ErrNotFound)
	}
	trace.ResolvedPath = path

	data, err := files.Read(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %v", path, err)
	}
	doc := parser.Parse(data)
	fm := doc.Frontmatter

	if oid, hasOID := fm.Text(models.KeyOID); !hasOID || oid == "" {
		trace.Note = "target has no remote object id"
		return "", apperr.ErrNotPublished
	}

	contentType := classify.Classify(fm)
	trace.ContentType = string(contentType)

	if contentType == models.TypeNote {
		id, hasID := fm.Int(models.KeyID)
		if !hasID {
			trace.Note = "published note without numeric identifier"
			return "", apperr.ErrMissingIdentifier
		}
		trace.Note = "note by numeric identifier"
		return base + "/notes/" + strconv.FormatInt(id, 10), nil
	}

	slug, hasSlug := fm.Text(models.FieldSlug)
	if !hasSlug || slug == "" {
		trace.Note = "published post without slug"
		return "", apperr.ErrMissingSlug
	}

	rawCategory, _ := fm.Text(models.FieldCategoryID)
	if rawCategory == "" {
		rawCategory, _ = fm.Text(models.FieldCategories)
	}
	trace.RawCategory = rawCategory
	if rawCategory == "" {
		trace.Note = "published post without category"
		return "", apperr.ErrMissingCategory
	}

	match, how := models.MatchCategory(cats, rawCategory)
	if match == nil {
		trace.Note = fmt.Sprintf("category %q not in cached list", rawCategory)
		return "", fmt.Errorf("category %q not found, available: %s",
			rawCategory, models.CategorySummaries(cats))
	}
	trace.Note = "category matched by " + how
	return base + "/posts/" + match.Slug + "/" + slug, nil
}

// splitAlias separates "target|display label" forms. The label defaults to
// the raw target name.
func splitAlias(inner string) (target, label string) {
	target = inner
	label = ""
	if i := strings.Index(inner, "|"); i >= 0 {
		target = inner[:i]
		label = strings.TrimSpace(inner[i+1:])
	}
	target = strings.TrimSpace(target)
	if label == "" {
		label = target
	}
	return target, label
}
