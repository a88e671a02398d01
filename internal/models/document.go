// Package models defines the domain types for Ehwaz.
package models

import (
	"strings"
	"time"
)

// ContentType is the publishable shape of a document. It is always derived
// from frontmatter, never stored independently of it.
type ContentType string

const (
	TypeNote ContentType = "note"
	TypePost ContentType = "post"
)

// DocumentMeta is a lightweight representation returned by vault listings.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"` // basename without extension
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a remote taxonomy entity classifying Posts. Immutable from
// this system's point of view.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Summary renders the category as "name(slug)" for diagnostics.
func (c Category) Summary() string {
	return c.Name + "(" + c.Slug + ")"
}

// CategorySummaries renders all categories for an error message, or "none".
func CategorySummaries(cats []Category) string {
	if len(cats) == 0 {
		return "none"
	}
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = c.Summary()
	}
	return strings.Join(parts, ", ")
}

// MatchCategory resolves a raw frontmatter category value against the remote
// list: exact slug match first, then exact name match, then id. The second
// return value names how the match was made ("slug", "name", "id", or "").
func MatchCategory(cats []Category, value string) (*Category, string) {
	for i := range cats {
		if cats[i].Slug == value {
			return &cats[i], "slug"
		}
	}
	for i := range cats {
		if cats[i].Name == value {
			return &cats[i], "name"
		}
	}
	for i := range cats {
		if cats[i].ID == value {
			return &cats[i], "id"
		}
	}
	return nil, ""
}

// Topic is a remote grouping entity for Notes (optional, unlike categories).
type Topic struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Introduce string `json:"introduce,omitempty"`
}

// NormalizeTags accepts either an ordered list of strings or a single
// comma-separated string and returns trimmed, non-empty tags. The literal
// forms "[]" and "[ ]" mean "no tags", not a single literal tag.
func NormalizeTags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "[]" || s == "[ ]" {
			return nil
		}
		raw = strings.Split(s, ",")
	default:
		return nil
	}
	var out []string
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
