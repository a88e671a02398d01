package api

import (
	"time"

	"github.com/starford/ehwaz/internal/backlink"
	"github.com/starford/ehwaz/internal/publish"
	"github.com/starford/ehwaz/internal/remote"
)

// PathRequest is the request body shared by the publish, preview, delete,
// and unlink endpoints.
type PathRequest struct {
	Path string `json:"path" example:"topics/hello.md" validate:"required"`
}

// PublishResponse is returned after a successful publish.
type PublishResponse = publish.Outcome

// PreviewResponse is the backlink conversion result for a document.
type PreviewResponse = backlink.Result

// PingResponse reports remote connectivity.
type PingResponse = remote.ConnectionStatus

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path        string    `json:"path" example:"topics/hello.md" validate:"required"`
	Name        string    `json:"name" example:"hello"`
	Title       string    `json:"title,omitempty" example:"Hello"`
	Tags        []string  `json:"tags,omitempty"`
	ContentType string    `json:"contentType,omitempty" example:"post"`
	OID         string    `json:"oid,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	Published   bool      `json:"published"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// BacklinksResponse lists the documents whose wikilinks point at a path.
type BacklinksResponse struct {
	Path      string   `json:"path" example:"topics/hello.md" validate:"required"`
	Backlinks []string `json:"backlinks" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"topics/hello.md" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
