package remote

import (
	"context"

	"github.com/starford/ehwaz/internal/models"
)

// NoteRef identifies a remote Note after a mutation.
type NoteRef struct {
	ID    string `json:"id"`
	NID   int64  `json:"nid"`
	Title string `json:"title"`
}

// PostRef identifies a remote Post after a mutation.
type PostRef struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	CategoryID string `json:"categoryId"`
	Title      string `json:"title"`
}

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus struct {
	OK         bool   `json:"ok"`
	IsGuest    bool   `json:"isGuest,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Client is the stateless request/response wrapper around the remote
// content service. Consumers should depend on this interface rather than
// the concrete *HTTPClient to facilitate testing with fakes.
//
// Categories and Topics return an empty list on failure, never an error.
// TestConnection reports failures through ConnectionStatus, never an error.
type Client interface {
	CreateNote(ctx context.Context, p *models.NotePayload) (*NoteRef, error)
	UpdateNote(ctx context.Context, id string, p *models.NotePayload) (*NoteRef, error)
	DeleteNote(ctx context.Context, id string) error

	CreatePost(ctx context.Context, p *models.PostPayload) (*PostRef, error)
	UpdatePost(ctx context.Context, id string, p *models.PostPayload) (*PostRef, error)
	DeletePost(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]models.Category, error)
	Topics(ctx context.Context) ([]models.Topic, error)
	CategoryByNameOrSlug(ctx context.Context, value string) (*models.Category, error)

	TestConnection(ctx context.Context) (*ConnectionStatus, error)
}

// Verify *HTTPClient satisfies Client at compile time.
var _ Client = (*HTTPClient)(nil)
