// Package publish orchestrates the full publication cycle for a vault
// document: parse, classify, convert backlinks, build the payload, call the
// remote service, and write the resulting sync state back into the file
// header.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/ehwaz/internal/apperr"
	"github.com/starford/ehwaz/internal/backlink"
	"github.com/starford/ehwaz/internal/classify"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/parser"
	"github.com/starford/ehwaz/internal/payload"
	"github.com/starford/ehwaz/internal/remote"
	"github.com/starford/ehwaz/internal/storage"
)

// Notifier receives user-facing progress from the publish cycle. Surfaces
// (CLI, HTTP, MCP) provide their own implementation; a nil notifier is
// valid and silences everything, with Confirm defaulting to true.
type Notifier interface {
	Notify(msg string)
	Confirm(prompt string) bool
	PresentDebug(v any)
}

// EventSink receives publish lifecycle phases for broadcast to connected
// clients. Serve mode plugs in the SSE broker; one-shot commands leave it
// unset.
type EventSink interface {
	PublishSyncEvent(phase, path, detail string)
}

// Outcome summarizes a completed publish.
type Outcome struct {
	Path        string             `json:"path"`
	ContentType models.ContentType `json:"contentType"`
	OID         string             `json:"oid"`
	Created     bool               `json:"created"`
	URL         string             `json:"url,omitempty"`
}

// Service wires the vault, the index, and the remote client together.
type Service struct {
	store       storage.Provider
	idx         *index.DB
	remote      remote.Client
	meta        *remote.MetaCache
	siteBaseURL string
	logger      *slog.Logger
	notifier    Notifier
	events      EventSink
}

// SetEventSink attaches a lifecycle event broadcaster. A nil sink keeps
// events off.
func (s *Service) SetEventSink(sink EventSink) { s.events = sink }

func (s *Service) emit(phase, path, detail string) {
	if s.events != nil {
		s.events.PublishSyncEvent(phase, path, detail)
	}
}

func New(store storage.Provider, idx *index.DB, client remote.Client, meta *remote.MetaCache,
	siteBaseURL string, logger *slog.Logger, notifier Notifier) *Service {
	return &Service{
		store:       store,
		idx:         idx,
		remote:      client,
		meta:        meta,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		logger:      logger,
		notifier:    notifier,
	}
}

// vaultLookup adapts the index resolver and vault reader into the lookup
// the backlink converter needs.
type vaultLookup struct {
	idx   *index.DB
	store storage.Provider
}

func (v vaultLookup) Resolve(target string) (string, bool) { return v.idx.Resolve(target) }
func (v vaultLookup) Read(path string) ([]byte, error)     { return v.store.Read(path) }

// Publish runs the full cycle for the document at path. Backlink failures
// abort before any remote call is made so a half-converted document is
// never pushed.
func (s *Service) Publish(ctx context.Context, path string) (*Outcome, error) {
	s.emit("started", path, "")
	out, err := s.publish(ctx, path)
	if err != nil {
		s.emit("failed", path, err.Error())
		return nil, err
	}
	s.emit("completed", path, "")
	return out, nil
}

func (s *Service) publish(ctx context.Context, path string) (*Outcome, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("publish: read %s: %w", path, err)
	}

	res := parser.Parse(data)
	ctype := classify.Classify(res.Frontmatter)
	displayName := storage.DisplayName(path)

	conv := backlink.Convert(ctx, res.Body, s.siteBaseURL, vaultLookup{s.idx, s.store}, s.meta)
	if s.notifier != nil {
		s.notifier.PresentDebug(conv.Debug)
	}
	if len(conv.Errors) > 0 {
		var b strings.Builder
		for i, e := range conv.Errors {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", e.Reference, e.Reason)
		}
		return nil, fmt.Errorf("publish: %w: %s", apperr.ErrBacklinks, b.String())
	}

	oid, _ := res.Frontmatter.Text(models.KeyOID)
	now := time.Now().UTC().Format(time.RFC3339)

	var updates []models.Field
	out := &Outcome{Path: path, ContentType: ctype, Created: oid == ""}

	switch ctype {
	case models.TypeNote:
		p := payload.BuildNote(res.Frontmatter, conv.Text, displayName)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("publish: invalid note payload: %w", err)
		}
		var ref *remote.NoteRef
		if oid == "" {
			ref, err = s.remote.CreateNote(ctx, p)
		} else {
			ref, err = s.remote.UpdateNote(ctx, oid, p)
		}
		if err != nil {
			return nil, fmt.Errorf("publish: note %s: %w", path, err)
		}
		out.OID = ref.ID
		if s.siteBaseURL != "" && ref.NID != 0 {
			out.URL = fmt.Sprintf("%s/notes/%d", s.siteBaseURL, ref.NID)
		}
		updates = []models.Field{
			{Key: models.KeyOID, Value: ref.ID},
			{Key: models.KeyID, Value: ref.NID},
			{Key: models.KeyUpdated, Value: now},
			{Key: models.KeyType, Value: string(models.TypeNote)},
		}

	case models.TypePost:
		p, err := payload.BuildPost(ctx, res.Frontmatter, conv.Text, displayName, s.meta)
		if err != nil {
			return nil, fmt.Errorf("publish: post %s: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("publish: invalid post payload: %w", err)
		}
		var ref *remote.PostRef
		if oid == "" {
			ref, err = s.remote.CreatePost(ctx, p)
		} else {
			ref, err = s.remote.UpdatePost(ctx, oid, p)
		}
		if err != nil {
			return nil, fmt.Errorf("publish: post %s: %w", path, err)
		}
		out.OID = ref.ID
		out.URL = s.postURL(ctx, ref)
		updates = []models.Field{
			{Key: models.KeyOID, Value: ref.ID},
			{Key: models.KeySlug, Value: ref.Slug},
			{Key: models.KeyCategoryID, Value: ref.CategoryID},
			{Key: models.KeyUpdated, Value: now},
			{Key: models.KeyType, Value: string(models.TypePost)},
		}
	}

	merged := parser.Merge(data, updates)
	if err := s.store.Write(path, merged); err != nil {
		return nil, fmt.Errorf("publish: write back %s: %w", path, err)
	}
	if err := index.IndexFile(s.idx, path, merged); err != nil {
		s.logger.Warn("publish: reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	s.logger.Info("published",
		slog.String("path", path),
		slog.String("type", string(ctype)),
		slog.String("oid", out.OID),
		slog.Bool("created", out.Created))
	if s.notifier != nil {
		verb := "Updated"
		if out.Created {
			verb = "Published"
		}
		s.notifier.Notify(fmt.Sprintf("%s %s (%s)", verb, displayName, ctype))
	}
	return out, nil
}

// postURL addresses a post under the site base as /posts/{categorySlug}/{slug}.
// The category slug comes from the cached category list; an unknown id or an
// empty base yields no URL.
func (s *Service) postURL(ctx context.Context, ref *remote.PostRef) string {
	if s.siteBaseURL == "" || ref.Slug == "" {
		return ""
	}
	cats, _ := s.meta.Categories(ctx)
	for _, c := range cats {
		if c.ID == ref.CategoryID {
			return fmt.Sprintf("%s/posts/%s/%s", s.siteBaseURL, c.Slug, ref.Slug)
		}
	}
	return ""
}

// Preview runs backlink conversion without touching the remote service or
// the file. The caller decides what to do with the diagnostics.
func (s *Service) Preview(ctx context.Context, path string) (*backlink.Result, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("preview: read %s: %w", path, err)
	}
	res := parser.Parse(data)
	return backlink.Convert(ctx, res.Body, s.siteBaseURL, vaultLookup{s.idx, s.store}, s.meta), nil
}

// Delete removes the remote object and strips the sync state from the local
// file. The type marker stays so a later republish classifies the same way.
func (s *Service) Delete(ctx context.Context, path string) error {
	data, err := s.store.Read(path)
	if err != nil {
		return fmt.Errorf("delete: read %s: %w", path, err)
	}
	res := parser.Parse(data)

	oid, _ := res.Frontmatter.Text(models.KeyOID)
	if oid == "" {
		return fmt.Errorf("delete: %s: %w", path, apperr.ErrNotPublished)
	}

	ctype := classify.Classify(res.Frontmatter)
	if s.notifier != nil && !s.notifier.Confirm(fmt.Sprintf("Delete remote %s for %s?", ctype, path)) {
		return nil
	}

	switch ctype {
	case models.TypePost:
		err = s.remote.DeletePost(ctx, oid)
	default:
		err = s.remote.DeleteNote(ctx, oid)
	}
	if err != nil {
		return fmt.Errorf("delete: remote %s: %w", path, err)
	}

	if err := s.stripSyncState(path, data); err != nil {
		return err
	}
	s.logger.Info("deleted remote", slog.String("path", path), slog.String("oid", oid))
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("Deleted remote %s for %s", ctype, storage.DisplayName(path)))
	}
	return nil
}

// Unlink strips the sync state without touching the remote service. The next
// publish will create a fresh remote object.
func (s *Service) Unlink(path string) error {
	data, err := s.store.Read(path)
	if err != nil {
		return fmt.Errorf("unlink: read %s: %w", path, err)
	}
	if err := s.stripSyncState(path, data); err != nil {
		return err
	}
	s.logger.Info("unlinked", slog.String("path", path))
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("Unlinked %s", storage.DisplayName(path)))
	}
	return nil
}

func (s *Service) stripSyncState(path string, data []byte) error {
	stripped := parser.Strip(data, models.SyncKeys)
	if err := s.store.Write(path, stripped); err != nil {
		return fmt.Errorf("strip sync state: write %s: %w", path, err)
	}
	if err := index.IndexFile(s.idx, path, stripped); err != nil {
		s.logger.Warn("strip sync state: reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	return nil
}

// TestConnection probes the remote service.
func (s *Service) TestConnection(ctx context.Context) (*remote.ConnectionStatus, error) {
	return s.remote.TestConnection(ctx)
}
