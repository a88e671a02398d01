package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/ehwaz/internal/apperr"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/publish"
)

// Handler holds API route handlers.
type Handler struct {
	svc *publish.Service
	idx index.DocumentIndex
}

// NewHandler creates a new Handler.
func NewHandler(svc *publish.Service, idx index.DocumentIndex) *Handler {
	return &Handler{svc: svc, idx: idx}
}

func decodePathRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return "", false
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", false
	}
	return req.Path, true
}

// writePublishError maps publish-cycle failures onto HTTP statuses:
// unknown paths are 404, resolution failures that the caller can fix in the
// document are 422, everything else is a 502/500 split on remote vs local.
func writePublishError(w http.ResponseWriter, path string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrBacklinks),
		errors.Is(err, apperr.ErrMissingCategory),
		errors.Is(err, apperr.ErrCategoryNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotPublished):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error("publish cycle failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	}
}

// Publish handles POST /api/publish.
//
//	@Summary		Publish a vault document to the remote service
//	@Tags			publish
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Document to publish"
//	@Success		200		{object}	PublishResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/publish [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePathRequest(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Publish(r.Context(), path)
	if err != nil {
		writePublishError(w, path, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Preview handles POST /api/preview.
//
//	@Summary		Preview backlink conversion without publishing
//	@Tags			publish
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Document to preview"
//	@Success		200		{object}	PreviewResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePathRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Preview(r.Context(), path)
	if err != nil {
		writePublishError(w, path, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete handles POST /api/delete.
//
//	@Summary		Delete the remote object and strip local sync state
//	@Tags			publish
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Document to delete remotely"
//	@Success		204		{object}	nil
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePathRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		writePublishError(w, path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlink handles POST /api/unlink.
//
//	@Summary		Strip local sync state without touching the remote service
//	@Tags			publish
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Document to unlink"
//	@Success		204		{object}	nil
//	@Security		BearerAuth
//	@Router			/unlink [post]
func (h *Handler) Unlink(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePathRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unlink(path); err != nil {
		writePublishError(w, path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ping handles GET /api/ping.
//
//	@Summary		Probe remote connectivity
//	@Tags			publish
//	@Produce		json
//	@Success		200	{object}	PingResponse
//	@Security		BearerAuth
//	@Router			/ping [get]
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.TestConnection(r.Context())
	if err != nil {
		slog.Error("ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents with pagination
//	@Tags			documents
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			published	query		bool	false	"Only published documents"
//	@Success		200			{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	publishedOnly := q.Get("published") == "true"

	rows, total, err := h.idx.ListDocuments(limit, offset, publishedOnly)
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]DocumentListItem, 0, len(rows))
	for _, d := range rows {
		items = append(items, DocumentListItem{
			Path:        d.Path,
			Name:        d.Name,
			Title:       d.Title,
			Tags:        d.Tags,
			ContentType: d.ContentType,
			OID:         d.OID,
			Slug:        d.Slug,
			Published:   d.Published(),
			UpdatedAt:   d.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: total})
}

// Backlinks handles GET /api/backlinks.
//
//	@Summary		List documents linking to a vault path
//	@Tags			documents
//	@Produce		json
//	@Param			path	query		string	true	"Target document path"
//	@Success		200		{object}	BacklinksResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path query parameter is required"))
		return
	}
	doc, err := h.idx.GetDocument(target)
	if err != nil {
		slog.Error("backlinks lookup failed", slog.String("path", target), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	sources, err := h.idx.Backlinks(target)
	if err != nil {
		slog.Error("backlinks lookup failed", slog.String("path", target), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Path: target, Backlinks: sources})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over the vault index
//	@Tags			documents
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
