// Package remote implements the REST client for the content service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

const maxErrorBody = 1 << 20

// HTTPClient talks to the remote content service over plain REST with a
// bearer credential. Timeouts and cancellation come from the per-request
// context plus the configured client timeout; the client never retries —
// a failed call fails the whole invocation, surfaced for manual retry.
type HTTPClient struct {
	base   string
	token  string
	http   *http.Client
	logger *slog.Logger
}

// NewHTTP creates a client for the given endpoint and credential.
func NewHTTP(endpoint, token string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote: invalid endpoint %q", endpoint)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		base:   strings.TrimRight(endpoint, "/"),
		token:  token,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// CreateNote handles POST /notes.
func (c *HTTPClient) CreateNote(ctx context.Context, p *models.NotePayload) (*NoteRef, error) {
	var ref NoteRef
	if err := c.doJSON(ctx, http.MethodPost, "/notes", p, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// UpdateNote handles PUT /notes/{id}.
func (c *HTTPClient) UpdateNote(ctx context.Context, id string, p *models.NotePayload) (*NoteRef, error) {
	var ref NoteRef
	if err := c.doJSON(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), p, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// DeleteNote handles DELETE /notes/{id}.
func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

// CreatePost handles POST /posts.
func (c *HTTPClient) CreatePost(ctx context.Context, p *models.PostPayload) (*PostRef, error) {
	var ref PostRef
	if err := c.doJSON(ctx, http.MethodPost, "/posts", p, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// UpdatePost handles PUT /posts/{id}.
func (c *HTTPClient) UpdatePost(ctx context.Context, id string, p *models.PostPayload) (*PostRef, error) {
	var ref PostRef
	if err := c.doJSON(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), p, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// DeletePost handles DELETE /posts/{id}.
func (c *HTTPClient) DeletePost(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil)
}

// Categories returns the remote category list. On any failure it logs and
// returns an empty list; autocompletion and diagnostics must keep working
// without a reachable remote.
func (c *HTTPClient) Categories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Data []models.Category `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		c.logger.Warn("remote: list categories failed", slog.String("error", err.Error()))
		return []models.Category{}, nil
	}
	return out.Data, nil
}

// Topics returns the remote topic list, empty on failure like Categories.
func (c *HTTPClient) Topics(ctx context.Context) ([]models.Topic, error) {
	var out struct {
		Data []models.Topic `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/topics", nil, &out); err != nil {
		c.logger.Warn("remote: list topics failed", slog.String("error", err.Error()))
		return []models.Topic{}, nil
	}
	return out.Data, nil
}

// CategoryByNameOrSlug resolves a single category, or nil when no category
// matches.
func (c *HTTPClient) CategoryByNameOrSlug(ctx context.Context, value string) (*models.Category, error) {
	cats, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	match, _ := models.MatchCategory(cats, value)
	return match, nil
}

// TestConnection probes the remote service. Failures are reported through
// the status, not as an error, so callers can render diagnostics directly.
func (c *HTTPClient) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	var status ConnectionStatus
	if err := c.doJSON(ctx, http.MethodGet, "/ping", nil, &status); err != nil {
		return &ConnectionStatus{
			OK:         false,
			Diagnostic: Describe(err),
		}, nil
	}
	status.OK = true
	return &status, nil
}

// doJSON performs one request. Non-2xx responses become a *StatusError
// whose message is the response's error message field, else the raw
// response text, else a generic "HTTP {status}" string.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("remote: %s %s: %w", method, path, &StatusError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, raw),
		})
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(status int, raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
