package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/publish"
	"github.com/starford/ehwaz/internal/remote"
	"github.com/starford/ehwaz/internal/storage"
	"github.com/starford/ehwaz/internal/testutil"
)

type stubRemote struct{}

func (stubRemote) CreateNote(_ context.Context, p *models.NotePayload) (*remote.NoteRef, error) {
	return &remote.NoteRef{ID: "oid-1", NID: 3, Title: p.Title}, nil
}

func (stubRemote) UpdateNote(_ context.Context, id string, p *models.NotePayload) (*remote.NoteRef, error) {
	return &remote.NoteRef{ID: id, NID: 3, Title: p.Title}, nil
}

func (stubRemote) DeleteNote(context.Context, string) error { return nil }

func (stubRemote) CreatePost(_ context.Context, p *models.PostPayload) (*remote.PostRef, error) {
	return &remote.PostRef{ID: "oid-2", Slug: p.Slug, CategoryID: p.CategoryID, Title: p.Title}, nil
}

func (stubRemote) UpdatePost(_ context.Context, id string, p *models.PostPayload) (*remote.PostRef, error) {
	return &remote.PostRef{ID: id, Slug: p.Slug, CategoryID: p.CategoryID, Title: p.Title}, nil
}

func (stubRemote) DeletePost(context.Context, string) error { return nil }

func (stubRemote) Categories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "cat-1", Name: "Technology", Slug: "tech"}}, nil
}

func (stubRemote) Topics(context.Context) ([]models.Topic, error) { return nil, nil }

func (s stubRemote) CategoryByNameOrSlug(_ context.Context, value string) (*models.Category, error) {
	cats, _ := s.Categories(context.Background())
	c, _ := models.MatchCategory(cats, value)
	return c, nil
}

func (stubRemote) TestConnection(context.Context) (*remote.ConnectionStatus, error) {
	return &remote.ConnectionStatus{OK: true}, nil
}

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	client := stubRemote{}
	meta := remote.NewMetaCache(client, time.Minute)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := publish.New(store, db, client, meta, "https://example.com", logger, nil)

	srv := New(svc, store, db)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "publish_document":
		result, err = srv.publishDocument(ctx, req)
	case "preview_backlinks":
		result, err = srv.previewBacklinks(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "test_connection":
		result, err = srv.testConnection(ctx, req)
	case "get_publish_contract":
		result, err = srv.getPublishContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestPublishDocumentTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("hello.md", []byte("---\nmood: good\n---\nHello.\n"))

	r := callTool(t, srv, "publish_document", map[string]interface{}{"path": "hello.md"})
	if r.IsError {
		t.Fatalf("publish errored: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"oid": "oid-1"`) {
		t.Errorf("result = %q", text)
	}
}

func TestPublishDocumentTool_BacklinkFailure(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("broken.md", []byte("---\nmood: ok\n---\nSee [[Nowhere]].\n"))

	r := callTool(t, srv, "publish_document", map[string]interface{}{"path": "broken.md"})
	if !r.IsError {
		t.Fatal("expected error for unresolved backlink")
	}
	if !strings.Contains(resultText(r), "file not found") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestPreviewBacklinksTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("p.md", []byte("---\nmood: ok\n---\nSee [[Nowhere]].\n"))

	r := callTool(t, srv, "preview_backlinks", map[string]interface{}{"path": "p.md"})
	if r.IsError {
		t.Fatalf("preview errored: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "file not found") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestReadDocumentTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("test.md", []byte("# Test\nHello"))

	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "test.md"})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestListDocumentsTool(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("a.md", []byte("a"))
	_ = store.Write("b.md", []byte("b"))

	r := callTool(t, srv, "list_documents", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.md") || !strings.Contains(text, "b.md") {
		t.Errorf("list result = %q", text)
	}
}

func TestTestConnectionTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "test_connection", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"ok": true`) {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestGetPublishContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_publish_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Frontmatter Contract") {
		t.Errorf("contract missing heading: %q", resultText(r))
	}
}
