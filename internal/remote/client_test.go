package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/ehwaz/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewHTTP(srv.URL, "secret-token", 0, nil)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	return c
}

func TestCreateNote_SendsBearerAndDecodesRef(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.Method + " " + r.URL.Path
		var p models.NotePayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		if p.Title != "My Note" {
			t.Errorf("payload title = %q", p.Title)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "abc", "nid": 42, "title": p.Title})
	}))

	ref, err := c.CreateNote(context.Background(), &models.NotePayload{Title: "My Note", Text: "body"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotPath != "POST /notes" {
		t.Errorf("path = %q", gotPath)
	}
	if ref.ID != "abc" || ref.NID != 42 {
		t.Errorf("ref = %+v", ref)
	}
}

func TestUpdatePost_Routing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/posts/p1" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "slug": "s", "categoryId": "c1"})
	}))
	ref, err := c.UpdatePost(context.Background(), "p1", &models.PostPayload{Title: "t", Slug: "s", CategoryID: "c1"})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if ref.Slug != "s" || ref.CategoryID != "c1" {
		t.Errorf("ref = %+v", ref)
	}
}

func TestErrorMessage_Priority(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 422, `{"message":"slug already taken"}`, "slug already taken"},
		{"raw text fallback", 500, "boom", "boom"},
		{"generic fallback", 503, "", "HTTP 503"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			_, err := c.CreateNote(context.Background(), &models.NotePayload{Title: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("err = %v, want StatusError", err)
			}
			if statusErr.Message != tc.want {
				t.Errorf("message = %q, want %q", statusErr.Message, tc.want)
			}
			if Classify(err) != KindHTTP {
				t.Errorf("kind = %v, want http", Classify(err))
			}
		})
	}
}

func TestCategories_EmptyListOnFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories must never fail: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("cats = %v, want empty", cats)
	}
}

func TestCategoryByNameOrSlug(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []models.Category{
			{ID: "c1", Name: "Technology", Slug: "tech"},
		}})
	}))
	got, err := c.CategoryByNameOrSlug(context.Background(), "tech")
	if err != nil || got == nil || got.ID != "c1" {
		t.Fatalf("got %+v, err %v", got, err)
	}
	missing, err := c.CategoryByNameOrSlug(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Errorf("missing = %+v, err %v", missing, err)
	}
}

func TestTestConnection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "isGuest": false})
	}))
	st, err := c.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
	if !st.OK {
		t.Errorf("status = %+v", st)
	}
}

func TestTestConnection_UnreachableReportsDiagnostic(t *testing.T) {
	c, err := NewHTTP("http://127.0.0.1:1", "", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	st, err := c.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection must not fail hard: %v", err)
	}
	if st.OK || st.Diagnostic == "" {
		t.Errorf("status = %+v, want not-ok with diagnostic", st)
	}
	if !strings.Contains(st.Diagnostic, "remote service unreachable") {
		t.Errorf("diagnostic = %q, want a transport description", st.Diagnostic)
	}
}

func TestDescribe(t *testing.T) {
	statusErr := fmt.Errorf("remote: POST /notes: %w", &StatusError{Status: 403, Message: "forbidden"})
	if got := Describe(statusErr); !strings.Contains(got, "HTTP 403") || !strings.Contains(got, "forbidden") {
		t.Errorf("Describe(status) = %q", got)
	}
	if got := Describe(errors.New("boom")); !strings.Contains(got, "remote service unreachable") {
		t.Errorf("Describe(transport) = %q", got)
	}
}

func TestNewHTTP_RejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "not a url", "relative/path"} {
		if _, err := NewHTTP(endpoint, "", 0, nil); err == nil {
			t.Errorf("NewHTTP(%q) should fail", endpoint)
		}
	}
}
