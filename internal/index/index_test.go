package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ehwaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{
		Path:        "hello.md",
		Name:        "hello",
		Title:       "Hello World",
		Checksum:    "abc123",
		Tags:        []string{"go", "test"},
		OID:         "obj-1",
		ContentType: "note",
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertDocument(row, "This is a hello world document.", []string{"other.md"}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	got, err := db.GetDocument("hello.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got == nil {
		t.Fatal("document not found after upsert")
	}
	if got.Checksum != "abc123" {
		t.Errorf("checksum = %q, want %q", got.Checksum, "abc123")
	}
	if got.OID != "obj-1" || !got.Published() {
		t.Errorf("oid = %q, published = %v", got.OID, got.Published())
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", got.Tags)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "a.md", Name: "a", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"b.md"})
	_ = db.UpsertDocument(DocumentRow{Path: "c.md", Name: "c", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"b.md"})

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestBacklinks_MatchesExtensionFreeTargets(t *testing.T) {
	db := testDB(t)
	// Wikilink targets are stored raw, usually without the extension.
	_ = db.UpsertDocument(DocumentRow{Path: "a.md", Name: "a", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"b"})
	_ = db.UpsertDocument(DocumentRow{Path: "c.md", Name: "c", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"b.md", "b"})

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 || bl[0] != "a.md" || bl[1] != "c.md" {
		t.Fatalf("backlinks = %v, want [a.md c.md]", bl)
	}
}

func TestGetDocument_MissingReturnsNilWithoutError(t *testing.T) {
	db := testDB(t)
	got, err := db.GetDocument("ghost.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil", got)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "del.md", Name: "del", Checksum: "x", UpdatedAt: time.Now()}, "body", []string{"target.md"})

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	got, _ := db.GetDocument("del.md")
	if got != nil {
		t.Error("deleted document still present")
	}
	bl, _ := db.Backlinks("target.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "up.md", Name: "up", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", []string{"x.md"})
	_ = db.UpsertDocument(DocumentRow{Path: "up.md", Name: "up", Title: "New", Checksum: "2", Tags: []string{"new"}, OID: "99", UpdatedAt: now}, "new body", []string{"y.md"})

	got, _ := db.GetDocument("up.md")
	if got == nil || got.Checksum != "2" {
		t.Fatalf("document = %+v, want checksum 2", got)
	}
	if got.OID != "99" {
		t.Errorf("oid = %q, want 99", got.OID)
	}
	bl, _ := db.Backlinks("x.md")
	if len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	bl, _ = db.Backlinks("y.md")
	if len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestResolve(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "journal/Daily Log.md", Name: "Daily Log", Checksum: "1", UpdatedAt: now}, "", nil)
	_ = db.UpsertDocument(DocumentRow{Path: "ideas/roadmap.md", Name: "roadmap", Checksum: "2", UpdatedAt: now}, "", nil)

	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"journal/Daily Log.md", "journal/Daily Log.md", true}, // exact path
		{"ideas/roadmap", "ideas/roadmap.md", true},            // path without extension
		{"Daily Log", "journal/Daily Log.md", true},            // basename
		{"roadmap.md", "ideas/roadmap.md", true},               // basename with extension
		{"daily log", "journal/Daily Log.md", true},            // case-insensitive basename
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := db.Resolve(tt.target)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}

func TestListDocuments_PublishedOnly(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "pub.md", Name: "pub", Checksum: "1", OID: "abc", UpdatedAt: now}, "", nil)
	_ = db.UpsertDocument(DocumentRow{Path: "draft.md", Name: "draft", Checksum: "2", UpdatedAt: now}, "", nil)

	all, total, err := db.ListDocuments(10, 0, false)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("all: total=%d len=%d, want 2/2", total, len(all))
	}

	pub, total, err := db.ListDocuments(10, 0, true)
	if err != nil {
		t.Fatalf("ListDocuments published: %v", err)
	}
	if total != 1 || len(pub) != 1 || pub[0].Path != "pub.md" {
		t.Fatalf("published: total=%d rows=%+v", total, pub)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "a.md", Name: "a", Checksum: "ca", UpdatedAt: now}, "", nil)
	_ = db.UpsertDocument(DocumentRow{Path: "b.md", Name: "b", Checksum: "cb", UpdatedAt: now}, "", nil)

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 2 || cs["a.md"] != "ca" || cs["b.md"] != "cb" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "s.md", Name: "s", Title: "Searchable", Checksum: "1", UpdatedAt: time.Now()},
		"the quick brown fox", nil)

	res, err := db.Search("quick", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Path != "s.md" {
		t.Fatalf("search results = %+v", res)
	}
}
