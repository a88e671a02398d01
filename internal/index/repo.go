package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DocumentRow represents a row in the documents table. OID, ContentType
// and Slug mirror the sync state stored in the document's own header so
// publish surfaces can list state without re-reading the vault.
type DocumentRow struct {
	Path        string
	Name        string // basename without extension
	Title       string
	Checksum    string
	Tags        []string
	OID         string
	ContentType string
	Slug        string
	UpdatedAt   time.Time
}

// Published reports whether the document carries a remote object id.
func (r DocumentRow) Published() bool { return r.OID != "" }

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertDocument inserts or replaces a document, its FTS entry, and its
// outgoing wikilink edges within a transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, name, title, checksum, tags, body, oid, content_type, slug, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name         = excluded.name,
			title        = excluded.title,
			checksum     = excluded.checksum,
			tags         = excluded.tags,
			body         = excluded.body,
			oid          = excluded.oid,
			content_type = excluded.content_type,
			slug         = excluded.slug,
			updated_at   = excluded.updated_at
	`, d.Path, d.Name, d.Title, d.Checksum, string(tagsJSON), body, d.OID, d.ContentType, d.Slug, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body, d.Tags); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, d.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(d.Path, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry, and outgoing links.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// Resolve maps a wikilink target to an indexed vault path: exact path
// match first (with or without the markdown extension), then exact
// basename, then case-insensitive basename.
func (db *DB) Resolve(target string) (string, bool) {
	var path string
	err := db.conn.QueryRow(`SELECT path FROM documents WHERE path = ? OR path = ? LIMIT 1`,
		target, target+".md").Scan(&path)
	if err == nil {
		return path, true
	}

	stem := strings.TrimSuffix(target, ".md")
	err = db.conn.QueryRow(`SELECT path FROM documents WHERE name = ? ORDER BY path LIMIT 1`,
		stem).Scan(&path)
	if err == nil {
		return path, true
	}

	err = db.conn.QueryRow(`SELECT path FROM documents WHERE name = ? COLLATE NOCASE ORDER BY path LIMIT 1`,
		stem).Scan(&path)
	if err == nil {
		return path, true
	}
	return "", false
}

// ListDocuments returns paginated documents, optionally only published ones.
func (db *DB) ListDocuments(limit, offset int, publishedOnly bool) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	where := ""
	if publishedOnly {
		where = ` WHERE oid != ''`
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents` + where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, name, title, checksum, tags, oid, content_type, slug, updated_at
		FROM documents`+where+`
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var tagsJSON string
		if err := rows.Scan(&d.Path, &d.Name, &d.Title, &d.Checksum, &tagsJSON,
			&d.OID, &d.ContentType, &d.Slug, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// GetDocument returns a single row, or nil when the path is not indexed.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	var d DocumentRow
	var tagsJSON string
	err := db.conn.QueryRow(`
		SELECT path, name, title, checksum, tags, oid, content_type, slug, updated_at
		FROM documents WHERE path = ?`, path).
		Scan(&d.Path, &d.Name, &d.Title, &d.Checksum, &tagsJSON,
			&d.OID, &d.ContentType, &d.Slug, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	return &d, nil
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Backlinks returns all document paths whose wikilinks point at target.
// Link targets are stored raw, so a document is matched by its path and by
// its extension-free name, the same forms a wikilink may use.
func (db *DB) Backlinks(target string) ([]string, error) {
	stem := strings.TrimSuffix(target, ".md")
	rows, err := db.conn.Query(
		`SELECT DISTINCT source FROM links WHERE target = ? OR target = ? ORDER BY source`,
		target, stem)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
