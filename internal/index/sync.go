package index

import (
	"log/slog"
	"time"

	"github.com/starford/ehwaz/internal/checksum"
	"github.com/starford/ehwaz/internal/classify"
	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/parser"
	"github.com/starford/ehwaz/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts it into the DB, including the sync
// state (oid, slug, content type) read from the document header.
func IndexFile(db *DB, path string, data []byte) error {
	res := parser.Parse(data)

	oid, _ := res.Frontmatter.Text(models.KeyOID)
	slug, _ := res.Frontmatter.Text(models.KeySlug)

	row := DocumentRow{
		Path:        path,
		Name:        storage.DisplayName(path),
		Title:       res.Title,
		Checksum:    checksum.Sum(data),
		Tags:        res.Tags,
		OID:         oid,
		ContentType: string(classify.Classify(res.Frontmatter)),
		Slug:        slug,
		UpdatedAt:   time.Now().UTC(),
	}
	return db.UpsertDocument(row, res.Body, res.Links)
}
