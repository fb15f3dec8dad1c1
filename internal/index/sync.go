package index

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/checksum"
	"github.com/bergsten/raido/internal/storage"
)

// Sync walks the vault and brings the project index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
//
// boardPath (the priorities document itself) is never indexed as a
// project.
func Sync(db *DB, store storage.Provider, trackTag, boardPath string, logger *slog.Logger) error {
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
		if m.Path == boardPath {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexNote(db, m.Path, data, trackTag); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteByPath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexNote parses a note's frontmatter and upserts its project row.
func indexNote(db *DB, path string, data []byte, trackTag string) error {
	rec := attrs.Parse(data)
	name := projectName(path)
	title := name
	row := ProjectRow{
		Name:      name,
		Path:      path,
		Title:     title,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	if rec != nil {
		if rec.Title != "" {
			row.Title = rec.Title
		}
		row.Status = rec.Status
		row.Group = rec.Group
		row.Category = rec.Category
		row.Emoji = rec.Emoji
		row.Tags = rec.Tags
		row.Tracked = rec.HasTag(trackTag)
	}
	return db.UpsertProject(row)
}

// projectName derives the vault-unique display name from a note path:
// the file's base name without extension.
func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ".md")
}
