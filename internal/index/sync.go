package index

import (
	"context"
	"log/slog"

	"github.com/starford/raido/internal/loader"
)

// Sync loads the corpus and brings the index up to date:
//   - new/changed documents are upserted (checksum comparison)
//   - documents removed from disk are deleted from the index
//   - files the loader skipped are logged and left out of the index
func Sync(ctx context.Context, db *DB, ldr *loader.Loader, logger *slog.Logger) error {
	col, err := ldr.Load(ctx)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(col.Documents))
	for i := range col.Documents {
		doc := &col.Documents[i]
		disk[doc.Path] = struct{}{}

		if checksums[doc.Path] == doc.Checksum {
			continue
		}
		if err := db.UpsertDocument(RowFromDocument(doc), doc.Body); err != nil {
			logger.Warn("sync: index failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", doc.Path))
		}
	}

	for _, skip := range col.Skipped {
		// A malformed file also counts as gone from the corpus view, so a
		// previously indexed version is removed below.
		logger.Warn("sync: skipped", slog.String("path", skip.Path), slog.String("reason", skip.Err.Error()))
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
