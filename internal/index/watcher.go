package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bergsten/raido/internal/storage"
	"github.com/fsnotify/fsnotify"
)

// Callbacks receive watcher-driven change notifications.
type Callbacks struct {
	// Project is called after an index mutation; kind is one of
	// "created", "updated", "deleted".
	Project func(kind, name string)
	// Status is called when a tracked project's status attribute changed
	// on disk (external edit), with the new status value.
	Status func(name, status string)
	// Board is called when the priorities document itself changed.
	Board func()
}

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. New directories created at
// runtime are added to the watch list; rename events trigger a debounced
// reconciliation pass that removes stale index rows.
//
// The priorities document (boardPath) is never indexed; changes to it
// only fire the Board callback.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot, trackTag, boardPath string, logger *slog.Logger, cbs Callbacks) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, trackTag, boardPath, logger, cbs)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and index their notes.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					indexNewDir(db, store, vaultRoot, absPath, trackTag, boardPath, logger, cbs)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}

			if rel == boardPath {
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && cbs.Board != nil {
					cbs.Board()
				}
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}

				old, _ := db.ProjectByPath(rel)
				if idxErr := indexNote(db, rel, data, trackTag); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}

				kind := "updated"
				if old == nil {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				name := projectName(rel)
				if cbs.Project != nil {
					cbs.Project(kind, name)
				}
				notifyStatusChange(db, old, name, cbs)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteByPath(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cbs.Project != nil {
					cbs.Project("deleted", projectName(rel))
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create event. Delete the old row
				// now and schedule a reconciliation pass for stragglers.
				if delErr := db.DeleteByPath(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					if cbs.Project != nil {
						cbs.Project("deleted", projectName(rel))
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// notifyStatusChange fires the Status callback when a tracked project's
// status attribute differs from its previously indexed value.
func notifyStatusChange(db *DB, old *ProjectRow, name string, cbs Callbacks) {
	if cbs.Status == nil {
		return
	}
	cur, err := db.GetProject(name)
	if err != nil || cur == nil || !cur.Tracked || cur.Status == "" {
		return
	}
	oldStatus := ""
	if old != nil {
		oldStatus = old.Status
	}
	if cur.Status != oldStatus {
		cbs.Status(name, cur.Status)
	}
}

// reconcileAfterRename does a lightweight sync using batch lookups:
// removes index rows without a file on disk and indexes on-disk notes
// that changed or are missing from the index.
func reconcileAfterRename(db *DB, store storage.Provider, trackTag, boardPath string, logger *slog.Logger, cbs Callbacks) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		if m.Path == boardPath {
			continue
		}
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := db.DeleteByPath(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				if cbs.Project != nil {
					cbs.Project("deleted", projectName(p))
				}
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, readErr := store.Read(p)
		if readErr != nil {
			continue
		}
		if idxErr := indexNote(db, p, data, trackTag); idxErr == nil {
			logger.Debug("reconcile: indexed new", slog.String("path", p))
			if cbs.Project != nil {
				cbs.Project("created", projectName(p))
			}
		}
	}
}

// indexNewDir indexes any .md notes found in a newly created directory.
func indexNewDir(db *DB, store storage.Provider, vaultRoot, dirPath, trackTag, boardPath string, logger *slog.Logger, cbs Callbacks) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil || rel == boardPath {
			return nil
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := indexNote(db, rel, data, trackTag); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			if cbs.Project != nil {
				cbs.Project("created", projectName(rel))
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
