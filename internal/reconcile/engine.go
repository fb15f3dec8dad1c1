// Package reconcile keeps the priorities document consistent with
// per-project attribute records: status changes drive section placement,
// manual moves on the document write status and group attributes back.
// Every document write runs through a single FIFO queue so concurrent
// triggers cannot clobber each other.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/notify"
	"github.com/bergsten/raido/internal/outline"
	"github.com/bergsten/raido/internal/queue"
	"github.com/bergsten/raido/internal/storage"
)

// AttributeStore is the external per-project key/value record contract.
type AttributeStore interface {
	// Get returns the project's current attribute record, or
	// apperr.ErrNotFound when the project has no record.
	Get(project string) (*attrs.Record, error)
	// Update merges partial changes into the record. A nil change value
	// deletes the key; unrelated keys are never touched.
	Update(project string, changes map[string]any) error
}

// TrackedLister enumerates every project carrying the trackable tag.
type TrackedLister interface {
	TrackedProjects() ([]string, error)
}

// Engine coordinates document reads, model mutations, serialized writes,
// and attribute write-backs.
type Engine struct {
	vault     storage.Provider
	boardPath string
	store     AttributeStore
	tracked   TrackedLister
	queue     *queue.Queue
	sink      notify.Sink
	logger    *slog.Logger

	// OnBoardChange, when set, is called after each successful document
	// write (for change event fan-out).
	OnBoardChange func()
}

// NewEngine creates a reconciliation engine writing to boardPath.
func NewEngine(vault storage.Provider, boardPath string, store AttributeStore, tracked TrackedLister, q *queue.Queue, sink notify.Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}
	return &Engine{
		vault:     vault,
		boardPath: boardPath,
		store:     store,
		tracked:   tracked,
		queue:     q,
		sink:      sink,
		logger:    logger,
	}
}

// lookup adapts the attribute store to the parser's lookup contract.
func (e *Engine) lookup(project string) *attrs.Record {
	rec, err := e.store.Get(project)
	if err != nil {
		return nil
	}
	return rec
}

// loadBoard reads and parses the current document. A missing document is
// not an error: it yields a nil Document.
func (e *Engine) loadBoard() (string, *outline.Document, error) {
	data, err := e.vault.Read(e.boardPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("reconcile: read priorities document: %w", err)
	}
	raw := string(data)
	return raw, outline.Parse(raw, e.lookup), nil
}

// saveBoard serializes the document against the original text and writes
// it back.
func (e *Engine) saveBoard(doc *outline.Document, original string) error {
	out := outline.Serialize(doc, original)
	if err := e.vault.Write(e.boardPath, []byte(out)); err != nil {
		return fmt.Errorf("reconcile: write priorities document: %w", err)
	}
	if e.OnBoardChange != nil {
		e.OnBoardChange()
	}
	return nil
}

// Board returns the current parsed document with its unlisted set, for
// read-only consumers. Returns nil when the document does not exist.
func (e *Engine) Board(_ context.Context) (*outline.Document, error) {
	_, doc, err := e.loadBoard()
	if err != nil || doc == nil {
		return nil, err
	}
	if e.tracked != nil {
		names, err := e.tracked.TrackedProjects()
		if err != nil {
			e.logger.Warn("reconcile: tracked projects lookup failed", slog.String("error", err.Error()))
		} else {
			doc.Unlisted = outline.UnlistedProjects(doc, names)
		}
	}
	return doc, nil
}

// OnStatusChanged reacts to a project's status attribute change: it moves
// the entry into the mapped section ("complete" removes it) through a
// queued read-modify-write cycle. A cross-section move also clears the
// project's group attribute.
func (e *Engine) OnStatusChanged(ctx context.Context, project, status string) <-chan error {
	return e.queue.Enqueue(ctx, "sync status of "+project, func(context.Context) error {
		raw, doc, err := e.loadBoard()
		if err != nil {
			return err
		}
		if doc == nil {
			e.sink.Notify(fmt.Sprintf("Cannot place %s: priorities document is missing", project))
			return nil
		}

		rec, _ := e.store.Get(project)
		changed, crossSection := applyStatus(doc, project, status, rec)
		if changed {
			if err := e.saveBoard(doc, raw); err != nil {
				return err
			}
		}
		if crossSection {
			if err := e.store.Update(project, map[string]any{attrs.KeyGroup: nil}); err != nil {
				return fmt.Errorf("reconcile: clear group of %s: %w", project, err)
			}
		}
		return nil
	})
}

// OnGroupChanged reacts to a project's group attribute change: it moves
// the entry into the named group within its current section, or ungroups
// it when group is empty.
func (e *Engine) OnGroupChanged(ctx context.Context, project, group string) <-chan error {
	return e.queue.Enqueue(ctx, "sync group of "+project, func(context.Context) error {
		raw, doc, err := e.loadBoard()
		if err != nil {
			return err
		}
		if doc == nil {
			e.sink.Notify(fmt.Sprintf("Cannot regroup %s: priorities document is missing", project))
			return nil
		}
		if entry, _, _ := doc.FindEntry(project); entry == nil {
			e.sink.Notify(fmt.Sprintf("Cannot regroup %s: not on the priorities document", project))
			return nil
		}
		doc.MoveToGroup(project, group)
		return e.saveBoard(doc, raw)
	})
}

// OnManualMove applies a user-driven move of a project to a section (and
// optionally a group), then writes the implied status and group back to
// the attribute record. Only those two attributes are touched.
func (e *Engine) OnManualMove(ctx context.Context, project, section, group string) <-chan error {
	return e.queue.Enqueue(ctx, "move "+project, func(context.Context) error {
		raw, doc, err := e.loadBoard()
		if err != nil {
			return err
		}
		if doc == nil {
			e.sink.Notify(fmt.Sprintf("Cannot move %s: priorities document is missing", project))
			return nil
		}
		target := doc.SectionByName(section)
		if target == nil {
			e.sink.Notify(fmt.Sprintf("Cannot move %s: no section named %s", project, section))
			return nil
		}

		entry, _, _ := doc.FindEntry(project)
		if entry == nil {
			entry = &outline.Entry{Project: project}
			if rec, recErr := e.store.Get(project); recErr == nil && rec != nil {
				entry.Record = rec
				entry.Emoji = rec.Emoji
			}
		} else {
			doc.RemoveEntry(entry)
		}
		if group != "" {
			doc.InsertIntoGroup(section, group, entry)
		} else {
			target.InsertUngrouped(entry)
		}
		if err := e.saveBoard(doc, raw); err != nil {
			return err
		}

		changes := map[string]any{}
		if status, ok := StatusForSection(section); ok {
			changes[attrs.KeyStatus] = status
		}
		if group != "" {
			changes[attrs.KeyGroup] = group
		} else {
			changes[attrs.KeyGroup] = nil
		}
		if err := e.store.Update(project, changes); err != nil {
			return fmt.Errorf("reconcile: write back attributes of %s: %w", project, err)
		}
		return nil
	})
}

// BulkResync re-applies status placement for every tracked project that
// has a status set. It returns the number of queued jobs and a channel
// that yields the first job error (or nil) once all jobs finish.
func (e *Engine) BulkResync(ctx context.Context) (int, <-chan error) {
	done := make(chan error, 1)

	names, err := e.tracked.TrackedProjects()
	if err != nil {
		done <- fmt.Errorf("reconcile: list tracked projects: %w", err)
		return 0, done
	}

	var waits []<-chan error
	for _, name := range names {
		rec, err := e.store.Get(name)
		if err != nil || rec == nil || rec.Status == "" {
			continue
		}
		waits = append(waits, e.OnStatusChanged(ctx, name, rec.Status))
	}

	go func() {
		var first error
		for _, w := range waits {
			if err := <-w; err != nil && first == nil {
				first = err
			}
		}
		done <- first
	}()
	return len(waits), done
}

// Wait blocks until every queued document job has completed.
func (e *Engine) Wait() { e.queue.Wait() }
