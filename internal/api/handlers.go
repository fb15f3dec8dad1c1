package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/bergsten/raido/internal/apperr"
	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/index"
	"github.com/bergsten/raido/internal/reconcile"
	"github.com/bergsten/raido/internal/settings"
)

// Handler holds API route handlers.
type Handler struct {
	engine   *reconcile.Engine
	db       index.ProjectIndex
	store    reconcile.AttributeStore
	settings *settings.Store
}

// NewHandler creates a new Handler.
func NewHandler(engine *reconcile.Engine, db index.ProjectIndex, store reconcile.AttributeStore, st *settings.Store) *Handler {
	return &Handler{engine: engine, db: db, store: store, settings: st}
}

// projectName extracts the {name} route parameter, decoding any path
// escaping (project names may contain spaces).
func projectName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetBoard handles GET /api/board.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Board(r.Context())
	if err != nil {
		slog.Error("get board failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, errorBody("priorities document not found"))
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{
		Sections: doc.Sections,
		Unlisted: nonNilSlice(doc.Unlisted),
	})
}

// ListProjects handles GET /api/projects with an optional status filter.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	rows, err := h.db.ListProjects(status)
	if err != nil {
		slog.Error("list projects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]ProjectItem, len(rows))
	for i, row := range rows {
		items[i] = ProjectItem{
			Name:      row.Name,
			Path:      row.Path,
			Title:     row.Title,
			Status:    row.Status,
			Group:     row.Group,
			Category:  row.Category,
			Emoji:     row.Emoji,
			Tags:      nonNilSlice(row.Tags),
			Tracked:   row.Tracked,
			UpdatedAt: row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: items, Total: len(items)})
}

// SetStatus handles POST /api/projects/{name}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	name := projectName(r)
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if !reconcile.KnownStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown status: "+req.Status))
		return
	}

	if err := h.store.Update(name, map[string]any{attrs.KeyStatus: req.Status}); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("project not found: "+name))
			return
		}
		slog.Error("set status failed", slog.String("project", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if err := <-h.engine.OnStatusChanged(r.Context(), name, req.Status); err != nil {
		slog.Error("status sync failed", slog.String("project", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"project": name, "status": req.Status})
}

// SetGroup handles POST /api/projects/{name}/group.
func (h *Handler) SetGroup(w http.ResponseWriter, r *http.Request) {
	name := projectName(r)
	var req SetGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	var groupChange any
	if req.Group != "" {
		groupChange = req.Group
	}
	if err := h.store.Update(name, map[string]any{attrs.KeyGroup: groupChange}); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("project not found: "+name))
			return
		}
		slog.Error("set group failed", slog.String("project", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if err := <-h.engine.OnGroupChanged(r.Context(), name, req.Group); err != nil {
		slog.Error("group sync failed", slog.String("project", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"project": name, "group": req.Group})
}

// Move handles POST /api/board/move (the drag-and-drop equivalent).
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Project == "" || req.Section == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("project and section are required"))
		return
	}

	if err := <-h.engine.OnManualMove(r.Context(), req.Project, req.Section, req.Group); err != nil {
		slog.Error("move failed", slog.String("project", req.Project), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"project": req.Project,
		"section": req.Section,
		"group":   req.Group,
	})
}

// Resync handles POST /api/board/resync.
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	n, done := h.engine.BulkResync(r.Context())
	if err := <-done; err != nil {
		slog.Error("resync failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ResyncResponse{Queued: n})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// PutSettings handles PUT /api/settings.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := h.settings.Replace(req); err != nil {
		slog.Error("save settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Get())
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
