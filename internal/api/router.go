package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bergsten/raido/internal/index"
	"github.com/bergsten/raido/internal/reconcile"
	"github.com/bergsten/raido/internal/settings"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(engine *reconcile.Engine, db index.ProjectIndex, store reconcile.AttributeStore, st *settings.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(engine, db, store, st)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Board.
	r.Get("/board", h.GetBoard)
	r.Post("/board/move", h.Move)
	r.Post("/board/resync", h.Resync)

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects/{name}/status", h.SetStatus)
	r.Post("/projects/{name}/group", h.SetGroup)

	// Dashboard settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
