package httpapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/engine"
)

// NewRouter creates a chi router with all read-only routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(eng *engine.Engine, authEnabled bool, token string) chi.Router {
	h := NewHandler(eng)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)
	r.Get("/resolve", h.Resolve)
	r.Get("/objects", h.ListObjects)
	r.Get("/objects/*", h.GetObject)

	return r
}
