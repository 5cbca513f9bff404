package httpapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/resolve"
	"github.com/starford/raido/internal/script"
)

// Handler holds API route handlers.
type Handler struct {
	eng *engine.Engine
}

// NewHandler creates a new Handler.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

// objectPath extracts the workspace path from the URL (everything after
// /objects/). Supports encoded slashes (e.g. functions%2Fcalc.xs).
func objectPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Status handles GET /status: the recomputed drift report.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.eng.Status()
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Resolve handles GET /resolve?q=: layered identifier resolution.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	idx, err := h.index()
	if err != nil {
		slog.Error("resolve index failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	matches := resolve.Resolve(idx, q)
	if matches == nil {
		matches = []resolve.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"matches": matches,
	})
}

// ListObjects handles GET /objects with an optional type filter.
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	entries, err := h.eng.Store().Load()
	if err != nil {
		slog.Error("list objects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		filtered := entries[:0]
		for _, t := range entries {
			if t.Type == object.Type(typ) {
				filtered = append(filtered, t)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []object.Tracked{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"objects": entries,
		"total":   len(entries),
	})
}

// objectDetail is the GET /objects/* response: the tracked entry, the live
// file content and the resolved script references.
type objectDetail struct {
	Path       string      `json:"path"`
	Type       object.Type `json:"type"`
	ID         int64       `json:"id"`
	Content    string      `json:"content"`
	Tables     []string    `json:"tables"`
	Functions  []string    `json:"functions"`
	Unresolved []string    `json:"unresolved,omitempty"`
}

// GetObject handles GET /objects/*.
func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	p := objectPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.eng.Store().FindByPath(p)
	if err != nil {
		slog.Error("get object failed", slog.String("path", p), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	data, err := h.eng.FS().Read(p)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("file missing on disk"))
		return
	}

	detail := objectDetail{
		Path:      p,
		Type:      entry.Type,
		ID:        entry.ID,
		Content:   string(data),
		Tables:    []string{},
		Functions: []string{},
	}
	if idx, idxErr := h.index(); idxErr == nil {
		refs := script.ExtractRefs(data)
		for _, name := range refs.Tables {
			if path, ok := resolve.ResolveTable(idx, name); ok {
				detail.Tables = append(detail.Tables, path)
			} else {
				detail.Unresolved = append(detail.Unresolved, name)
			}
		}
		for _, name := range refs.Functions {
			if path, ok := resolve.ResolveFunction(idx, name); ok {
				detail.Functions = append(detail.Functions, path)
			} else {
				detail.Unresolved = append(detail.Unresolved, name)
			}
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) index() (resolve.Index, error) {
	entries, err := h.eng.Store().Load()
	if err != nil {
		return nil, err
	}
	return resolve.Open(h.eng.IndexFile(), entries), nil
}
