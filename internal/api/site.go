package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/page"
)

const (
	msgNotFound    = "Couldn't find that file!"
	msgBadMetadata = "Couldn't read that file's metadata."
)

// SiteHandler serves the HTML pages and the raw graph data they load.
type SiteHandler struct {
	svc      *docservice.Service
	composer *page.Composer
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(svc *docservice.Service, composer *page.Composer) *SiteHandler {
	return &SiteHandler{svc: svc, composer: composer}
}

// GraphData handles GET /graph: the graph JSON consumed by the visualization.
func (h *SiteHandler) GraphData(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Graph(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", "io"))
		return
	}
	writeJSON(w, http.StatusOK, res.Graph)
}

// IndexPage handles GET /.
func (h *SiteHandler) IndexPage(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Graph(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	slugs, err := h.svc.Index(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, page.IndexPage(res.Graph, slugs))
}

// DocumentPage handles GET /*.
func (h *SiteHandler) DocumentPage(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	if slug == "" {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}
	doc, err := h.svc.Document(r.Context(), slug)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, page.DocumentPage(doc))
}

func (h *SiteHandler) write(w http.ResponseWriter, p page.Page) {
	var buf bytes.Buffer
	if err := h.composer.Write(&buf, p); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *SiteHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, msgNotFound, http.StatusNotFound)
	case errors.Is(err, apperr.ErrMetadata), errors.Is(err, apperr.ErrReference):
		http.Error(w, msgBadMetadata, http.StatusUnprocessableEntity)
	default:
		slog.Error("page failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
