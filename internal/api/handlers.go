package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// DocumentResponse is the JSON form of a rendered document.
type DocumentResponse struct {
	Slug     string          `json:"slug"`
	Metadata models.Metadata `json:"metadata"`
	HTML     string          `json:"html"`
	Checksum string          `json:"checksum"`
}

// SkippedFile explains why a corpus file is missing from the graph.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// DuplicateFile is a document whose id was already used by an earlier one.
type DuplicateFile struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

// GraphResponse is the graph plus the files left out of it.
type GraphResponse struct {
	Nodes      []models.Node   `json:"nodes"`
	Links      []models.Link   `json:"links"`
	Skipped    []SkippedFile   `json:"skipped"`
	Duplicates []DuplicateFile `json:"duplicates"`
}

// slugParam extracts the slug from the URL wildcard.
// Supports encoded slashes from API clients (e.g. notes%2Fpost).
func slugParam(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a rendered document by slug
//	@Tags			documents
//	@Produce		json
//	@Param			slug	path		string	true	"Document slug"
//	@Success		200		{object}	DocumentResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/documents/{slug} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required", "invalid"))
		return
	}
	doc, err := h.svc.Document(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{
		Slug:     doc.Slug,
		Metadata: doc.Metadata,
		HTML:     string(doc.HTML),
		Checksum: doc.Checksum,
	})
}

// Index handles GET /api/index.
//
//	@Summary		List every document slug
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Router			/index [get]
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.svc.Index(r.Context())
	if err != nil {
		slog.Error("index failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", "io"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slugs": slugs})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the site graph with build diagnostics
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Graph(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", "io"))
		return
	}
	skipped := make([]SkippedFile, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, SkippedFile{Path: s.Path, Reason: s.Reason(), Error: s.Err.Error()})
	}
	duplicates := make([]DuplicateFile, 0, len(res.Duplicates))
	for _, d := range res.Duplicates {
		duplicates = append(duplicates, DuplicateFile{Path: d.Path, ID: d.ID})
	}
	writeJSON(w, http.StatusOK, GraphResponse{
		Nodes:      res.Graph.Nodes,
		Links:      res.Graph.Links,
		Skipped:    skipped,
		Duplicates: duplicates,
	})
}
