// Package api implements the graphblog HTTP surface using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/page"
)

// StaticDirs are the asset directories served verbatim from the site root.
var StaticDirs = []string{"assets", "styles", "js", "node_modules"}

// NewRouter creates the JSON API router, mounted under /api.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *docservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Get("/graph", h.Graph)
	r.Get("/index", h.Index)
	r.Get("/documents/*", h.GetDocument)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	return r
}

// NewSiteRouter creates the router for pages, graph data and static assets.
// assetsRoot holds the assets, styles, js and node_modules directories.
func NewSiteRouter(svc *docservice.Service, composer *page.Composer, assetsRoot string) chi.Router {
	h := NewSiteHandler(svc, composer)

	r := chi.NewRouter()
	for _, dir := range StaticDirs {
		r.Get("/"+dir+"/*", NewStaticHandler(assetsRoot, dir).ServeHTTP)
	}
	r.Get("/graph", h.GraphData)
	r.Get("/", h.IndexPage)
	r.Get("/*", h.DocumentPage)
	return r
}
