package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves files from one directory of the site asset root.
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a handler for assetsRoot/dir.
func NewStaticHandler(assetsRoot, dir string) *StaticHandler {
	return &StaticHandler{dir: filepath.Join(assetsRoot, dir)}
}

// safeName resolves a slash-separated request path under the handler's
// directory and rejects anything that would escape it.
func (h *StaticHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	base, err := filepath.Abs(h.dir)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(base, cleaned)
	if !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes asset directory")
	}
	return abs, nil
}

// ServeHTTP handles GET /<dir>/*.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
