package handlers

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AssetsURLPrefix is where the page scripts are served from.
const AssetsURLPrefix = "/static/js/"

//go:embed static/js/*.js
var assetFS embed.FS

// assets serves the embedded scripts with the URL prefix stripped.
func assets() http.Handler {
	sub, err := fs.Sub(assetFS, "static/js")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(AssetsURLPrefix, http.FileServerFS(sub))
}

// HandleUploadedFile serves a file from the current upload set.
func (h *Handler) HandleUploadedFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.store.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.writeError(w, "Unable to read file", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}
