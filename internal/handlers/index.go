package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/models"
)

type indexPage struct {
	Images     []models.ImageItem
	Uploaded   bool
	Comparison *comparison.Result
}

// HandleIndex renders the image grid and, once two or more images were
// uploaded, the metadata differences between the first two.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	session := h.store.Current()

	page := indexPage{Images: models.DefaultImages}
	if len(session.Files) > 0 {
		page.Images = models.UploadedImages(UploadsURLPrefix, session.Files)
		page.Uploaded = true
		page.Comparison = h.comparisons.CompareSession(session)
	}

	h.render(w, "index.html", page)
}

// HandleComparison returns the current comparison as JSON, or null when
// fewer than two images are stored.
func (h *Handler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.comparisons.CompareSession(h.store.Current()))
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		h.writeError(w, "Unable to write healthcheck", http.StatusInternalServerError)
	}
}
