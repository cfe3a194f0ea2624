package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/metrics"
	"github.com/lehigh-university-libraries/metadiff/internal/report"
	"github.com/lehigh-university-libraries/metadiff/internal/uploads"
)

// UploadsURLPrefix is where stored uploads are served from.
const UploadsURLPrefix = "/static/uploads/"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"text": report.Text,
}).ParseFS(templateFS, "templates/*.html"))

type Handler struct {
	store          *uploads.Store
	comparisons    *comparison.Service
	collector      *metrics.Collector
	maxUploadBytes int64
}

func New(store *uploads.Store, comparisons *comparison.Service, collector *metrics.Collector, maxUploadBytes int64) *Handler {
	return &Handler{
		store:          store,
		comparisons:    comparisons,
		collector:      collector,
		maxUploadBytes: maxUploadBytes,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Unable to render template", "template", name, "err", err)
	}
}
