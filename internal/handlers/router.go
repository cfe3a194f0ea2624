package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router wires the handler's routes with request logging and, when the
// handler has a collector, request metrics and the /metrics endpoint.
func (h *Handler) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger)
	if h.collector != nil {
		router.Use(h.collector.Middleware)
		router.Method(http.MethodGet, "/metrics", h.collector.Handler())
	}

	router.Get("/", h.HandleIndex)
	router.Post("/upload", h.HandleUpload)
	router.Get(UploadsURLPrefix+"{name}", h.HandleUploadedFile)
	router.Method(http.MethodGet, AssetsURLPrefix+"*", assets())
	router.Get("/api/comparison", h.HandleComparison)
	router.Get("/healthcheck", h.HandleHealthcheck)

	return router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
