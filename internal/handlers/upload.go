package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/lehigh-university-libraries/metadiff/internal/uploads"
)

const uploadField = "files[]"

// HandleUpload replaces the stored upload set with the submitted files and
// sends the browser back to the comparison page.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("Unable to parse upload form", "err", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("Unable to remove multipart temp files", "err", err)
		}
	}()

	headers, ok := r.MultipartForm.File[uploadField]
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	files, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, rejected, err := h.store.Replace(files)
	if err != nil {
		h.writeError(w, "Failed to store uploads: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if h.collector != nil {
		h.collector.Uploads.Inc()
		h.collector.RejectedFiles.Add(float64(len(rejected)))
	}
	slog.Info("Files uploaded", "session_id", session.ID, "stored", session.Files, "rejected", rejected)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// openUploads opens at most uploads.MaxFiles parts. The returned func closes
// everything that was opened.
func openUploads(headers []*multipart.FileHeader) ([]uploads.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	if len(headers) > uploads.MaxFiles {
		headers = headers[:uploads.MaxFiles]
	}
	files := make([]uploads.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, uploads.File{Name: fh.Filename, Body: f})
	}
	return files, closeAll, nil
}
