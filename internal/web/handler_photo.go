package web

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/stowaway/internal/store"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType sniffs JPEG, PNG and GIF. WebP is detected
// separately because the stdlib sniffer has no WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a RIFF container with "WEBP" at offset 8.
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if data starts
// like an accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) handleUploadPhoto(kind store.PhotoKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID := chi.URLParam(r, "id")

		r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
		if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "failed to parse form")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "image file required")
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.logger.Error("failed to close upload file", "error", err)
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			s.logger.Error("read upload failed", "kind", kind, "entity_id", entityID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to read file")
			return
		}

		mimeType, ok := allowedImageMIME(data)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_input", "unsupported image format")
			return
		}

		key, err := s.service.AttachPhoto(r.Context(), actorFrom(r), kind, entityID, mimeType, bytes.NewReader(data))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})
	}
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	reader, mimeType, err := s.service.Photo(r.Context(), actorFrom(r).UserID, key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.logger.Error("failed to close photo reader", "storage_key", key, "error", err)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "storage_key", key, "error", err)
	}
}
