package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/habyx/internal/service"
	"github.com/vedran77/habyx/internal/transport/http/middleware"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

type ProfileImageHandler struct {
	imageService *service.ProfileImageService
	maxBytes     int64
}

func NewProfileImageHandler(imageService *service.ProfileImageService, maxBytes int64) *ProfileImageHandler {
	return &ProfileImageHandler{imageService: imageService, maxBytes: maxBytes}
}

func (h *ProfileImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusBadRequest, "FILE_TOO_LARGE", "File is too large")
		default:
			writeError(w, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		}
		return
	}
	defer file.Close()

	url, err := h.imageService.Upload(r.Context(), userID, service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile):
			writeError(w, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		case errors.Is(err, service.ErrNotImage):
			writeError(w, http.StatusBadRequest, "NOT_IMAGE", "File must be an image")
		case errors.Is(err, service.ErrFileTooLarge):
			writeError(w, http.StatusBadRequest, "FILE_TOO_LARGE", "File is too large")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeInternalError(w, r, "upload profile image", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *ProfileImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.imageService.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			writeInternalError(w, r, "delete profile image", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
