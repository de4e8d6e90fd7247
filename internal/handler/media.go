package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
)

// ImageUploader stores a picture and returns where Image posts can find it.
type ImageUploader interface {
	UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (*model.UploadResult, error)
}

type MediaHandler struct {
	uploader ImageUploader // nil when object storage is not configured
}

func NewMediaHandler(uploader ImageUploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

// UploadImage handles POST /media/images with a multipart "image" field.
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	if h.uploader == nil {
		httputil.WriteUnavailable(w, "Image uploads are not configured")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 10MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	res, err := h.uploader.UploadImage(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 10MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			writeServiceError(w, "upload image", err)
		}
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}
