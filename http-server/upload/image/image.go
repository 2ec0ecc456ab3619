package image

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/filestore"
	"garment-erp/internal/lib/api/response"
)

type Uploader interface {
	UploadImage(ctx context.Context, fileName string, r io.Reader, size int64) (string, error)
}

// Upload stores the multipart "image" field and returns {"url": ...}. Bodies
// larger than maxBytes are rejected.
func Upload(log *slog.Logger, uploader Uploader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.upload.image.Upload"

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			response.Error(w, r, http.StatusBadRequest, "image is missing or too large")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "image is required")
			return
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		url, err := uploader.UploadImage(ctx, header.Filename, file, header.Size)
		switch {
		case errors.Is(err, filestore.ErrUnsupportedImage):
			response.Error(w, r, http.StatusBadRequest, "only jpg, png and webp images are accepted")
			return
		case errors.Is(err, filestore.ErrDisabled):
			response.Error(w, r, http.StatusServiceUnavailable, "image uploads are disabled")
			return
		case err != nil:
			log.Error("failed to upload image", slog.String("op", op), slog.String("error", err.Error()))
			response.Error(w, r, http.StatusServiceUnavailable, "image storage is unavailable")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]string{"url": url})
	}
}
