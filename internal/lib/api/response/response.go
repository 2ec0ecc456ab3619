package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"garment-erp/internal/pipeline"
)

type Response struct {
	Error string `json:"error"`
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Error: msg})
}

// OK writes {"success": true} merged with the extra fields.
func OK(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	render.JSON(w, r, body)
}

// Created is OK with status 201.
func Created(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	render.Status(r, http.StatusCreated)
	OK(w, r, extra)
}

// FromError maps a pipeline error to its HTTP status. Unknown errors are
// logged and reported as a generic 500.
func FromError(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		validation *pipeline.ValidationError
		authz      *pipeline.AuthorizationError
		notFound   *pipeline.NotFoundError
		duplicate  *pipeline.DuplicateError
		remainder  *pipeline.InsufficientRemainderError
		external   *pipeline.ExternalDependencyError
	)

	switch {
	case errors.As(err, &validation):
		Error(w, r, http.StatusBadRequest, validation.Error())
	case errors.As(err, &remainder):
		Error(w, r, http.StatusBadRequest, remainder.Error())
	case errors.As(err, &authz):
		Error(w, r, http.StatusForbidden, authz.Error())
	case errors.As(err, &notFound):
		Error(w, r, http.StatusNotFound, notFound.Error())
	case errors.As(err, &duplicate):
		Error(w, r, http.StatusConflict, duplicate.Error())
	case errors.As(err, &external):
		log.Error("storage failure", slog.String("op", op), slog.String("error", err.Error()))
		Error(w, r, http.StatusServiceUnavailable, "storage is unavailable, try again later")
	default:
		log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
		Error(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// XLSX writes a spreadsheet as a download.
func XLSX(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	w.Write(data)
}
