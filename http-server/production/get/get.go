package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type ProductionProvider interface {
	Entries(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error)
	Production(ctx context.Context, stage storage.Stage, userID, id int64) (*storage.Production, error)
	LotRemainders(ctx context.Context, stage storage.Stage, assignmentID int64) (*pipeline.LotRemainder, error)
	Challan(ctx context.Context, stage storage.Stage, id int64) (*pipeline.Challan, error)
}

type StageExporter interface {
	StageEntries(ctx context.Context, stage storage.Stage, userID int64) ([]byte, error)
}

// ListEntries returns the caller's records at the stage.
func ListEntries(log *slog.Logger, provider ProductionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.ListEntries"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		stage, err := request.Stage(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := provider.Entries(ctx, stage, id.UserID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		if list == nil {
			list = []storage.Production{}
		}

		render.JSON(w, r, list)
	}
}

// LotSizes reports, per size, what is still available to produce for an
// assignment.
func LotSizes(log *slog.Logger, provider ProductionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.LotSizes"

		stage, err := request.Stage(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		assignmentID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rem, err := provider.LotRemainders(ctx, stage, assignmentID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, rem)
	}
}

// Entry returns one of the caller's records for the update form.
func Entry(log *slog.Logger, provider ProductionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.Entry"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		stage, err := request.Stage(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		recordID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := provider.Production(ctx, stage, id.UserID, recordID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, p)
	}
}

func Challan(log *slog.Logger, provider ProductionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.Challan"

		stage, err := request.Stage(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		recordID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := provider.Challan(ctx, stage, recordID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, c)
	}
}

// DownloadAll streams the caller's records at the stage as an xlsx file.
func DownloadAll(log *slog.Logger, exporter StageExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.get.DownloadAll"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		stage, err := request.Stage(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pipeline.ReportTimeout)
		defer cancel()

		data, err := exporter.StageEntries(ctx, stage, id.UserID)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.XLSX(w, fmt.Sprintf("%s_Entries_%s.xlsx", stage.Label(), time.Now().Format("2006-01-02_150405")), data)
	}
}
