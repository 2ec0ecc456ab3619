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

type LotProvider interface {
	Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error)
	LotSizes(ctx context.Context, id int64) (*storage.Lot, error)
}

type LotExporter interface {
	Lots(ctx context.Context, filter storage.LotFilter) ([]byte, error)
}

// ListLots returns the caller's lots, filtered by search, from, to and limit.
func ListLots(log *slog.Logger, lots LotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cutting.get.ListLots"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		filter, err := request.LotFilter(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		filter.UserID = id.UserID

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := lots.Lots(ctx, filter)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		if list == nil {
			list = []storage.Lot{}
		}

		render.JSON(w, r, list)
	}
}

// LotSizes returns one lot with its cut sizes.
func LotSizes(log *slog.Logger, lots LotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cutting.get.LotSizes"

		lotID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		lot, err := lots.LotSizes(ctx, lotID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, lot)
	}
}

// DownloadLots streams the caller's lots as an xlsx file.
func DownloadLots(log *slog.Logger, exporter LotExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cutting.get.DownloadLots"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		filter, err := request.LotFilter(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		filter.UserID = id.UserID

		ctx, cancel := context.WithTimeout(r.Context(), pipeline.ReportTimeout)
		defer cancel()

		data, err := exporter.Lots(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.XLSX(w, fmt.Sprintf("Cutting_Lots_%s.xlsx", time.Now().Format("2006-01-02_150405")), data)
	}
}
