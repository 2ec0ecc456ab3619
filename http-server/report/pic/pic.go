package pic

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type StatusProvider interface {
	PICReport(ctx context.Context, filter storage.LotFilter) ([]pipeline.LotStatus, error)
	LotStatus(ctx context.Context, lotNo string) (*pipeline.LotStatus, error)
}

// Report returns the pipeline status of every lot matching the filter.
func Report(log *slog.Logger, provider StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.pic.Report"

		filter, err := request.LotFilter(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pipeline.ReportTimeout)
		defer cancel()

		rows, err := provider.PICReport(ctx, filter)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		if rows == nil {
			rows = []pipeline.LotStatus{}
		}

		render.JSON(w, r, rows)
	}
}

func LotStatus(log *slog.Logger, provider StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.pic.LotStatus"

		lotNo := chi.URLParam(r, "lotNo")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		st, err := provider.LotStatus(ctx, lotNo)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, st)
	}
}
