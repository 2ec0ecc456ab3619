package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/pipeline"
)

type SummaryProvider interface {
	DispatchSummary(ctx context.Context, finishingDataID int64) (*pipeline.DispatchSummary, error)
}

// Summary reports the dispatched and remaining pieces of a finishing record.
func Summary(log *slog.Logger, provider SummaryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dispatch.get.Summary"

		recordID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sum, err := provider.DispatchSummary(ctx, recordID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		render.JSON(w, r, sum)
	}
}
