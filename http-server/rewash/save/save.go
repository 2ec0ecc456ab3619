package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type RewashCreator interface {
	CreateRewash(ctx context.Context, in pipeline.RewashInput) (*storage.Rewash, error)
}

type Request struct {
	WashingDataID int64          `json:"washing_data_id" validate:"required"`
	Sizes         map[string]int `json:"sizes" validate:"required"`
	Remark        string         `json:"remark"`
}

// CreateRewash pulls pieces of one of the caller's washing records back for
// rework.
func CreateRewash(log *slog.Logger, creator RewashCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rewash.save.CreateRewash"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rw, err := creator.CreateRewash(ctx, pipeline.RewashInput{
			UserID:        id.UserID,
			WashingDataID: req.WashingDataID,
			Sizes:         req.Sizes,
			Remark:        req.Remark,
		})
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("rewash requested",
			slog.String("op", op),
			slog.String("lot_no", rw.LotNo),
			slog.Int64("washing_data_id", rw.WashingDataID),
			slog.Int("pieces", rw.TotalRequested),
		)

		response.Created(w, r, map[string]any{"id": rw.ID, "total_requested": rw.TotalRequested})
	}
}
