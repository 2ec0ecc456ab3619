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
)

type Dispatcher interface {
	CreateDispatch(ctx context.Context, in pipeline.DispatchInput) (string, error)
}

type Request struct {
	FinishingDataID int64          `json:"finishing_data_id" validate:"required"`
	Sizes           map[string]int `json:"sizes" validate:"required"`
	Destination     string         `json:"destination" validate:"required"`
}

// CreateDispatch ships finished pieces and returns the delivery challan
// number.
func CreateDispatch(log *slog.Logger, dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dispatch.save.CreateDispatch"

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

		challan, err := dispatcher.CreateDispatch(ctx, pipeline.DispatchInput{
			UserID:          id.UserID,
			FinishingDataID: req.FinishingDataID,
			Sizes:           req.Sizes,
			Destination:     req.Destination,
		})
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("dispatch created",
			slog.String("op", op),
			slog.String("challan_no", challan),
			slog.Int64("finishing_data_id", req.FinishingDataID),
		)

		response.Created(w, r, map[string]any{"challan_no": challan})
	}
}
