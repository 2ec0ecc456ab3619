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

type LotCreator interface {
	CreateLot(ctx context.Context, in pipeline.LotInput) (*storage.Lot, error)
}

type Request struct {
	SKU         string                  `json:"sku" validate:"required"`
	FabricType  string                  `json:"fabric_type" validate:"required"`
	TotalLayers int                     `json:"total_layers" validate:"gt=0"`
	Sizes       []pipeline.LotSizeInput `json:"sizes" validate:"required,min=1"`
	Remark      string                  `json:"remark"`
	ImageURL    string                  `json:"image_url"`
}

// CreateLot records a freshly cut lot for the calling cutting manager.
func CreateLot(log *slog.Logger, creator LotCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cutting.save.CreateLot"

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

		lot, err := creator.CreateLot(ctx, pipeline.LotInput{
			UserID:      id.UserID,
			Username:    id.Username,
			SKU:         req.SKU,
			FabricType:  req.FabricType,
			TotalLayers: req.TotalLayers,
			Sizes:       req.Sizes,
			Remark:      req.Remark,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("lot created", slog.String("op", op), slog.String("lot_no", lot.LotNo), slog.Int64("user_id", id.UserID))

		response.Created(w, r, map[string]any{"id": lot.ID, "lot_no": lot.LotNo, "total_pieces": lot.TotalPieces})
	}
}
