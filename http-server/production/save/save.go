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

type ProductionCreator interface {
	CreateProduction(ctx context.Context, stage storage.Stage, in pipeline.ProductionInput) (*storage.Production, error)
}

type Request struct {
	AssignmentID int64          `json:"assignment_id" validate:"required"`
	Sizes        map[string]int `json:"sizes" validate:"required"`
	Remark       string         `json:"remark"`
	ImageURL     string         `json:"image_url"`
}

// CreateProduction records the caller's output against an approved
// assignment.
func CreateProduction(log *slog.Logger, creator ProductionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.save.CreateProduction"

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

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := creator.CreateProduction(ctx, stage, pipeline.ProductionInput{
			UserID:       id.UserID,
			AssignmentID: req.AssignmentID,
			Sizes:        req.Sizes,
			Remark:       req.Remark,
			ImageURL:     req.ImageURL,
		})
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("production recorded",
			slog.String("op", op),
			slog.String("stage", string(stage)),
			slog.String("lot_no", p.LotNo),
			slog.Int("total_pieces", p.TotalPieces),
		)

		response.Created(w, r, map[string]any{"id": p.ID, "lot_no": p.LotNo, "total_pieces": p.TotalPieces})
	}
}
