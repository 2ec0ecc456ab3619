package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/storage"
)

type Incrementer interface {
	IncrementProduction(ctx context.Context, stage storage.Stage, userID, recordID int64, increments map[string]int) (*storage.Production, error)
}

type Request struct {
	Sizes map[string]int `json:"sizes" validate:"required"`
}

// AddPieces adds pieces to one of the caller's records and returns the
// updated record.
func AddPieces(log *slog.Logger, inc Incrementer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production.update.AddPieces"

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

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := inc.IncrementProduction(ctx, stage, id.UserID, recordID, req.Sizes)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("production updated",
			slog.String("op", op),
			slog.String("stage", string(stage)),
			slog.Int64("record_id", recordID),
			slog.Int("total_pieces", p.TotalPieces),
		)

		render.JSON(w, r, p)
	}
}
