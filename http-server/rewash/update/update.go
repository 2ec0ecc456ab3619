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

type RewashCompleter interface {
	CompleteRewash(ctx context.Context, userID, rewashID int64) (*storage.Rewash, error)
}

// Complete returns the pieces of a pending rewash to the washing pool.
func Complete(log *slog.Logger, completer RewashCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rewash.update.Complete"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		rewashID, err := request.ID(r, "id")
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rw, err := completer.CompleteRewash(ctx, id.UserID, rewashID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("rewash completed", slog.String("op", op), slog.Int64("rewash_id", rw.ID), slog.String("lot_no", rw.LotNo))

		render.JSON(w, r, rw)
	}
}
