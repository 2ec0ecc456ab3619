package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/storage"
)

type PendingProvider interface {
	PendingRewashes(ctx context.Context, userID int64) ([]storage.Rewash, error)
}

func Pending(log *slog.Logger, provider PendingProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rewash.get.Pending"

		id, err := auth.FromContext(r.Context())
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := provider.PendingRewashes(ctx, id.UserID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		if list == nil {
			list = []storage.Rewash{}
		}

		render.JSON(w, r, list)
	}
}
