package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/storage"
)

type Workers interface {
	UsersByRole(ctx context.Context, role string) ([]storage.User, error)
}

// GetWorkers lists active users for the assignee pickers, optionally
// narrowed to one role.
func GetWorkers(log *slog.Logger, worker Workers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.get.GetWorkers"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		workers, err := worker.UsersByRole(ctx, r.URL.Query().Get("role"))
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to list workers")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if workers == nil {
			workers = []storage.User{}
		}

		render.JSON(w, r, workers)
	}
}
