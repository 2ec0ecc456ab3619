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

type UsersProvider interface {
	Users(ctx context.Context) ([]storage.User, error)
}

// Users lists the whole user directory, inactive users included.
func Users(log *slog.Logger, users UsersProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.get.Users"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := users.Users(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to list users")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if list == nil {
			list = []storage.User{}
		}

		render.JSON(w, r, list)
	}
}
