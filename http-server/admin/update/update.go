package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/storage"
)

type UsersUpdater interface {
	UpdateUsers(ctx context.Context, users []storage.User) error
}

// UpdateUsers saves name, role and active flag for a batch of users.
func UpdateUsers(log *slog.Logger, updater UsersUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.update.UpdateUsers"

		var users []storage.User
		if err := render.DecodeJSON(r.Body, &users); err != nil {
			response.Error(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		for _, u := range users {
			if u.ID <= 0 {
				response.Error(w, r, http.StatusBadRequest, "every user needs an id")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateUsers(ctx, users); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to update users")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.OK(w, r, map[string]any{"updated": len(users)})
	}
}
