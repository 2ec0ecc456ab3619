package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/storage"
)

type UserCreator interface {
	CreateUser(ctx context.Context, u storage.User) (int64, error)
}

type Request struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	IsActive bool   `json:"is_active"`
}

func SaveUser(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.save.SaveUser"

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.CreateUser(ctx, storage.User{
			Username: strings.TrimSpace(req.Username),
			Name:     strings.TrimSpace(req.Name),
			Role:     req.Role,
			IsActive: req.IsActive,
		})
		if errors.Is(err, storage.ErrDuplicate) {
			response.Error(w, r, http.StatusConflict, "username is already taken")
			return
		}
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to create user")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.Created(w, r, map[string]any{"id": id})
	}
}
