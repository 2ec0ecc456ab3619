package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/storage"
)

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (*storage.User, error)
}

type Request struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// Issue signs an identity token for an active user. The login front end
// calls it once it has verified the user's credentials.
func Issue(log *slog.Logger, users UserProvider, secret string, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.token.Issue"

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		u, err := users.UserByID(ctx, req.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(w, r, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load user")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if !u.IsActive {
			response.Error(w, r, http.StatusForbidden, "user is inactive")
			return
		}

		now := time.Now()
		tok, err := auth.IssueToken(secret, auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, ttl, now)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to sign token")
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.OK(w, r, map[string]any{"token": tok, "expires_at": now.Add(ttl)})
	}
}
