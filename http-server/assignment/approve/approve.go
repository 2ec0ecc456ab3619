package approve

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

type Decider interface {
	PendingAssignments(ctx context.Context, stage storage.Stage, assigneeID int64) ([]storage.Assignment, error)
	Approve(ctx context.Context, stage storage.Stage, id, approverID int64, remark string) error
	Deny(ctx context.Context, stage storage.Stage, id, approverID int64, remark string) error
}

type Request struct {
	AssignmentID int64  `json:"assignment_id" validate:"required"`
	Remark       string `json:"remark"`
}

// Pending lists the caller's undecided assignments at the stage.
func Pending(log *slog.Logger, decider Decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignment.approve.Pending"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := decider.PendingAssignments(ctx, stage, id.UserID)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}
		if list == nil {
			list = []storage.Assignment{}
		}

		render.JSON(w, r, list)
	}
}

func Approve(log *slog.Logger, decider Decider) http.HandlerFunc {
	return decide(log, "handlers.assignment.approve.Approve", decider.Approve)
}

// Deny rejects an assignment; the body must carry a remark.
func Deny(log *slog.Logger, decider Decider) http.HandlerFunc {
	return decide(log, "handlers.assignment.approve.Deny", decider.Deny)
}

type decideFunc func(ctx context.Context, stage storage.Stage, id, approverID int64, remark string) error

func decide(log *slog.Logger, op string, fn decideFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if err := fn(ctx, stage, req.AssignmentID, id.UserID, req.Remark); err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("assignment decided",
			slog.String("op", op),
			slog.String("stage", string(stage)),
			slog.Int64("assignment_id", req.AssignmentID),
			slog.Int64("user_id", id.UserID),
		)

		response.OK(w, r, nil)
	}
}
