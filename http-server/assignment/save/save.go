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

type AssignmentCreator interface {
	CreateAssignment(ctx context.Context, stage storage.Stage, in pipeline.AssignmentInput) (int64, error)
}

type Request struct {
	AssigneeID     int64          `json:"assignee_id" validate:"required"`
	LotNo          string         `json:"lot_no" validate:"required"`
	SourceRecordID int64          `json:"source_record_id" validate:"required"`
	Sizes          map[string]int `json:"sizes" validate:"required"`
	Remark         string         `json:"remark"`
}

// Assign hands part of a lot to a worker of the stage in the URL.
func Assign(log *slog.Logger, creator AssignmentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignment.save.Assign"

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

		assignmentID, err := creator.CreateAssignment(ctx, stage, pipeline.AssignmentInput{
			AssignerID:     id.UserID,
			AssigneeID:     req.AssigneeID,
			LotNo:          req.LotNo,
			SourceRecordID: req.SourceRecordID,
			Sizes:          req.Sizes,
			Remark:         req.Remark,
		})
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		log.Info("assignment created",
			slog.String("op", op),
			slog.String("stage", string(stage)),
			slog.String("lot_no", req.LotNo),
			slog.Int64("assignee_id", req.AssigneeID),
		)

		response.Created(w, r, map[string]any{"id": assignmentID})
	}
}
