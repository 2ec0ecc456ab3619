package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"garment-erp/internal/storage"
)

type AssignmentInput struct {
	AssignerID     int64
	AssigneeID     int64
	LotNo          string
	SourceRecordID int64
	Sizes          map[string]int
	Remark         string
}

// CreateAssignment delegates part of a lot to a worker of the next stage. The
// assignment starts undecided.
func (s *Service) CreateAssignment(ctx context.Context, stage storage.Stage, in AssignmentInput) (int64, error) {
	const op = "pipeline.CreateAssignment"

	if !stage.IsProduction() {
		return 0, validationf("stage %s does not take assignments", stage)
	}
	if in.AssigneeID == 0 {
		return 0, validationf("assignee is required")
	}
	if strings.TrimSpace(in.LotNo) == "" {
		return 0, validationf("lot number is required")
	}
	if len(in.Sizes) == 0 {
		return 0, validationf("at least one size is required")
	}
	total := 0
	for label, pieces := range in.Sizes {
		if pieces <= 0 {
			return 0, validationf("size %s: pieces must be greater than 0", label)
		}
		total += pieces
	}

	denim := s.classifier.IsDenim(in.LotNo)
	if !InChain(stage, denim) {
		return 0, validationf("stage %s does not apply to lot %s", stage.Label(), in.LotNo)
	}
	source := Upstream(stage, denim)

	var id int64
	err := s.store.InTx(ctx, func(tx Tx) error {
		assignee, err := tx.UserByID(ctx, in.AssigneeID)
		if errors.Is(err, storage.ErrNotFound) {
			return validationf("assignee %d does not exist", in.AssigneeID)
		}
		if err != nil {
			return storeErr(op, "user", in.AssigneeID, err)
		}
		if !assignee.IsActive {
			return validationf("assignee %s is not active", assignee.Name)
		}

		src, err := tx.SourceRecord(ctx, source, in.SourceRecordID)
		if errors.Is(err, storage.ErrNotFound) {
			return validationf("%s record %d does not exist", source.Label(), in.SourceRecordID)
		}
		if err != nil {
			return storeErr(op, "source record", in.SourceRecordID, err)
		}
		if !strings.EqualFold(src.LotNo, in.LotNo) {
			return validationf("%s record %d belongs to lot %s, not %s", source.Label(), src.ID, src.LotNo, in.LotNo)
		}
		if src.OwnerID != in.AssignerID {
			return validationf("%s record %d is not in your chain", source.Label(), src.ID)
		}
		for _, label := range sortedKeys(in.Sizes) {
			if src.Sizes[label] <= 0 {
				return validationf("size %s is not available on %s record %d", label, source.Label(), src.ID)
			}
		}

		if stage == storage.StageWashingIn {
			_, err := tx.PendingRewash(ctx, src.ID)
			if err == nil {
				return validationf("washing record %d has a pending rewash", src.ID)
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return storeErr(op, "rewash", src.ID, err)
			}
		}

		a := &storage.Assignment{
			AssignerID:     in.AssignerID,
			AssigneeID:     in.AssigneeID,
			SourceRecordID: src.ID,
			LotNo:          src.LotNo,
			Sizes:          in.Sizes,
			AssignedPieces: total,
			AssignedOn:     s.now(),
			Remark:         in.Remark,
		}
		id, err = tx.InsertAssignment(ctx, stage, a)
		if err != nil {
			return storeErr(op, "assignment", src.LotNo, err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// Approve accepts an assignment addressed to the approver.
func (s *Service) Approve(ctx context.Context, stage storage.Stage, id, approverID int64, remark string) error {
	return s.decide(ctx, stage, id, approverID, true, remark)
}

// Deny rejects an assignment. Unlike Approve a remark is mandatory.
func (s *Service) Deny(ctx context.Context, stage storage.Stage, id, approverID int64, remark string) error {
	if strings.TrimSpace(remark) == "" {
		return validationf("a remark is required to deny an assignment")
	}
	return s.decide(ctx, stage, id, approverID, false, remark)
}

func (s *Service) decide(ctx context.Context, stage storage.Stage, id, approverID int64, approved bool, remark string) error {
	const op = "pipeline.decide"

	if !stage.IsProduction() {
		return validationf("stage %s does not take assignments", stage)
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		a, err := tx.Assignment(ctx, stage, id)
		if err != nil {
			return storeErr(op, "assignment", id, err)
		}
		if a.AssigneeID != approverID {
			return &NotFoundError{Entity: "assignment", ID: id}
		}

		switch ApprovalOf(a) {
		case ApprovalApproved:
			return validationf("assignment %d is already approved", id)
		case ApprovalDenied:
			return validationf("assignment %d is already denied", id)
		}

		ok, err := tx.DecideAssignment(ctx, stage, id, approverID, approved, strings.TrimSpace(remark), s.now())
		if err != nil {
			return storeErr(op, "assignment", id, err)
		}
		if !ok {
			return validationf("assignment %d was already decided", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PendingAssignments lists the undecided assignments addressed to a worker.
func (s *Service) PendingAssignments(ctx context.Context, stage storage.Stage, assigneeID int64) ([]storage.Assignment, error) {
	const op = "pipeline.PendingAssignments"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not take assignments", stage)
	}

	list, err := s.store.PendingAssignments(ctx, stage, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "assignments", assigneeID, err))
	}
	return list, nil
}
