package pipeline

import (
	"context"
	"fmt"

	"garment-erp/internal/storage"
)

type ProductionInput struct {
	UserID       int64
	AssignmentID int64
	Sizes        map[string]int
	Remark       string
	ImageURL     string
}

// CreateProduction records what a worker produced against an approved
// assignment. The whole record is written in one transaction, so a rejected
// size leaves nothing behind.
func (s *Service) CreateProduction(ctx context.Context, stage storage.Stage, in ProductionInput) (*storage.Production, error) {
	const op = "pipeline.CreateProduction"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	var p *storage.Production
	err := s.store.InTx(ctx, func(tx Tx) error {
		a, err := tx.Assignment(ctx, stage, in.AssignmentID)
		if err != nil {
			return storeErr(op, "assignment", in.AssignmentID, err)
		}
		if a.AssigneeID != in.UserID {
			return authorizationf("assignment %d is not assigned to you", a.ID)
		}
		if ApprovalOf(a) != ApprovalApproved {
			return authorizationf("assignment %d is not approved", a.ID)
		}

		denim := s.classifier.IsDenim(a.LotNo)
		upstream := Upstream(stage, denim)

		src, err := tx.SourceRecord(ctx, upstream, a.SourceRecordID)
		if err != nil {
			return storeErr(op, "source record", a.SourceRecordID, err)
		}
		lotNo := src.LotNo

		if err := tx.LockLot(ctx, lotNo); err != nil {
			return storeErr(op, "lot", lotNo, err)
		}

		exists, err := tx.ProductionExists(ctx, stage, lotNo, in.UserID)
		if err != nil {
			return storeErr(op, "production", lotNo, err)
		}
		if exists {
			return &DuplicateError{Msg: fmt.Sprintf("%s entry for lot %s already exists, add pieces through update", stage.Label(), lotNo)}
		}

		accepted, total, err := s.checkRemain(ctx, tx, upstream, stage, lotNo, in.Sizes)
		if err != nil {
			return err
		}
		if total <= 0 {
			return validationf("no pieces entered")
		}

		p = &storage.Production{
			UserID:       in.UserID,
			AssignmentID: a.ID,
			LotNo:        lotNo,
			SKU:          src.SKU,
			TotalPieces:  total,
			Remark:       in.Remark,
			ImageURL:     in.ImageURL,
			CreatedAt:    s.now(),
			Sizes:        accepted,
		}
		p.ID, err = tx.InsertProduction(ctx, stage, p)
		if err != nil {
			return storeErr(op, "production", lotNo, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// IncrementProduction adds pieces to an existing record. Each size is checked
// against a freshly computed remainder.
func (s *Service) IncrementProduction(ctx context.Context, stage storage.Stage, userID, recordID int64, increments map[string]int) (*storage.Production, error) {
	const op = "pipeline.IncrementProduction"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	var p *storage.Production
	err := s.store.InTx(ctx, func(tx Tx) error {
		rec, err := tx.Production(ctx, stage, recordID)
		if err != nil {
			return storeErr(op, "production", recordID, err)
		}
		if rec.UserID != userID {
			return authorizationf("%s entry %d does not belong to you", stage.Label(), recordID)
		}

		if err := tx.LockLot(ctx, rec.LotNo); err != nil {
			return storeErr(op, "lot", rec.LotNo, err)
		}

		upstream := Upstream(stage, s.classifier.IsDenim(rec.LotNo))
		accepted, _, err := s.checkRemain(ctx, tx, upstream, stage, rec.LotNo, increments)
		if err != nil {
			return err
		}

		at := s.now()
		for _, sz := range accepted {
			if err := tx.AddPieces(ctx, stage, rec.ID, sz.Label, sz.Pieces, at); err != nil {
				return storeErr(op, "production size", sz.Label, err)
			}
		}

		p, err = tx.Production(ctx, stage, rec.ID)
		if err != nil {
			return storeErr(op, "production", rec.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Service) checkRemain(ctx context.Context, r Reader, upstream, stage storage.Stage, lotNo string, requested map[string]int) ([]storage.ProductionSize, int, error) {
	const op = "pipeline.checkRemain"

	up, err := r.SizeTotals(ctx, upstream, lotNo)
	if err != nil {
		return nil, 0, storeErr(op, "size totals", lotNo, err)
	}
	down, err := consumed(ctx, r, stage, lotNo)
	if err != nil {
		return nil, 0, storeErr(op, "size totals", lotNo, err)
	}
	return CheckRemain(up, down, requested)
}

// consumed is what a stage has taken from its upstream. Pieces sitting in a
// pending rewash were removed from washing but come back on completion, so
// they still count against the assembly output.
func consumed(ctx context.Context, r Reader, stage storage.Stage, lotNo string) (map[string]int, error) {
	down, err := r.SizeTotals(ctx, stage, lotNo)
	if err != nil {
		return nil, err
	}
	if stage != storage.StageWashing {
		return down, nil
	}

	pending, err := r.PendingRewashTotals(ctx, lotNo)
	if err != nil {
		return nil, err
	}
	for label, n := range pending {
		down[label] += n
	}
	return down, nil
}

// LotRemainder answers "what can still be produced" for an assignment.
type LotRemainder struct {
	AssignmentID int64          `json:"assignment_id"`
	LotNo        string         `json:"lot_no"`
	SKU          string         `json:"sku"`
	Assigned     map[string]int `json:"assigned"`
	Sizes        []SizeRemain   `json:"sizes"`
}

func (s *Service) LotRemainders(ctx context.Context, stage storage.Stage, assignmentID int64) (*LotRemainder, error) {
	const op = "pipeline.LotRemainders"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	a, err := s.store.Assignment(ctx, stage, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "assignment", assignmentID, err))
	}

	upstream := Upstream(stage, s.classifier.IsDenim(a.LotNo))
	src, err := s.store.SourceRecord(ctx, upstream, a.SourceRecordID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "source record", a.SourceRecordID, err))
	}

	up, err := s.store.SizeTotals(ctx, upstream, src.LotNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "size totals", src.LotNo, err))
	}
	down, err := consumed(ctx, s.store, stage, src.LotNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "size totals", src.LotNo, err))
	}

	return &LotRemainder{
		AssignmentID: a.ID,
		LotNo:        src.LotNo,
		SKU:          src.SKU,
		Assigned:     a.Sizes,
		Sizes:        Leftover(up, down),
	}, nil
}

// Production returns one record of the caller.
func (s *Service) Production(ctx context.Context, stage storage.Stage, userID, id int64) (*storage.Production, error) {
	const op = "pipeline.Production"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	p, err := s.store.Production(ctx, stage, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "production", id, err))
	}
	if p.UserID != userID {
		return nil, authorizationf("%s entry %d does not belong to you", stage.Label(), id)
	}
	return p, nil
}

// Entries lists the caller's records at a stage; userID 0 lists everyone's.
func (s *Service) Entries(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error) {
	const op = "pipeline.Entries"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	list, err := s.store.Productions(ctx, stage, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "productions", userID, err))
	}
	return list, nil
}

// Challan is the printable delivery note of a production record.
type Challan struct {
	Stage      string              `json:"stage"`
	Production *storage.Production `json:"production"`
	Assignment *storage.Assignment `json:"assignment"`
	FabricType string              `json:"fabric_type"`
}

func (s *Service) Challan(ctx context.Context, stage storage.Stage, id int64) (*Challan, error) {
	const op = "pipeline.Challan"

	if !stage.IsProduction() {
		return nil, validationf("stage %s does not record production", stage)
	}

	p, err := s.store.Production(ctx, stage, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "production", id, err))
	}
	a, err := s.store.Assignment(ctx, stage, p.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "assignment", p.AssignmentID, err))
	}
	lot, err := s.store.Lot(ctx, p.LotNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "lot", p.LotNo, err))
	}

	return &Challan{
		Stage:      stage.Label(),
		Production: p,
		Assignment: a,
		FabricType: lot.FabricType,
	}, nil
}
