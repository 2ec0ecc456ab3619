package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garment-erp/internal/storage"
)

type DispatchInput struct {
	UserID          int64
	FinishingDataID int64
	Sizes           map[string]int
	Destination     string
}

// FiscalYear returns the April-March year a date belongs to, e.g. "2024-25".
func FiscalYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// CreateDispatch ships finished pieces out of a finishing record under one
// delivery challan. It returns the challan number.
func (s *Service) CreateDispatch(ctx context.Context, in DispatchInput) (string, error) {
	const op = "pipeline.CreateDispatch"

	destination := strings.TrimSpace(in.Destination)
	if destination == "" {
		return "", validationf("destination is required")
	}
	if len(in.Sizes) == 0 {
		return "", validationf("at least one size is required")
	}

	var challan string
	err := s.store.InTx(ctx, func(tx Tx) error {
		rec, err := tx.Production(ctx, storage.StageFinishing, in.FinishingDataID)
		if err != nil {
			return storeErr(op, "finishing record", in.FinishingDataID, err)
		}
		if rec.UserID != in.UserID {
			return authorizationf("finishing record %d does not belong to you", rec.ID)
		}

		if err := tx.LockLot(ctx, rec.LotNo); err != nil {
			return storeErr(op, "lot", rec.LotNo, err)
		}

		dispatched, err := tx.DispatchedTotals(ctx, rec.ID)
		if err != nil {
			return storeErr(op, "dispatches", rec.ID, err)
		}
		accepted, total, err := CheckRemain(rec.SizeMap(), dispatched, in.Sizes)
		if err != nil {
			return err
		}
		if total <= 0 {
			return validationf("no pieces entered")
		}

		at := s.now()
		fy := FiscalYear(at)
		seq, err := tx.NextSequence(ctx, "challan:"+fy)
		if err != nil {
			return storeErr(op, "sequence", fy, err)
		}
		challan = fmt.Sprintf("DC/%s/%04d", fy, seq)

		rows := make([]storage.Dispatch, 0, len(accepted))
		for _, sz := range accepted {
			rows = append(rows, storage.Dispatch{
				FinishingDataID: rec.ID,
				UserID:          in.UserID,
				LotNo:           rec.LotNo,
				Label:           sz.Label,
				Pieces:          sz.Pieces,
				Destination:     destination,
				ChallanNo:       challan,
				DispatchedAt:    at,
			})
		}
		if err := tx.InsertDispatches(ctx, rows); err != nil {
			return storeErr(op, "dispatch", challan, err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return challan, nil
}

type DispatchSummary struct {
	FinishingDataID int64              `json:"finishing_data_id"`
	LotNo           string             `json:"lot_no"`
	Sizes           []SizeRemain       `json:"sizes"`
	Finished        int                `json:"finished"`
	Dispatched      int                `json:"dispatched"`
	FullyDispatched bool               `json:"fully_dispatched"`
	Dispatches      []storage.Dispatch `json:"dispatches"`
}

// DispatchSummary derives how much of a finishing record has left the floor.
func (s *Service) DispatchSummary(ctx context.Context, finishingDataID int64) (*DispatchSummary, error) {
	const op = "pipeline.DispatchSummary"

	rec, err := s.store.Production(ctx, storage.StageFinishing, finishingDataID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "finishing record", finishingDataID, err))
	}
	dispatched, err := s.store.DispatchedTotals(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "dispatches", rec.ID, err))
	}
	rows, err := s.store.Dispatches(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "dispatches", rec.ID, err))
	}

	finished := rec.SizeMap()
	sum := &DispatchSummary{
		FinishingDataID: rec.ID,
		LotNo:           rec.LotNo,
		Sizes:           Leftover(finished, dispatched),
		Finished:        sumSizes(finished),
		Dispatched:      sumSizes(dispatched),
		Dispatches:      rows,
	}
	sum.FullyDispatched = sum.Finished > 0 && sum.Dispatched >= sum.Finished
	return sum, nil
}
