package pipeline

import (
	"context"
	"errors"
	"fmt"

	"garment-erp/internal/storage"
)

type RewashInput struct {
	UserID        int64
	WashingDataID int64
	Sizes         map[string]int
	Remark        string
}

// CreateRewash pulls pieces out of a washing record for rework. The pieces
// leave the pool as soon as the request is created.
func (s *Service) CreateRewash(ctx context.Context, in RewashInput) (*storage.Rewash, error) {
	const op = "pipeline.CreateRewash"

	if len(in.Sizes) == 0 {
		return nil, validationf("at least one size is required")
	}

	var r *storage.Rewash
	err := s.store.InTx(ctx, func(tx Tx) error {
		rec, err := tx.Production(ctx, storage.StageWashing, in.WashingDataID)
		if err != nil {
			return storeErr(op, "washing record", in.WashingDataID, err)
		}
		if rec.UserID != in.UserID {
			return authorizationf("washing record %d does not belong to you", rec.ID)
		}

		if err := tx.LockLot(ctx, rec.LotNo); err != nil {
			return storeErr(op, "lot", rec.LotNo, err)
		}

		_, err = tx.PendingRewash(ctx, rec.ID)
		if err == nil {
			return &DuplicateError{Msg: fmt.Sprintf("washing record %d already has a pending rewash", rec.ID)}
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storeErr(op, "rewash", rec.ID, err)
		}

		washed, err := tx.SizeTotals(ctx, storage.StageWashing, rec.LotNo)
		if err != nil {
			return storeErr(op, "size totals", rec.LotNo, err)
		}
		received, err := tx.SizeTotals(ctx, storage.StageWashingIn, rec.LotNo)
		if err != nil {
			return storeErr(op, "size totals", rec.LotNo, err)
		}

		have := rec.SizeMap()
		var (
			sizes []storage.ProductionSize
			total int
		)
		for _, label := range sortedKeys(in.Sizes) {
			pieces := in.Sizes[label]
			if pieces <= 0 {
				continue
			}
			remain := min(have[label], Remain(washed, received, label))
			if pieces > remain {
				return &InsufficientRemainderError{Label: label, Requested: pieces, Remain: max(remain, 0)}
			}
			sizes = append(sizes, storage.ProductionSize{Label: label, Pieces: pieces})
			total += pieces
		}
		if total <= 0 {
			return validationf("no pieces entered")
		}

		at := s.now()
		r = &storage.Rewash{
			WashingDataID:  rec.ID,
			UserID:         in.UserID,
			LotNo:          rec.LotNo,
			TotalRequested: total,
			Status:         storage.RewashPending,
			Remark:         in.Remark,
			CreatedAt:      at,
			Sizes:          sizes,
		}
		r.ID, err = tx.InsertRewash(ctx, r)
		if err != nil {
			return storeErr(op, "rewash", rec.ID, err)
		}

		for _, sz := range sizes {
			if err := tx.AddPieces(ctx, storage.StageWashing, rec.ID, sz.Label, -sz.Pieces, at); err != nil {
				return storeErr(op, "washing size", sz.Label, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

// CompleteRewash returns the pieces of a pending request to its washing record.
func (s *Service) CompleteRewash(ctx context.Context, userID, rewashID int64) (*storage.Rewash, error) {
	const op = "pipeline.CompleteRewash"

	var r *storage.Rewash
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		r, err = tx.Rewash(ctx, rewashID)
		if err != nil {
			return storeErr(op, "rewash", rewashID, err)
		}
		if r.UserID != userID {
			return authorizationf("rewash %d does not belong to you", r.ID)
		}
		if r.Status != storage.RewashPending {
			return validationf("rewash %d is already %s", r.ID, r.Status)
		}

		if err := tx.LockLot(ctx, r.LotNo); err != nil {
			return storeErr(op, "lot", r.LotNo, err)
		}

		at := s.now()
		ok, err := tx.CompleteRewash(ctx, r.ID, at)
		if err != nil {
			return storeErr(op, "rewash", r.ID, err)
		}
		if !ok {
			return validationf("rewash %d is no longer pending", r.ID)
		}

		for _, sz := range r.Sizes {
			if err := tx.AddPieces(ctx, storage.StageWashing, r.WashingDataID, sz.Label, sz.Pieces, at); err != nil {
				return storeErr(op, "washing size", sz.Label, err)
			}
		}

		r.Status = storage.RewashCompleted
		r.CompletedAt = &at
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

func (s *Service) PendingRewashes(ctx context.Context, userID int64) ([]storage.Rewash, error) {
	const op = "pipeline.PendingRewashes"

	list, err := s.store.PendingRewashes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "rewashes", userID, err))
	}
	return list, nil
}
