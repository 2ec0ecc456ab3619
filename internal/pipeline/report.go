package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"garment-erp/internal/storage"
)

// ReportTimeout bounds requests that build reports over many lots, including
// the spreadsheet downloads.
const ReportTimeout = 10 * time.Second

// Snapshot loads what the status projector needs for one lot. Only the
// stages of the lot's chain are queried.
func (s *Service) Snapshot(ctx context.Context, lot *storage.Lot) (LotSnapshot, error) {
	const op = "pipeline.Snapshot"

	snap := LotSnapshot{
		LotNo:    lot.LotNo,
		SKU:      lot.SKU,
		CutTotal: lot.TotalPieces,
		Stages:   make(map[storage.Stage]StageSnapshot),
	}

	for _, stage := range Chain(s.classifier.IsDenim(lot.LotNo)) {
		a, err := s.store.LatestAssignment(ctx, stage, lot.LotNo)
		if errors.Is(err, storage.ErrNotFound) {
			a, err = nil, nil
		}
		if err != nil {
			return snap, storeErr(op, "assignment", lot.LotNo, err)
		}

		totals, err := s.store.SizeTotals(ctx, stage, lot.LotNo)
		if err != nil {
			return snap, storeErr(op, "size totals", lot.LotNo, err)
		}

		snap.Stages[stage] = StageSnapshot{Assignment: a, Produced: sumSizes(totals)}
	}

	return snap, nil
}

// LotStatus projects the pipeline status of a single lot.
func (s *Service) LotStatus(ctx context.Context, lotNo string) (*LotStatus, error) {
	const op = "pipeline.LotStatus"

	lot, err := s.store.Lot(ctx, lotNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "lot", lotNo, err))
	}

	snap, err := s.Snapshot(ctx, lot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st := Project(snap, s.classifier.IsDenim(lot.LotNo))
	return &st, nil
}

// PICReport projects every lot matching the filter. Snapshots are loaded in
// parallel, bounded by the configured worker count; the result keeps the
// order of the lot listing.
func (s *Service) PICReport(ctx context.Context, filter storage.LotFilter) ([]LotStatus, error) {
	const op = "pipeline.PICReport"

	lots, err := s.store.Lots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeErr(op, "lots", filter.Search, err))
	}

	out := make([]LotStatus, len(lots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.reportWorkers)

	for i := range lots {
		i := i
		lot := &lots[i]
		g.Go(func() error {
			snap, err := s.Snapshot(gctx, lot)
			if err != nil {
				return err
			}
			out[i] = Project(snap, s.classifier.IsDenim(lot.LotNo))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
