package pipeline

import (
	"context"
	"time"

	"garment-erp/internal/storage"
)

// Reader is the read side of the pipeline tables. Every total is an aggregate
// over raw rows; nothing is cached.
type Reader interface {
	Lot(ctx context.Context, lotNo string) (*storage.Lot, error)
	LotByID(ctx context.Context, id int64) (*storage.Lot, error)
	Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error)

	Assignment(ctx context.Context, stage storage.Stage, id int64) (*storage.Assignment, error)
	LatestAssignment(ctx context.Context, stage storage.Stage, lotNo string) (*storage.Assignment, error)
	PendingAssignments(ctx context.Context, stage storage.Stage, assigneeID int64) ([]storage.Assignment, error)
	SourceRecord(ctx context.Context, stage storage.Stage, id int64) (*storage.SourceRecord, error)

	Production(ctx context.Context, stage storage.Stage, id int64) (*storage.Production, error)
	Productions(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error)
	ProductionExists(ctx context.Context, stage storage.Stage, lotNo string, userID int64) (bool, error)
	// SizeTotals sums pieces per size label for a lot at a stage. For the
	// cutting stage it reads the lot's cut sizes.
	SizeTotals(ctx context.Context, stage storage.Stage, lotNo string) (map[string]int, error)

	Rewash(ctx context.Context, id int64) (*storage.Rewash, error)
	PendingRewash(ctx context.Context, washingDataID int64) (*storage.Rewash, error)
	PendingRewashes(ctx context.Context, userID int64) ([]storage.Rewash, error)
	// PendingRewashTotals sums the pieces per size held in pending rewash
	// requests of a lot.
	PendingRewashTotals(ctx context.Context, lotNo string) (map[string]int, error)

	UserByID(ctx context.Context, id int64) (*storage.User, error)

	DispatchedTotals(ctx context.Context, finishingDataID int64) (map[string]int, error)
	Dispatches(ctx context.Context, finishingDataID int64) ([]storage.Dispatch, error)
}

// Tx is a Reader bound to an open transaction plus the mutations.
type Tx interface {
	Reader

	// LockLot takes a row lock on the lot so that check-then-write sequences
	// on the same lot run one at a time.
	LockLot(ctx context.Context, lotNo string) error
	NextSequence(ctx context.Context, key string) (int64, error)

	InsertLot(ctx context.Context, lot *storage.Lot) (int64, error)
	InsertAssignment(ctx context.Context, stage storage.Stage, a *storage.Assignment) (int64, error)
	// DecideAssignment flips a pending assignment; it returns false when the
	// row is not pending any more.
	DecideAssignment(ctx context.Context, stage storage.Stage, id, assigneeID int64, approved bool, remark string, at time.Time) (bool, error)

	InsertProduction(ctx context.Context, stage storage.Stage, p *storage.Production) (int64, error)
	// AddPieces applies a signed delta to one size of a production record,
	// appends the audit row and recomputes the parent total.
	AddPieces(ctx context.Context, stage storage.Stage, recordID int64, label string, delta int, at time.Time) error

	InsertRewash(ctx context.Context, r *storage.Rewash) (int64, error)
	CompleteRewash(ctx context.Context, id int64, at time.Time) (bool, error)

	InsertDispatches(ctx context.Context, rows []storage.Dispatch) error
}

type Store interface {
	Reader
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
