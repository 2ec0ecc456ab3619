package mysql

import (
	"context"
	"fmt"

	"garment-erp/internal/storage"
)

func (q *queries) DispatchedTotals(ctx context.Context, finishingDataID int64) (map[string]int, error) {
	const op = "storage.mysql.DispatchedTotals"

	rows, err := q.q.QueryContext(ctx, `
		SELECT size_label, COALESCE(SUM(pieces), 0)
		FROM finishing_dispatches
		WHERE finishing_data_id = ?
		GROUP BY size_label`, finishingDataID)
	if err != nil {
		return nil, fmt.Errorf("%s: finishing record id=%d: %w", op, finishingDataID, err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var (
			label  string
			pieces int
		)
		if err := rows.Scan(&label, &pieces); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		totals[label] = pieces
	}

	return totals, rows.Err()
}

func (q *queries) Dispatches(ctx context.Context, finishingDataID int64) ([]storage.Dispatch, error) {
	const op = "storage.mysql.Dispatches"

	rows, err := q.q.QueryContext(ctx, `
		SELECT id, finishing_data_id, user_id, lot_no, size_label, pieces, destination, challan_no, dispatched_at
		FROM finishing_dispatches
		WHERE finishing_data_id = ?
		ORDER BY dispatched_at, id`, finishingDataID)
	if err != nil {
		return nil, fmt.Errorf("%s: finishing record id=%d: %w", op, finishingDataID, err)
	}
	defer rows.Close()

	var list []storage.Dispatch
	for rows.Next() {
		var d storage.Dispatch
		err := rows.Scan(&d.ID, &d.FinishingDataID, &d.UserID, &d.LotNo, &d.Label, &d.Pieces,
			&d.Destination, &d.ChallanNo, &d.DispatchedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, d)
	}

	return list, rows.Err()
}

func (q *queries) InsertDispatches(ctx context.Context, list []storage.Dispatch) error {
	const op = "storage.mysql.InsertDispatches"

	stmt, err := q.q.PrepareContext(ctx, `
		INSERT INTO finishing_dispatches
		(finishing_data_id, user_id, lot_no, size_label, pieces, destination, challan_no, dispatched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, d := range list {
		_, err := stmt.ExecContext(ctx, d.FinishingDataID, d.UserID, d.LotNo, d.Label, d.Pieces,
			d.Destination, d.ChallanNo, d.DispatchedAt)
		if err != nil {
			return fmt.Errorf("%s: challan %s size %s: %w", op, d.ChallanNo, d.Label, err)
		}
	}

	return nil
}
