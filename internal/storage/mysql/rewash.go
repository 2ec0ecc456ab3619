package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garment-erp/internal/storage"
)

const rewashSelect = `
	SELECT id, washing_data_id, user_id, lot_no, total_requested, status, remark, created_at, completed_at
	FROM rewash_requests`

func scanRewash(row interface{ Scan(...any) error }) (*storage.Rewash, error) {
	var (
		r           storage.Rewash
		completedAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.WashingDataID, &r.UserID, &r.LotNo, &r.TotalRequested, &r.Status,
		&r.Remark, &r.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	r.CompletedAt = nullTime(completedAt)
	return &r, nil
}

func (q *queries) Rewash(ctx context.Context, id int64) (*storage.Rewash, error) {
	const op = "storage.mysql.Rewash"

	r, err := scanRewash(q.q.QueryRowContext(ctx, rewashSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: rewash id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: rewash id=%d: %w", op, id, err)
	}

	if err := q.loadRewashSizes(ctx, []*storage.Rewash{r}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

func (q *queries) PendingRewash(ctx context.Context, washingDataID int64) (*storage.Rewash, error) {
	const op = "storage.mysql.PendingRewash"

	query := rewashSelect + ` WHERE washing_data_id = ? AND status = ? ORDER BY id DESC LIMIT 1`

	r, err := scanRewash(q.q.QueryRowContext(ctx, query, washingDataID, storage.RewashPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: washing record id=%d: %w", op, washingDataID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: washing record id=%d: %w", op, washingDataID, err)
	}

	if err := q.loadRewashSizes(ctx, []*storage.Rewash{r}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

func (q *queries) PendingRewashes(ctx context.Context, userID int64) ([]storage.Rewash, error) {
	const op = "storage.mysql.PendingRewashes"

	rows, err := q.q.QueryContext(ctx, rewashSelect+` WHERE user_id = ? AND status = ? ORDER BY created_at, id`,
		userID, storage.RewashPending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []storage.Rewash
	for rows.Next() {
		r, err := scanRewash(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	ptrs := make([]*storage.Rewash, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	if err := q.loadRewashSizes(ctx, ptrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// PendingRewashTotals sums the pieces per size held in pending rewash
// requests of a lot.
func (q *queries) PendingRewashTotals(ctx context.Context, lotNo string) (map[string]int, error) {
	const op = "storage.mysql.PendingRewashTotals"

	query := `
		SELECT rs.size_label, COALESCE(SUM(rs.pieces), 0)
		FROM rewash_request_sizes rs
		JOIN rewash_requests r ON r.id = rs.rewash_request_id
		WHERE r.lot_no = ? AND r.status = ?
		GROUP BY rs.size_label`

	rows, err := q.q.QueryContext(ctx, query, lotNo, storage.RewashPending)
	if err != nil {
		return nil, fmt.Errorf("%s: lot %s: %w", op, lotNo, err)
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

func (q *queries) loadRewashSizes(ctx context.Context, list []*storage.Rewash) error {
	const op = "storage.mysql.loadRewashSizes"

	if len(list) == 0 {
		return nil
	}

	byID := make(map[int64]*storage.Rewash, len(list))
	ids := make([]int64, 0, len(list))
	for _, r := range list {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	query := `SELECT rewash_request_id, size_label, pieces FROM rewash_request_sizes
		WHERE rewash_request_id IN (` + placeholders(len(ids)) + `) ORDER BY id`

	rows, err := q.q.QueryContext(ctx, query, toInterfaceSlice(ids)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			sz storage.ProductionSize
		)
		if err := rows.Scan(&id, &sz.Label, &sz.Pieces); err != nil {
			return fmt.Errorf("%s: scan: %w", op, err)
		}
		if r, ok := byID[id]; ok {
			r.Sizes = append(r.Sizes, sz)
		}
	}

	return rows.Err()
}

func (q *queries) InsertRewash(ctx context.Context, r *storage.Rewash) (int64, error) {
	const op = "storage.mysql.InsertRewash"

	res, err := q.q.ExecContext(ctx, `
		INSERT INTO rewash_requests (washing_data_id, user_id, lot_no, total_requested, status, remark, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.WashingDataID, r.UserID, r.LotNo, r.TotalRequested, r.Status, r.Remark, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: insert rewash for washing record id=%d: %w", op, r.WashingDataID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	stmt, err := q.q.PrepareContext(ctx, `INSERT INTO rewash_request_sizes (rewash_request_id, size_label, pieces) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare sizes: %w", op, err)
	}
	defer stmt.Close()

	for _, sz := range r.Sizes {
		if _, err := stmt.ExecContext(ctx, id, sz.Label, sz.Pieces); err != nil {
			return 0, fmt.Errorf("%s: insert size %s: %w", op, sz.Label, err)
		}
	}

	return id, nil
}

// CompleteRewash flips a pending request to completed and reports whether it
// was still pending.
func (q *queries) CompleteRewash(ctx context.Context, id int64, at time.Time) (bool, error) {
	const op = "storage.mysql.CompleteRewash"

	res, err := q.q.ExecContext(ctx, `UPDATE rewash_requests SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
		storage.RewashCompleted, at, id, storage.RewashPending)
	if err != nil {
		return false, fmt.Errorf("%s: rewash id=%d: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return n == 1, nil
}
