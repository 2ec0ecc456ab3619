package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garment-erp/internal/storage"
)

const lotColumns = `id, user_id, lot_no, sku, fabric_type, total_layers, total_pieces, remark, image_url, created_at`

func scanLot(row interface{ Scan(...any) error }) (*storage.Lot, error) {
	lot := &storage.Lot{}
	err := row.Scan(&lot.ID, &lot.UserID, &lot.LotNo, &lot.SKU, &lot.FabricType, &lot.TotalLayers,
		&lot.TotalPieces, &lot.Remark, &lot.ImageURL, &lot.CreatedAt)
	return lot, err
}

func (q *queries) Lot(ctx context.Context, lotNo string) (*storage.Lot, error) {
	const op = "storage.mysql.Lot"

	lot, err := scanLot(q.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM cutting_lots WHERE lot_no = ?`, lotNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: lot %s: %w", op, lotNo, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: lot %s: %w", op, lotNo, err)
	}

	if err := q.loadLotSizes(ctx, []*storage.Lot{lot}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lot, nil
}

func (q *queries) LotByID(ctx context.Context, id int64) (*storage.Lot, error) {
	const op = "storage.mysql.LotByID"

	lot, err := scanLot(q.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM cutting_lots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: lot id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: lot id=%d: %w", op, id, err)
	}

	if err := q.loadLotSizes(ctx, []*storage.Lot{lot}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lot, nil
}

// Lots lists lots newest first. Every filter field is optional.
func (q *queries) Lots(ctx context.Context, filter storage.LotFilter) ([]storage.Lot, error) {
	const op = "storage.mysql.Lots"

	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		where = append(where, `(lot_no LIKE ? OR sku LIKE ?)`)
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}
	if filter.UserID != 0 {
		where = append(where, `user_id = ?`)
		args = append(args, filter.UserID)
	}
	if !filter.From.IsZero() {
		where = append(where, `created_at >= ?`)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, `created_at < ?`)
		args = append(args, filter.To)
	}

	query := `SELECT ` + lotColumns + ` FROM cutting_lots`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var lots []storage.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		lots = append(lots, *lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	ptrs := make([]*storage.Lot, len(lots))
	for i := range lots {
		ptrs[i] = &lots[i]
	}
	if err := q.loadLotSizes(ctx, ptrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lots, nil
}

func (q *queries) loadLotSizes(ctx context.Context, lots []*storage.Lot) error {
	const op = "storage.mysql.loadLotSizes"

	if len(lots) == 0 {
		return nil
	}

	byID := make(map[int64]*storage.Lot, len(lots))
	ids := make([]int64, 0, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	query := `SELECT cutting_lot_id, size_label, pattern_count, total_pieces
		FROM cutting_lot_sizes WHERE cutting_lot_id IN (` + placeholders(len(ids)) + `) ORDER BY id`

	rows, err := q.q.QueryContext(ctx, query, toInterfaceSlice(ids)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lotID int64
			sz    storage.LotSize
		)
		if err := rows.Scan(&lotID, &sz.Label, &sz.PatternCount, &sz.TotalPieces); err != nil {
			return fmt.Errorf("%s: scan: %w", op, err)
		}
		if l, ok := byID[lotID]; ok {
			l.Sizes = append(l.Sizes, sz)
		}
	}

	return rows.Err()
}

func (q *queries) InsertLot(ctx context.Context, lot *storage.Lot) (int64, error) {
	const op = "storage.mysql.InsertLot"

	res, err := q.q.ExecContext(ctx, `
		INSERT INTO cutting_lots (user_id, lot_no, sku, fabric_type, total_layers, total_pieces, remark, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lot.UserID, lot.LotNo, lot.SKU, lot.FabricType, lot.TotalLayers, lot.TotalPieces, lot.Remark, lot.ImageURL, lot.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: lot %s: %w", op, lot.LotNo, storage.ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: insert lot %s: %w", op, lot.LotNo, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	stmt, err := q.q.PrepareContext(ctx, `
		INSERT INTO cutting_lot_sizes (cutting_lot_id, size_label, pattern_count, total_pieces)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare sizes: %w", op, err)
	}
	defer stmt.Close()

	for _, sz := range lot.Sizes {
		if _, err := stmt.ExecContext(ctx, id, sz.Label, sz.PatternCount, sz.TotalPieces); err != nil {
			return 0, fmt.Errorf("%s: insert size %s: %w", op, sz.Label, err)
		}
	}

	return id, nil
}
