package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garment-erp/internal/storage"
)

func productionSelect(t storage.StageTables) string {
	return fmt.Sprintf(`
		SELECT d.id, d.user_id, COALESCE(u.name, ''), d.assignment_id, d.lot_no, d.sku, d.total_pieces,
		       d.remark, d.image_url, d.created_at
		FROM %s d
		LEFT JOIN users u ON u.id = d.user_id`, t.Data)
}

func scanProduction(row interface{ Scan(...any) error }) (*storage.Production, error) {
	p := &storage.Production{}
	err := row.Scan(&p.ID, &p.UserID, &p.UserName, &p.AssignmentID, &p.LotNo, &p.SKU, &p.TotalPieces,
		&p.Remark, &p.ImageURL, &p.CreatedAt)
	return p, err
}

func (q *queries) Production(ctx context.Context, stage storage.Stage, id int64) (*storage.Production, error) {
	const op = "storage.mysql.Production"

	t, err := tables(stage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := scanProduction(q.q.QueryRowContext(ctx, productionSelect(t)+` WHERE d.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %s record id=%d: %w", op, stage, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s record id=%d: %w", op, stage, id, err)
	}

	if err := q.loadProductionSizes(ctx, t, []*storage.Production{p}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// Productions lists the records of a stage, newest first. A zero userID
// lists every worker's records.
func (q *queries) Productions(ctx context.Context, stage storage.Stage, userID int64) ([]storage.Production, error) {
	const op = "storage.mysql.Productions"

	t, err := tables(stage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := productionSelect(t)
	var args []any
	if userID != 0 {
		query += ` WHERE d.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY d.created_at DESC, d.id DESC`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []storage.Production
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	ptrs := make([]*storage.Production, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	if err := q.loadProductionSizes(ctx, t, ptrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (q *queries) loadProductionSizes(ctx context.Context, t storage.StageTables, list []*storage.Production) error {
	const op = "storage.mysql.loadProductionSizes"

	if len(list) == 0 {
		return nil
	}

	byID := make(map[int64]*storage.Production, len(list))
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := fmt.Sprintf(`SELECT %s, size_label, pieces FROM %s WHERE %s IN (%s) ORDER BY id`,
		t.ForeignKey, t.Sizes, t.ForeignKey, placeholders(len(ids)))

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
		if p, ok := byID[id]; ok {
			p.Sizes = append(p.Sizes, sz)
		}
	}

	return rows.Err()
}

func (q *queries) ProductionExists(ctx context.Context, stage storage.Stage, lotNo string, userID int64) (bool, error) {
	const op = "storage.mysql.ProductionExists"

	t, err := tables(stage)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE lot_no = ? AND user_id = ?)`, t.Data)
	if err := q.q.QueryRowContext(ctx, query, lotNo, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// SizeTotals sums pieces per size of a lot at a stage. The cutting stage
// reads the cut sizes of the lot.
func (q *queries) SizeTotals(ctx context.Context, stage storage.Stage, lotNo string) (map[string]int, error) {
	const op = "storage.mysql.SizeTotals"

	var query string
	if stage == storage.StageCutting {
		query = `
			SELECT s.size_label, COALESCE(SUM(s.total_pieces), 0)
			FROM cutting_lot_sizes s
			JOIN cutting_lots l ON l.id = s.cutting_lot_id
			WHERE l.lot_no = ?
			GROUP BY s.size_label`
	} else {
		t, err := tables(stage)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		query = fmt.Sprintf(`
			SELECT s.size_label, COALESCE(SUM(s.pieces), 0)
			FROM %s s
			JOIN %s d ON d.id = s.%s
			WHERE d.lot_no = ?
			GROUP BY s.size_label`, t.Sizes, t.Data, t.ForeignKey)
	}

	rows, err := q.q.QueryContext(ctx, query, lotNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %s totals for lot %s: %w", op, stage, lotNo, err)
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

func (q *queries) InsertProduction(ctx context.Context, stage storage.Stage, p *storage.Production) (int64, error) {
	const op = "storage.mysql.InsertProduction"

	t, err := tables(stage)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, assignment_id, lot_no, sku, total_pieces, remark, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, t.Data)

	res, err := q.q.ExecContext(ctx, query, p.UserID, p.AssignmentID, p.LotNo, p.SKU, p.TotalPieces, p.Remark, p.ImageURL, p.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: %s record for lot %s: %w", op, stage, p.LotNo, storage.ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: insert %s record for lot %s: %w", op, stage, p.LotNo, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	stmt, err := q.q.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s, size_label, pieces) VALUES (?, ?, ?)`, t.Sizes, t.ForeignKey))
	if err != nil {
		return 0, fmt.Errorf("%s: prepare sizes: %w", op, err)
	}
	defer stmt.Close()

	for _, sz := range p.Sizes {
		if sz.Pieces == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, sz.Label, sz.Pieces); err != nil {
			return 0, fmt.Errorf("%s: insert size %s: %w", op, sz.Label, err)
		}
	}

	return id, nil
}

// AddPieces upserts one size row by a signed delta, appends the audit row and
// recomputes the parent total from the size rows.
func (q *queries) AddPieces(ctx context.Context, stage storage.Stage, recordID int64, label string, delta int, at time.Time) error {
	const op = "storage.mysql.AddPieces"

	t, err := tables(stage)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (%s, size_label, pieces) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE pieces = pieces + VALUES(pieces)`, t.Sizes, t.ForeignKey)
	if _, err := q.q.ExecContext(ctx, upsert, recordID, label, delta); err != nil {
		return fmt.Errorf("%s: upsert size %s of %s record id=%d: %w", op, label, stage, recordID, err)
	}

	audit := fmt.Sprintf(`INSERT INTO %s (%s, size_label, pieces, updated_at) VALUES (?, ?, ?, ?)`, t.Updates, t.ForeignKey)
	if _, err := q.q.ExecContext(ctx, audit, recordID, label, delta, at); err != nil {
		return fmt.Errorf("%s: audit size %s of %s record id=%d: %w", op, label, stage, recordID, err)
	}

	total := fmt.Sprintf(`
		UPDATE %s SET total_pieces = (SELECT COALESCE(SUM(pieces), 0) FROM %s WHERE %s = ?)
		WHERE id = ?`, t.Data, t.Sizes, t.ForeignKey)
	if _, err := q.q.ExecContext(ctx, total, recordID, recordID); err != nil {
		return fmt.Errorf("%s: total of %s record id=%d: %w", op, stage, recordID, err)
	}

	return nil
}
