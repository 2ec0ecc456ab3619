package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"garment-erp/internal/storage"
)

// tables resolves the table set of a production stage. Stage values come
// from a closed enum, so the names are safe to splice into queries.
func tables(stage storage.Stage) (storage.StageTables, error) {
	if !stage.IsProduction() {
		return storage.StageTables{}, fmt.Errorf("stage %q has no production tables", stage)
	}
	return stage.Tables(), nil
}

func assignmentSelect(t storage.StageTables) string {
	return fmt.Sprintf(`
		SELECT a.id, a.assigner_id, COALESCE(ur.name, ''), a.assignee_id, COALESCE(ue.name, ''),
		       a.source_record_id, a.lot_no, a.sizes_json, a.assigned_pieces, a.assigned_on,
		       a.is_approved, a.approved_on, a.assignment_remark
		FROM %s a
		LEFT JOIN users ur ON ur.id = a.assigner_id
		LEFT JOIN users ue ON ue.id = a.assignee_id`, t.Assignments)
}

func scanAssignment(row interface{ Scan(...any) error }) (*storage.Assignment, error) {
	var (
		a          storage.Assignment
		sizesJSON  []byte
		approved   sql.NullBool
		approvedOn sql.NullTime
	)
	err := row.Scan(&a.ID, &a.AssignerID, &a.AssignerName, &a.AssigneeID, &a.AssigneeName,
		&a.SourceRecordID, &a.LotNo, &sizesJSON, &a.AssignedPieces, &a.AssignedOn,
		&approved, &approvedOn, &a.Remark)
	if err != nil {
		return nil, err
	}

	if approved.Valid {
		v := approved.Bool
		a.IsApproved = &v
	}
	a.ApprovedOn = nullTime(approvedOn)

	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &a.Sizes); err != nil {
			return nil, fmt.Errorf("decode sizes of assignment %d: %w", a.ID, err)
		}
	}

	return &a, nil
}

func (q *queries) Assignment(ctx context.Context, stage storage.Stage, id int64) (*storage.Assignment, error) {
	const op = "storage.mysql.Assignment"

	t, err := tables(stage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a, err := scanAssignment(q.q.QueryRowContext(ctx, assignmentSelect(t)+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %s assignment id=%d: %w", op, stage, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s assignment id=%d: %w", op, stage, id, err)
	}

	return a, nil
}

func (q *queries) LatestAssignment(ctx context.Context, stage storage.Stage, lotNo string) (*storage.Assignment, error) {
	const op = "storage.mysql.LatestAssignment"

	t, err := tables(stage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := assignmentSelect(t) + ` WHERE a.lot_no = ? ORDER BY a.assigned_on DESC, a.id DESC LIMIT 1`

	a, err := scanAssignment(q.q.QueryRowContext(ctx, query, lotNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %s assignment for lot %s: %w", op, stage, lotNo, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s assignment for lot %s: %w", op, stage, lotNo, err)
	}

	return a, nil
}

func (q *queries) PendingAssignments(ctx context.Context, stage storage.Stage, assigneeID int64) ([]storage.Assignment, error) {
	const op = "storage.mysql.PendingAssignments"

	t, err := tables(stage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := assignmentSelect(t) + ` WHERE a.assignee_id = ? AND a.is_approved IS NULL ORDER BY a.assigned_on, a.id`

	rows, err := q.q.QueryContext(ctx, query, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []storage.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return list, nil
}

// SourceRecord loads the upstream row of an assignment: a cutting lot or a
// production record of the given stage, with its sizes.
func (q *queries) SourceRecord(ctx context.Context, stage storage.Stage, id int64) (*storage.SourceRecord, error) {
	const op = "storage.mysql.SourceRecord"

	if stage == storage.StageCutting {
		lot, err := q.LotByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		src := &storage.SourceRecord{ID: lot.ID, OwnerID: lot.UserID, LotNo: lot.LotNo, SKU: lot.SKU, Sizes: map[string]int{}}
		for _, sz := range lot.Sizes {
			src.Sizes[sz.Label] += sz.TotalPieces
		}
		return src, nil
	}

	p, err := q.Production(ctx, stage, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.SourceRecord{ID: p.ID, OwnerID: p.UserID, LotNo: p.LotNo, SKU: p.SKU, Sizes: p.SizeMap()}, nil
}

func (q *queries) InsertAssignment(ctx context.Context, stage storage.Stage, a *storage.Assignment) (int64, error) {
	const op = "storage.mysql.InsertAssignment"

	t, err := tables(stage)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sizesJSON, err := json.Marshal(a.Sizes)
	if err != nil {
		return 0, fmt.Errorf("%s: encode sizes: %w", op, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (assigner_id, assignee_id, source_record_id, lot_no, sizes_json, assigned_pieces, assigned_on, assignment_remark)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, t.Assignments)

	res, err := q.q.ExecContext(ctx, query, a.AssignerID, a.AssigneeID, a.SourceRecordID, a.LotNo,
		sizesJSON, a.AssignedPieces, a.AssignedOn, a.Remark)
	if err != nil {
		return 0, fmt.Errorf("%s: insert %s assignment for lot %s: %w", op, stage, a.LotNo, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

// DecideAssignment only touches rows that are still undecided, so of two
// racing decisions exactly one reports true.
func (q *queries) DecideAssignment(ctx context.Context, stage storage.Stage, id, assigneeID int64, approved bool, remark string, at time.Time) (bool, error) {
	const op = "storage.mysql.DecideAssignment"

	t, err := tables(stage)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_approved = ?, approved_on = ?, assignment_remark = IF(? = '', assignment_remark, ?)
		WHERE id = ? AND assignee_id = ? AND is_approved IS NULL`, t.Assignments)

	res, err := q.q.ExecContext(ctx, query, approved, at, remark, remark, id, assigneeID)
	if err != nil {
		return false, fmt.Errorf("%s: %s assignment id=%d: %w", op, stage, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return n == 1, nil
}
