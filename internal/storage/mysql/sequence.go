package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garment-erp/internal/storage"
)

// NextSequence increments a named counter under a row lock. The row is
// created on first use, so the first value of a key is 1.
func (q *queries) NextSequence(ctx context.Context, key string) (int64, error) {
	const op = "storage.mysql.NextSequence"

	_, err := q.q.ExecContext(ctx, `INSERT IGNORE INTO sequences (seq_key, value) VALUES (?, 0)`, key)
	if err != nil {
		return 0, fmt.Errorf("%s: init sequence %s: %w", op, key, err)
	}

	var value int64
	err = q.q.QueryRowContext(ctx, `SELECT value FROM sequences WHERE seq_key = ? FOR UPDATE`, key).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("%s: lock sequence %s: %w", op, key, err)
	}

	value++
	if _, err := q.q.ExecContext(ctx, `UPDATE sequences SET value = ? WHERE seq_key = ?`, value, key); err != nil {
		return 0, fmt.Errorf("%s: update sequence %s: %w", op, key, err)
	}

	return value, nil
}

// LockLot takes the row lock of a cutting lot for the rest of the
// transaction.
func (q *queries) LockLot(ctx context.Context, lotNo string) error {
	const op = "storage.mysql.LockLot"

	var id int64
	err := q.q.QueryRowContext(ctx, `SELECT id FROM cutting_lots WHERE lot_no = ? FOR UPDATE`, lotNo).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: lot %s: %w", op, lotNo, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: lot %s: %w", op, lotNo, err)
	}

	return nil
}
