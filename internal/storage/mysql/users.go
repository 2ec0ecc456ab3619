package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garment-erp/internal/storage"
)

func (s *Storage) Users(ctx context.Context) ([]storage.User, error) {
	const op = "storage.mysql.Users"

	rows, err := s.db.QueryContext(ctx, `SELECT id, username, name, role, is_active FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanUsers(op, rows)
}

// UsersByRole lists the active users of a role; an empty role lists every
// active user.
func (s *Storage) UsersByRole(ctx context.Context, role string) ([]storage.User, error) {
	const op = "storage.mysql.UsersByRole"

	query := `SELECT id, username, name, role, is_active FROM users WHERE is_active = TRUE`
	var args []any
	if role != "" {
		query += ` AND role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanUsers(op, rows)
}

func scanUsers(op string, rows *sql.Rows) ([]storage.User, error) {
	var users []storage.User
	for rows.Next() {
		var u storage.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.IsActive); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return users, nil
}

// UserByID runs on the open transaction when called through a Tx.
func (q *queries) UserByID(ctx context.Context, id int64) (*storage.User, error) {
	const op = "storage.mysql.UserByID"

	var u storage.User
	err := q.q.QueryRowContext(ctx, `SELECT id, username, name, role, is_active FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: user id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: user id=%d: %w", op, id, err)
	}

	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u storage.User) (int64, error) {
	const op = "storage.mysql.CreateUser"

	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username, name, role, is_active) VALUES (?, ?, ?, ?)`,
		u.Username, u.Name, u.Role, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: username %s: %w", op, u.Username, storage.ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdateUsers(ctx context.Context, users []storage.User) error {
	const op = "storage.mysql.UpdateUsers"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE users SET name = ?, role = ?, is_active = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.Name, u.Role, u.IsActive, u.ID); err != nil {
			return fmt.Errorf("%s: update user id=%d: %w", op, u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
