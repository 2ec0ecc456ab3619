package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"garment-erp/internal/config"
	"garment-erp/internal/pipeline"
)

// querier is the part of *sql.DB and *sql.Tx the queries need, so the same
// code runs inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

type Storage struct {
	*queries
	db *sql.DB
}

var (
	_ pipeline.Store = (*Storage)(nil)
	_ pipeline.Tx    = (*queries)(nil)
)

func New(cfg config.DB) (*Storage, error) {
	const op = "storage.mysql.New"

	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.Name
	c.ParseTime = true

	db, err := sql.Open("mysql", c.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return newStorage(db), nil
}

func newStorage(db *sql.DB) *Storage {
	return &Storage{queries: &queries{q: db}, db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// InTx runs fn inside one transaction. Any error returned by fn rolls the
// transaction back and is returned unchanged.
func (s *Storage) InTx(ctx context.Context, fn func(tx pipeline.Tx) error) error {
	const op = "storage.mysql.InTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

func toInterfaceSlice(ids []int64) []any {
	res := make([]any, len(ids))
	for i, id := range ids {
		res[i] = id
	}
	return res
}

// isDuplicate reports a unique key violation (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
