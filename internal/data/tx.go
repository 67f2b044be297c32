package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/halcyonlabs/jobsched/internal/core"
)

// DBTX is the statement surface shared by *sql.DB and *sql.Tx, so the same
// repository code serves plain and transaction-bound access.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLTxConfig groups parameters for WithSQLTx to keep parameter count <= 3.
type SQLTxConfig struct {
	Opts *sql.TxOptions
	Fn   func(*sql.Tx) error
}

// WithSQLTx runs the given function within a database/sql transaction.
func WithSQLTx(ctx context.Context, db *sql.DB, cfg SQLTxConfig) (err error) {
	tx, err := db.BeginTx(ctx, cfg.Opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
	}()
	if err = cfg.Fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Store bundles the job repositories over one database handle and provides
// the transaction scope for multi-statement writes.
type Store struct {
	DB *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

var _ core.TxScope = (*Store)(nil)

// InTx runs fn against transaction-bound job and parameter repositories.
// Everything written through them commits together or not at all.
func (s *Store) InTx(ctx context.Context, fn func(jobs core.JobRepository, params core.JobParameterRepository) error) error {
	return WithSQLTx(ctx, s.DB, SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			return fn(NewJobRepo(tx), NewJobParameterRepo(tx))
		},
	})
}
