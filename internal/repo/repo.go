// Package repo contains all database access logic for the calendar API.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opensw/calendar-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles the per-resource repositories sharing one db handle.
type Repos struct {
	Events EventRepo
	Tags   TagRepo
}

// NewRepos constructs all repositories on the same db handle.
func NewRepos(db db) Repos {
	return Repos{
		Events: NewEventRepo(db),
		Tags:   NewTagRepo(db),
	}
}

// txBeginner is satisfied by *pgxpool.Pool. It is what Store needs to hand
// out both direct repos and transaction-scoped repos.
type txBeginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store owns the root db handle. Reads go through Repos(); writes that span
// multiple statements go through InTx, which guarantees rollback on every
// error path.
type Store struct {
	db txBeginner
}

// NewStore constructs a Store. In production pass *pgxpool.Pool.
func NewStore(db txBeginner) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the root handle, outside any
// explicit transaction.
func (s *Store) Repos() Repos {
	return NewRepos(s.db)
}

// InTx runs fn with repositories bound to a single transaction.
// The transaction commits only if fn returns nil; any error rolls back
// every write fn performed.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.InTx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after a successful commit

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.InTx: commit: %w", err)
	}
	return nil
}

// storageErr converts integrity-constraint failures (SQLSTATE class 23:
// foreign key, unique, not-null violations) into domain.ErrStorage so
// callers can match them with errors.Is. Other errors pass through.
func storageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s", domain.ErrStorage, pgErr.Message)
	}
	return err
}
