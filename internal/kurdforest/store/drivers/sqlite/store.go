package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repos run unchanged
// inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

var _ store.Store = (*Store)(nil)

// NewStore opens dsn. Foreign keys are enforced on every pooled connection:
// a DSN without a foreign_keys pragma gets one appended.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection, so pin the pool to one
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// The pinned :memory: connection has no DSN pragmas
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func withForeignKeys(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(repos{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users         { return &usersRepo{db: s.db} }
func (s *Store) Movies() store.Movies       { return &moviesRepo{db: s.db} }
func (s *Store) Watchlist() store.Watchlist { return &watchlistRepo{db: s.db} }
func (s *Store) Sessions() store.Sessions   { return &sessionsRepo{db: s.db} }

// repos is the transaction-scoped view.
type repos struct {
	db dbtx
}

func (r repos) Users() store.Users         { return &usersRepo{db: r.db} }
func (r repos) Movies() store.Movies       { return &moviesRepo{db: r.db} }
func (r repos) Watchlist() store.Watchlist { return &watchlistRepo{db: r.db} }
func (r repos) Sessions() store.Sessions   { return &sessionsRepo{db: r.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates SQLite constraint failures into store errors.
func mapConstraint(err error) error {
	var sqlErr *sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	switch code := sqlErr.Code(); {
	case code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
		code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return errors.Join(store.ErrAlreadyExists, err)
	case code == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return errors.Join(store.ErrNotFound, err)
	case code&0xff == sqlite3lib.SQLITE_CONSTRAINT:
		// Extended codes disabled; fall back to the message
		switch msg := sqlErr.Error(); {
		case strings.Contains(msg, "UNIQUE"):
			return errors.Join(store.ErrAlreadyExists, err)
		case strings.Contains(msg, "FOREIGN KEY"):
			return errors.Join(store.ErrNotFound, err)
		}
	}
	return err
}

// Timestamps are stored as unix milliseconds.
func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
