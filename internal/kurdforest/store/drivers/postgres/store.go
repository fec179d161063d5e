package postgres

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// dbtx is satisfied by the pool and by pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pool is the subset of *pgxpool.Pool the store needs. pgxmock.PgxPoolIface
// satisfies it in tests.
type pool interface {
	dbtx
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool pool
	dsn  string
}

var _ store.Store = (*Store)(nil)

// NewStore connects a pool to dsn, a postgres:// connection string.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("PG_CONNECT_FAILED").Wrap(err)
	}
	return newWithPool(p, dsn), nil
}

func newWithPool(p pool, dsn string) *Store {
	return &Store{pool: p, dsn: dsn}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithTx executes fn within a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(repos{db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Users() store.Users         { return &usersRepo{db: s.pool} }
func (s *Store) Movies() store.Movies       { return &moviesRepo{db: s.pool} }
func (s *Store) Watchlist() store.Watchlist { return &watchlistRepo{db: s.pool} }
func (s *Store) Sessions() store.Sessions   { return &sessionsRepo{db: s.pool} }

type repos struct {
	db dbtx
}

func (r repos) Users() store.Users         { return &usersRepo{db: r.db} }
func (r repos) Movies() store.Movies       { return &moviesRepo{db: r.db} }
func (r repos) Watchlist() store.Watchlist { return &watchlistRepo{db: r.db} }
func (r repos) Sessions() store.Sessions   { return &sessionsRepo{db: r.db} }

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates integrity violations into store errors.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return errors.Join(store.ErrAlreadyExists, err)
	case pgerrcode.ForeignKeyViolation:
		return errors.Join(store.ErrNotFound, err)
	}
	return err
}
