package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Repos exposes one sub-repository per record kind. It is implemented both
// by the Store itself and by the transaction handed to WithTx.
type Repos interface {
	Users() Users
	Movies() Movies
	Watchlist() Watchlist
	Sessions() Sessions
}

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it.
type Store interface {
	Repos

	ApplyMigrations() error

	// WithTx runs fn inside a read/write transaction. fn returning an error
	// rolls back, otherwise the transaction commits. Nested transactions are
	// not supported.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the transaction-scoped view given to WithTx callbacks. Commit and
// rollback are handled by WithTx.
type Tx interface {
	Repos
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// FindUserByEmailOrUsername returns any user holding either identity.
	FindUserByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error)

	// CreateUser inserts u. A taken username or email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error
}

type Movies interface {
	GetMovieByID(ctx context.Context, id string) (domain.Movie, error)
	GetMovieByExternalID(ctx context.Context, externalID string) (domain.Movie, error)

	// CreateMovie inserts m. An existing row for m.ExternalID yields
	// ErrAlreadyExists and leaves that row untouched.
	CreateMovie(ctx context.Context, m domain.Movie) error
}

type Watchlist interface {
	// AddToWatchlist inserts the (user, movie) pair if absent and reports
	// whether this call added it. An unknown user or movie yields ErrNotFound.
	AddToWatchlist(ctx context.Context, userID, movieID string, addedAt time.Time) (bool, error)

	// RemoveFromWatchlist deletes the pair. Removing an absent pair is not an error.
	RemoveFromWatchlist(ctx context.Context, userID, movieID string) error

	InWatchlist(ctx context.Context, userID, movieID string) (bool, error)

	// ListWatchlist returns entries in the order they were added.
	ListWatchlist(ctx context.Context, userID string) ([]domain.WatchlistEntry, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes sessions whose expiry is at or before now
	// and returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
