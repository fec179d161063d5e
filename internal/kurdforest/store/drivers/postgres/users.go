package postgres

import (
	"context"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/jackc/pgx/v5"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, is_verified, profile_picture, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsVerified,
		&u.ProfilePicture,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) FindUserByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) OR username = $2 LIMIT 1`,
		email, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsVerified,
		u.ProfilePicture,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return mapConstraint(err)
}
