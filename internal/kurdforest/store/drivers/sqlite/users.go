package sqlite

import (
	"context"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, is_verified, profile_picture, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                  domain.User
		createdAt, updated int64
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsVerified,
		&u.ProfilePicture,
		&createdAt,
		&updated,
	); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) FindUserByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? OR username = ? LIMIT 1`, email, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsVerified,
		u.ProfilePicture,
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}
