package postgres

import (
	"errors"
	"strings"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store/drivers/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

// ApplyMigrations applies any pending embedded migrations over a dedicated
// connection opened from the store's DSN.
func (s *Store) ApplyMigrations() error {
	// 1. Create the embedded filesystem source
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.Code("MIGRATION_SOURCE_FAILED").Wrap(err)
	}

	// 2. Create the migrate instance against the pgx/v5 driver
	instance, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(s.dsn))
	if err != nil {
		_ = source.Close()
		return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	defer instance.Close()

	// 3. Apply all up migrations
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}

// migrateURL rewrites postgres:// and postgresql:// to the pgx5:// scheme
// golang-migrate registers for pgx/v5.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}
