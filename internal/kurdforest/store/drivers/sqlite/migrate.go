package sqlite

import (
	"errors"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations applies any pending embedded migrations.
func (s *Store) ApplyMigrations() error {
	// 1. Create the SQLite migration driver on the open handle
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	// 2. Create the embedded filesystem source
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	// 3. Create the migrate instance
	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}

	// 4. Apply all up migrations
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
