package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/triadacafetera/triada/internal/auth/store/drivers/postgres/migrations"
)

// MigrateURL rewrites a postgres:// or postgresql:// url to the pgx5://
// scheme golang-migrate registers for pgx/v5.
func MigrateURL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(url, prefix); found {
			return "pgx5://" + rest
		}
	}
	return url
}

// ApplyMigrations applies the embedded schema.
func (s *Store) ApplyMigrations() error {
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("postgres: migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, MigrateURL(s.url))
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("postgres: init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}
	return nil
}
