package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dialect names a SQL backend. The value doubles as the migrations directory.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

//go:embed migrations
var migrations embed.FS

// Migrate brings the schema up to date. It uses its own connection because
// the migrate drivers close the handle they are given.
func Migrate(dialect Dialect, dsn string) error {
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s for migrations: %w", dialect, err)
	}

	var driver database.Driver
	switch dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(conn, &sqlite3.Config{})
	default:
		err = fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	src, err := iofs.New(migrations, "migrations/"+string(dialect))
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
