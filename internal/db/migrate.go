package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to the latest embedded migration.
// The connection string should have the postgres:// form; sslmode=disable is appended when missing.
func Migrate(connString string) error {
	sqlDB, err := sql.Open("postgres", withSSLModeDisabled(connString))
	if err != nil {
		return fmt.Errorf("open migrations db: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Errorf("close migrations db: %s", err)
		}
	}()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get migration version: %w", err)
	}

	log.Infof("db migrations done, version: %d, dirty: %t", version, dirty)
	return nil
}

func withSSLModeDisabled(connString string) string {
	switch {
	case strings.Contains(connString, "sslmode="):
		return connString
	case strings.Contains(connString, "?"):
		return connString + "&sslmode=disable"
	default:
		return connString + "?sslmode=disable"
	}
}
