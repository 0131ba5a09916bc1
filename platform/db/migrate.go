// Package db provides database connection infrastructure.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"errors"
	"strings"

	"buyer_portal_backend/platform/config"
	"buyer_portal_backend/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations from the provided directory
// and logs the schema version the database landed on.
func RunMigrations(_ context.Context, cfg config.DatabaseConfig, migrationsDir string, log *logger.Logger) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return nil
	}

	m, err := migrate.New("file://"+migrationsDir, cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer m.Close()

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		log.Info("schema already current", "version", version)
	} else {
		log.Info("schema migrated", "version", version, "dirty", dirty)
	}
	return nil
}
