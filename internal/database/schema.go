package database

import (
	"context"
	"fmt"
	"log/slog"

	"boardapi/internal/config"
	"boardapi/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus describes how ApplySchema would treat the database.
type SchemaStatus struct {
	Environment       string
	UsesAutoMigrate   bool
	AppliedVersions   []int
	PendingMigrations []Migration
}

// usesAutoMigrate reports whether cfg selects GORM AutoMigrate over the SQL
// migrations. Production always uses the SQL migrations.
func usesAutoMigrate(cfg *config.Config) bool {
	return cfg.DBAutoMigrate && !cfg.IsProduction()
}

// ApplySchema brings the schema up to date for cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if usesAutoMigrate(cfg) {
		middleware.Logger.Info("running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}

	if err := RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run sql migrations: %w", err)
	}
	return nil
}

// GetSchemaStatus reports applied and pending SQL migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	status := &SchemaStatus{
		Environment:     cfg.Env,
		UsesAutoMigrate: usesAutoMigrate(cfg),
	}

	registered, err := GetMigrations()
	if err != nil {
		return nil, err
	}
	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	status.PendingMigrations, err = PendingMigrations(applied, registered)
	if err != nil {
		return nil, err
	}
	return status, nil
}
