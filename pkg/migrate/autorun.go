package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/charmcart-backend/pkg/config"
	"github.com/angelmondragon/charmcart-backend/pkg/db"
	"github.com/angelmondragon/charmcart-backend/pkg/db/models"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"gorm.io/gorm"
)

// MaybeRunDev applies the schema automatically when the feature flag is
// enabled in dev, or whenever the service runs on SQLite.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqlite := cfg.FeatureFlags.UseSQLite || cfg.DB.Driver == db.DriverSQLite
	if !sqlite && (!cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	if sqlite {
		logg.Info(ctx, "applying gorm schema (sqlite)")
		return AutoMigrateModels(client.DB())
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables from the gorm models.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.CatalogItem{}, &models.CartSnapshot{}); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
