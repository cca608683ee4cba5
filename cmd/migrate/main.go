package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/angelmondragon/charmcart-backend/pkg/config"
	"github.com/angelmondragon/charmcart-backend/pkg/db"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/angelmondragon/charmcart-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "up|down|status|redo|reset|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (for version)")
	flag.Parse()

	// create and validate only touch the filesystem.
	switch *cmd {
	case "create":
		if *name == "" {
			exit("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exit("create migration: %v", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exit("migration validation failed: %v", err)
		}
		files, _ := migrate.List(*dir)
		fmt.Printf("migration validation passed (%d files)\n", len(files))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		exit("load config: %v", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd, "dir": *dir})

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "connect database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := run(ctx, dbClient, cfg.DB.Driver, *cmd, *dir, *version); err != nil {
		logg.Error(ctx, "migration failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migration complete")
}

func run(ctx context.Context, dbClient *db.Client, driver, cmd, dir, version string) error {
	// goose files target postgres; sqlite schemas come from the gorm models.
	if driver == db.DriverSQLite {
		if cmd != "up" {
			return fmt.Errorf("-cmd=%s is not supported for sqlite", cmd)
		}
		return migrate.AutoMigrateModels(dbClient.DB())
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	switch {
	case cmd == "version":
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dir, version)
	case slices.Contains(migrate.Commands, cmd):
		return migrate.Run(ctx, sqlDB, dir, cmd)
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
}

func exit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
