package commands

import (
	"context"
	"time"

	"github.com/mytheresa/catalog-service/models"
	"github.com/spf13/cobra"
)

var migrateTimeout time.Duration

// migrateCmd creates or updates the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", time.Minute, "Give up after this long")
}

func runMigrate(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := models.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("Schema migrated")
	return nil
}
