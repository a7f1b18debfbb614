package commands

import (
	"fmt"
	"os"

	"github.com/mytheresa/catalog-service/config"
	"github.com/mytheresa/catalog-service/logger"
	"github.com/mytheresa/catalog-service/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Set at build time with -ldflags "-X .../commands.version=...".
var version = "dev"

var (
	// Global flags
	configPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog service - products, lines, images and attributes over HTTP",
	Long: `Catalog serves the product catalog REST API backed by PostgreSQL.

Settings come from defaults, an optional YAML file (--config), a .env file
and the environment, in that order.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

// bootstrap loads the configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openDB connects with the configured driver and pool settings.
func openDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}
	return models.Open(models.DBOptions{
		DSN:                cfg.Postgres.DSN(),
		Driver:             cfg.Postgres.Driver,
		MaxOpenConns:       cfg.Postgres.MaxOpenConns,
		MaxIdleConns:       cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime:    cfg.Postgres.ConnMaxLifetimeDuration(),
		ConnMaxIdleTime:    cfg.Postgres.ConnMaxIdleTimeDuration(),
		LogLevel:           level,
		Logger:             log,
		SlowQueryThreshold: slowQueryThreshold,
	})
}
