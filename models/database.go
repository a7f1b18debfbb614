package models

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DBOptions configures Open.
type DBOptions struct {
	DSN string
	// Driver is the database/sql driver name: "pgx" (default) or "postgres" for lib/pq.
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
	// Logger receives gorm's query log. Nil keeps gorm's default logger.
	Logger             *zap.Logger
	SlowQueryThreshold time.Duration
}

// Open connects to PostgreSQL and configures the connection pool.
func Open(opts DBOptions) (*gorm.DB, error) {
	dialector := postgres.New(postgres.Config{
		DSN:        opts.DSN,
		DriverName: opts.Driver,
	})

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	gormLogger := logger.Default.LogMode(logLevel)
	if opts.Logger != nil {
		gormLogger = NewGormLogger(opts.Logger, logLevel, opts.SlowQueryThreshold)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	return db, nil
}

// Ping checks the connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the catalog schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	joins := []struct {
		model any
		field string
		join  any
	}{
		{&ProductType{}, "Attributes", &ProductTypeAttribute{}},
		{&Product{}, "AttributeValues", &ProductAttributeValue{}},
		{&ProductLine{}, "AttributeValues", &ProductLineAttributeValue{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %s: %w", j.field, err)
		}
	}

	if err := db.AutoMigrate(
		&Category{},
		&Attribute{},
		&AttributeValue{},
		&ProductType{},
		&Product{},
		&ProductLine{},
		&ProductImage{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Active restricts a query to rows flagged is_active.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// byOrder sorts by the quoted "order" column, then id.
func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "order"}},
		{Column: clause.Column{Name: "id"}},
	}})
}
