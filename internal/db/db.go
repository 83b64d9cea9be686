package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/model"
)

const sqlitePrefix = "sqlite:"

// Init opens the database named by cfg.DSN and runs migrations. A DSN that
// starts with "sqlite:" opens a SQLite file, anything else is handed to the
// Postgres driver.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	isSQLite := strings.HasPrefix(cfg.DSN, sqlitePrefix)
	if isSQLite {
		dialector = sqlite.Open(strings.TrimPrefix(cfg.DSN, sqlitePrefix))
	} else {
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableTimescale {
		if isSQLite {
			log.Warn("TimescaleDB requested on a SQLite database, ignoring")
		} else {
			log.Info("TimescaleDB is enabled, applying TimescaleDB-specific DDL")
			if err := applyTimescaleDDL(db); err != nil {
				log.Warn("Failed to apply some TimescaleDB DDL, continuing without them", zap.Error(err))
			}
		}
	}

	log.Info("Database initialization complete", zap.Bool("sqlite", isSQLite))
	return db, nil
}

// Migrate creates or updates every table the daemon uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Device{},
		&model.CycleOpen{},
		&model.CycleHistory{},
		&model.ActionLog{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func applyTimescaleDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS timescaledb;",
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		"SELECT create_hypertable('cycle_histories', 'observed_at', if_not_exists => TRUE);",

		"ALTER TABLE cycle_histories " +
			"ADD CONSTRAINT cycle_histories_period_valid CHECK (period_start <= period_end);",

		// Range index for "what was running at time t" lookups.
		"CREATE INDEX IF NOT EXISTS idx_cycle_history_period_expr ON cycle_histories " +
			"USING GIST (device_id, tstzrange(period_start, period_end, '[]'));",

		"CREATE INDEX IF NOT EXISTS idx_cycle_history_device_observed_at ON cycle_histories (device_id, observed_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
