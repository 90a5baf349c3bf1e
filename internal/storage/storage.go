// Package storage opens and manages the GORM-backed document store holding
// users, refresh tokens, and service clients. The default driver is SQLite;
// the schema is auto-migrated on open.
package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/authentic/internal/logger"
)

// DB wraps a GORM database with service logging.
type DB struct {
	Gorm *gorm.DB
	log  *logger.Logger
	cfg  Config
}

// Open connects to the database, configures the connection pool, and
// migrates the schema.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gdb, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.DSN, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, perr := time.ParseDuration(cfg.ConnMaxLifetime); perr == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	if cfg.AutoMigrate {
		if err := gdb.AutoMigrate(&User{}, &RefreshToken{}, &Client{}); err != nil {
			return nil, fmt.Errorf("storage: migrate: %w", err)
		}
	}

	log.Info("Storage opened", map[string]interface{}{
		"dsn": cfg.DSN,
	})
	return &DB{Gorm: gdb, log: log, cfg: cfg}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
