package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to open the relational store.
type Config struct {
	DSN     string
	Timeout time.Duration
}

// Connect opens a gorm handle over PostgreSQL, verifies connectivity with a
// ping and migrates the schema. Driver errors are translated so that unique
// violations surface as gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := Migrate(db.WithContext(ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables and the indexes gorm cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &cartModel{}, &cartLineModel{}, &orderModel{}, &orderLineModel{}); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	// At most one open order per owner.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_owner
		ON orders (owner_id) WHERE status IN ('reserved', 'awaiting_shipment')`).Error; err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
