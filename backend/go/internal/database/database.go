package database

import (
	"context"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/mysql"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/sqlite"
	"gorm.io/gorm"
)

// Open returns the relational database selected by cfg.Driver.
func Open(cfg *config.DatabaseConfigs) (*gorm.DB, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.GetDB(&cfg.MySQL)
	case "sqlite", "":
		return sqlite.Open(&cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Ping checks that db still answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
