package db

import (
	"fmt"

	"github.com/smousavi/bazaarche-backend/config"
	appLogger "github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database and returns the handle. The handle
// is constructed once in main and injected down the stack; nothing in this
// package keeps global state.
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // we log through our own logger
	}

	var (
		database *gorm.DB
		err      error
	)

	switch cfg.Driver {
	case "postgres":
		appLogger.Info("Connecting to postgres", map[string]interface{}{
			"host":     cfg.Host,
			"port":     cfg.Port,
			"database": cfg.DBName,
		})
		database, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	case "sqlite", "":
		appLogger.Info("Opening sqlite database", map[string]interface{}{
			"path": cfg.Path,
		})
		database, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// sqlite serializes writes through its file lock; a small pool is enough
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)

	appLogger.Info("Database connection established", map[string]interface{}{
		"driver": cfg.Driver,
	})
	return database, nil
}

// Close closes the underlying connection pool
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
