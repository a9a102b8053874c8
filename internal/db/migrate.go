package db

import (
	"strings"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Every create is issued with
// if-not-exists semantics via AutoMigrate, so running against a current
// schema is a no-op. A second pass retrofits columns that were added after
// the first release on databases AutoMigrate has never seen.
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Ad{},
		&model.AdImage{},
		&model.Shop{},
		&model.ShopImage{},
		&model.ShopFollower{},
		&model.ChatRoom{},
		&model.Message{},
	}

	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	ensureLegacyColumns(database)

	logger.Info("Database migrations completed", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// legacyColumns lists columns that shipped after the original tables did.
// Databases created before those releases lack them, and AutoMigrate may
// not have run there.
var legacyColumns = []struct {
	table  string
	column string
	ddl    string
}{
	{"users", "role", "ALTER TABLE users ADD COLUMN role varchar(20) DEFAULT 'user'"},
	{"ads", "shop_id", "ALTER TABLE ads ADD COLUMN shop_id integer"},
}

// ensureLegacyColumns retrofits post-release columns. "Column already
// exists" is the expected steady state and logged at debug; any other
// failure is logged at error level but startup continues — a current
// schema must never block the process from serving.
func ensureLegacyColumns(database *gorm.DB) {
	for _, col := range legacyColumns {
		if database.Migrator().HasColumn(col.table, col.column) {
			continue
		}
		if err := database.Exec(col.ddl).Error; err != nil {
			if isDuplicateColumnError(err) {
				logger.Debug("Legacy column already present", map[string]interface{}{
					"table":  col.table,
					"column": col.column,
				})
				continue
			}
			logger.Error("Failed to add legacy column, continuing", err, map[string]interface{}{
				"table":  col.table,
				"column": col.column,
			})
		}
	}
}

func isDuplicateColumnError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
