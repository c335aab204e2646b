package repositories

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenStateDB opens the durable client-state database and migrates the state
// tables. The default deployment uses a local SQLite file; kiosk fleets that
// share state point the DSN at PostgreSQL instead.
func OpenStateDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported state database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.AutoMigrate(&SessionRecord{}, &CartStateRecord{}, &CartItemRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state tables: %w", err)
	}

	return db, nil
}
