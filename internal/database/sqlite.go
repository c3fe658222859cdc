package database

import (
	"real-estate-crm/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteDialector is for local development and tests only
func sqliteDialector(cfg config.SQLiteConfig) gorm.Dialector {
	return sqlite.Open(cfg.Path)
}
