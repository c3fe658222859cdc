package database

import (
	"context"
	"fmt"
	"time"

	"real-estate-crm/internal/config"
	applog "real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB owns every SQL statement the API issues
type GormDB struct {
	db *gorm.DB
}

// NewGormDB opens the configured driver and sizes the connection pool
func NewGormDB(cfg config.DatabaseConfig) (*GormDB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Type == "sqlite" {
		// One writer; an in-memory database also vanishes with its connection
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, maxOpen))
	if lifetime := cfg.GetConnMaxLifetime(); lifetime > 0 && cfg.Type != "sqlite" {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "mysql", "":
		return mysqlDialector(cfg.MySQL), nil
	case "postgres":
		return postgresDialector(cfg.Postgres), nil
	case "sqlite":
		return sqliteDialector(cfg.SQLite), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func newGormLogger() logger.Interface {
	return logger.New(applog.Component("gorm"), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the pool can still reach the server
func (gdb *GormDB) Ping(ctx context.Context) error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.ClientNeed{},
		&models.Interaction{},
		&models.Property{},
		&models.PropertyMedia{},
		&models.PropertyVisit{},
		&models.PropertyChange{},
		&models.RentalContract{},
		&models.RentalDocument{},
		&models.RentalPayment{},
		&models.RentalAlert{},
		&models.MaintenanceRequest{},
		&models.MaintenancePhoto{},
		&models.Document{},
		&models.DeleteLog{},
	)
}
