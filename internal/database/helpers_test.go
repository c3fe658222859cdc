package database

import (
	"testing"
	"time"

	"real-estate-crm/internal/config"
	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	db, err := NewGormDB(config.DatabaseConfig{
		Type:         "sqlite",
		SQLite:       config.SQLiteConfig{Path: ":memory:"},
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *GormDB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.CreateUser(u))
	return u
}

func seedClient(t *testing.T, db *GormDB, first string) *models.Client {
	t.Helper()
	c := &models.Client{FirstName: first, LastName: "Doe", Type: models.ClientTypeTenant, Status: models.ClientStatusActive}
	require.NoError(t, db.CreateClient(c))
	return c
}

func seedProperty(t *testing.T, db *GormDB, title string) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:           title,
		Type:            models.PropertyTypeApartment,
		TransactionType: models.TransactionRent,
		Price:           1200,
		City:            "Lyon",
	}
	require.NoError(t, db.CreateProperty(p))
	return p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 10, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
