package alerts

import (
	"testing"
	"time"

	"real-estate-crm/internal/config"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.GormDB {
	t.Helper()
	db, err := database.NewGormDB(config.DatabaseConfig{
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

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func activeContract(t *testing.T, db *database.GormDB, title string, start, end time.Time) *models.RentalContract {
	t.Helper()
	p := &models.Property{Title: title, Type: models.PropertyTypeApartment, TransactionType: models.TransactionRent, Price: 800}
	require.NoError(t, db.CreateProperty(p))
	tenant := &models.Client{FirstName: title, LastName: "Tenant", Type: models.ClientTypeTenant}
	require.NoError(t, db.CreateClient(tenant))

	c := &models.RentalContract{
		PropertyID: p.ID, TenantID: tenant.ID,
		StartDate: start, EndDate: end,
		MonthlyRent: 800, PaymentDay: 5, Status: models.ContractActive,
	}
	require.NoError(t, db.CreateContract(c))
	return c
}

func alertsOf(t *testing.T, db *database.GormDB, typ models.AlertType) []models.RentalAlert {
	t.Helper()
	var out []models.RentalAlert
	require.NoError(t, db.DB().Where("type = ?", typ).Find(&out).Error)
	return out
}

func TestGenerate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db.DB())
	cfg := Config{PaymentDueDays: 5, ContractExpiryDays: 30}

	running := activeContract(t, db, "Running", day(1, 1), day(12, 31))
	dueSoon := &models.RentalPayment{ContractID: running.ID, DueDate: day(6, 12), Amount: 800, Status: models.PaymentPending}
	missed := &models.RentalPayment{ContractID: running.ID, DueDate: day(5, 5), Amount: 800, Status: models.PaymentPending}
	farOff := &models.RentalPayment{ContractID: running.ID, DueDate: day(7, 5), Amount: 800, Status: models.PaymentPending}
	for _, p := range []*models.RentalPayment{dueSoon, missed, farOff} {
		require.NoError(t, db.CreatePayment(p))
	}

	ending := activeContract(t, db, "Ending", day(1, 1), day(6, 30))
	ended := activeContract(t, db, "Ended", day(1, 1), day(6, 1))

	result, err := svc.Generate(cfg, now)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.ContractsChecked)
	assert.Equal(t, 1, result.PaymentDue)
	assert.Equal(t, 1, result.PaymentOverdue)
	assert.Equal(t, 1, result.PaymentsMarkLate)
	assert.Equal(t, 1, result.ContractExpiring)
	assert.Equal(t, 1, result.ContractExpired)
	assert.Equal(t, 4, result.Created())

	due := alertsOf(t, db, models.AlertPaymentDue)
	require.Len(t, due, 1)
	assert.Equal(t, dueSoon.ID, *due[0].PaymentID)

	late, err := db.GetPayment(missed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentLate, late.Status)

	expiring := alertsOf(t, db, models.AlertContractExpiring)
	require.Len(t, expiring, 1)
	assert.Equal(t, ending.ID, expiring[0].ContractID)

	gone, err := db.GetContract(ended.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractExpired, gone.Status)
	freed, err := db.GetProperty(ended.PropertyID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusAvailable, freed.Status)
}

func TestGenerate_NoDuplicatesOnRerun(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db.DB())
	cfg := Config{PaymentDueDays: 5, ContractExpiryDays: 30}

	c := activeContract(t, db, "Flat", day(1, 1), day(6, 30))
	require.NoError(t, db.CreatePayment(&models.RentalPayment{ContractID: c.ID, DueDate: day(5, 5), Amount: 800, Status: models.PaymentPending}))

	first, err := svc.Generate(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created())

	second, err := svc.Generate(cfg, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, second.Created())
	assert.Zero(t, second.PaymentsMarkLate)

	var total int64
	require.NoError(t, db.DB().Model(&models.RentalAlert{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestGenerate_ResolvedAlertCanBeRaisedAgain(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db.DB())
	cfg := Config{PaymentDueDays: 5, ContractExpiryDays: 30}

	c := activeContract(t, db, "Flat", day(1, 1), day(6, 30))
	_, err := svc.Generate(cfg, now)
	require.NoError(t, err)

	require.NoError(t, db.DB().Model(&models.RentalAlert{}).
		Where("contract_id = ?", c.ID).
		Update("resolved_at", now).Error)

	again, err := svc.Generate(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 1, again.ContractExpiring)
}

func TestGenerate_LatePaymentResolvesDueAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db.DB())
	cfg := Config{PaymentDueDays: 5, ContractExpiryDays: 30}

	c := activeContract(t, db, "Flat", day(1, 1), day(12, 31))
	payment := &models.RentalPayment{ContractID: c.ID, DueDate: day(6, 12), Amount: 800, Status: models.PaymentPending}
	require.NoError(t, db.CreatePayment(payment))

	before, err := svc.Generate(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 1, before.PaymentDue)

	after, err := svc.Generate(cfg, now.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, after.PaymentsMarkLate)
	assert.Equal(t, 1, after.PaymentOverdue)

	due := alertsOf(t, db, models.AlertPaymentDue)
	require.Len(t, due, 1)
	assert.NotNil(t, due[0].ResolvedAt)
	overdue := alertsOf(t, db, models.AlertPaymentOverdue)
	require.Len(t, overdue, 1)
	assert.Nil(t, overdue[0].ResolvedAt)
}
