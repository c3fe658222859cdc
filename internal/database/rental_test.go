package database

import (
	"testing"
	"time"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContract(t *testing.T, db *GormDB, propertyID, tenantID uint, start, end time.Time, status models.ContractStatus) *models.RentalContract {
	t.Helper()
	c := &models.RentalContract{
		PropertyID:  propertyID,
		TenantID:    tenantID,
		StartDate:   start,
		EndDate:     end,
		MonthlyRent: 1000,
		PaymentDay:  5,
		Status:      status,
	}
	require.NoError(t, db.CreateContract(c))
	return c
}

func propertyStatus(t *testing.T, db *GormDB, id uint) models.PropertyStatus {
	t.Helper()
	p, err := db.GetProperty(id)
	require.NoError(t, err)
	return p.Status
}

func TestCreateContract_ActiveMarksPropertyRented(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")

	draft := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 12, 31), "")
	assert.Equal(t, models.ContractDraft, draft.Status)
	assert.Equal(t, models.PropertyStatusAvailable, propertyStatus(t, db, p.ID))

	seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 12, 31), models.ContractActive)
	assert.Equal(t, models.PropertyStatusRented, propertyStatus(t, db, p.ID))
}

func TestCreateContract_Validation(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")

	err := db.CreateContract(&models.RentalContract{PropertyID: p.ID, TenantID: tenant.ID, StartDate: date(2024, 5, 1), EndDate: date(2024, 5, 1), MonthlyRent: 1})
	assert.ErrorIs(t, err, ErrInvalidState)

	err = db.CreateContract(&models.RentalContract{PropertyID: p.ID, TenantID: 999, StartDate: date(2024, 5, 1), EndDate: date(2025, 5, 1), MonthlyRent: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Client not found")
}

func TestCreateContract_Overlap(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 12, 31), models.ContractActive)

	err := db.CreateContract(&models.RentalContract{
		PropertyID: p.ID, TenantID: tenant.ID,
		StartDate: date(2024, 6, 1), EndDate: date(2025, 5, 31),
		MonthlyRent: 900, PaymentDay: 1, Status: models.ContractActive,
	})
	assert.ErrorIs(t, err, ErrContractOverlap)

	// a draft may overlap, and a contract starting on the end date does not
	seedContract(t, db, p.ID, tenant.ID, date(2024, 6, 1), date(2025, 5, 31), models.ContractDraft)
	seedContract(t, db, p.ID, tenant.ID, date(2024, 12, 31), date(2025, 12, 31), models.ContractActive)
}

func TestUpdateContract_TerminateFreesProperty(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 12, 31), models.ContractActive)

	updated, err := db.UpdateContract(c.ID, map[string]interface{}{"status": models.ContractTerminated})
	require.NoError(t, err)
	assert.Equal(t, models.ContractTerminated, updated.Status)
	assert.Equal(t, models.PropertyStatusAvailable, propertyStatus(t, db, p.ID))

	_, err = db.UpdateContract(c.ID, map[string]interface{}{"end_date": date(2023, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidState)
	reloaded, err := db.GetContract(c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.EndDate.Equal(date(2024, 12, 31)), "rolled back")
}

func TestPaymentSchedule(t *testing.T) {
	dues := PaymentSchedule(date(2024, 1, 15), date(2024, 4, 14), 5)
	assert.Equal(t, []time.Time{date(2024, 2, 5), date(2024, 3, 5), date(2024, 4, 5)}, dues)

	dues = PaymentSchedule(date(2024, 1, 1), date(2024, 3, 1), 31)
	assert.Equal(t, []time.Time{date(2024, 1, 28), date(2024, 2, 28)}, dues)

	assert.Empty(t, PaymentSchedule(date(2024, 1, 10), date(2024, 1, 20), 5))
}

func TestGeneratePayments_Idempotent(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 6, 30), models.ContractActive)

	created, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	require.Len(t, created, 6)
	assert.True(t, created[0].DueDate.Equal(date(2024, 1, 5)))
	assert.Equal(t, 1000.0, created[0].Amount)
	assert.Equal(t, models.PaymentPending, created[0].Status)

	again, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	_, total, err := db.ListPayments(PaymentFilter{ContractID: &c.ID}, NewPage(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
}

func TestGeneratePayments_RefusedForTerminated(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 6, 30), models.ContractTerminated)

	_, err := db.GeneratePayments(c.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateContract_ChecksClients(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 12, 31), models.ContractActive)

	_, err := db.UpdateContract(c.ID, map[string]interface{}{"tenant_id": uint(999)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Client not found")

	_, err = db.UpdateContract(c.ID, map[string]interface{}{"landlord_id": uint(998)})
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := db.GetContract(c.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, reloaded.TenantID, "rolled back")
	assert.Nil(t, reloaded.LandlordID)

	landlord := seedClient(t, db, "Lou")
	updated, err := db.UpdateContract(c.ID, map[string]interface{}{"landlord_id": landlord.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.LandlordID)
	assert.Equal(t, landlord.ID, *updated.LandlordID)
}

func TestUpdatePayment_StatusFollowsAmount(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 1, 31), models.ContractActive)

	created, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	id := created[0].ID

	_, err = db.UpdatePayment(id, map[string]interface{}{"status": models.PaymentPaid})
	assert.ErrorIs(t, err, ErrInvalidState)
	unchanged, err := db.GetPayment(id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, unchanged.Status)

	_, err = db.RecordPayment(id, PaymentReceipt{Amount: 800, PaidAt: date(2024, 1, 5)})
	require.NoError(t, err)

	updated, err := db.UpdatePayment(id, map[string]interface{}{"amount": 800.0})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Status)

	updated, err = db.UpdatePayment(id, map[string]interface{}{"amount": 1200.0})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, updated.Status)
	assert.Equal(t, 400.0, updated.Outstanding())
}

func TestUpdatePayment_ResolvesAlerts(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 1, 31), models.ContractActive)

	created, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	id := created[0].ID
	for _, typ := range []models.AlertType{models.AlertPaymentDue, models.AlertPaymentOverdue} {
		require.NoError(t, db.DB().Create(&models.RentalAlert{
			ContractID: c.ID, PaymentID: &id, Type: typ, Message: string(typ),
		}).Error)
	}

	updated, err := db.UpdatePayment(id, map[string]interface{}{"status": models.PaymentCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, updated.Status)

	var open int64
	require.NoError(t, db.DB().Model(&models.RentalAlert{}).Where("payment_id = ? AND resolved_at IS NULL", id).Count(&open).Error)
	assert.Zero(t, open)
}

func TestRecordPayment(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 2, 28), models.ContractActive)

	created, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	payment := created[0]

	require.NoError(t, db.DB().Create(&models.RentalAlert{
		ContractID: c.ID, PaymentID: &payment.ID, Type: models.AlertPaymentOverdue, Message: "late",
	}).Error)

	paidAt := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	partial, err := db.RecordPayment(payment.ID, PaymentReceipt{Amount: 400, Method: "transfer", PaidAt: paidAt})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, partial.Status)
	assert.Equal(t, 400.0, partial.PaidAmount)
	assert.Equal(t, 600.0, partial.Outstanding())

	paid, err := db.RecordPayment(payment.ID, PaymentReceipt{Amount: 600, PaidAt: paidAt})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Status)
	assert.Equal(t, "transfer", paid.Method)

	var open int64
	require.NoError(t, db.DB().Model(&models.RentalAlert{}).Where("payment_id = ? AND resolved_at IS NULL", payment.ID).Count(&open).Error)
	assert.Zero(t, open)

	_, err = db.RecordPayment(payment.ID, PaymentReceipt{Amount: 1, PaidAt: paidAt})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteContract_Cascades(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 3, 31), models.ContractActive)

	_, err := db.GeneratePayments(c.ID)
	require.NoError(t, err)
	require.NoError(t, db.CreateContractDocument(&models.RentalDocument{ContractID: c.ID, Name: "Lease", DocType: models.RentalDocLease, FileURL: "https://files/lease.pdf"}))
	require.NoError(t, db.DB().Create(&models.RentalAlert{ContractID: c.ID, Type: models.AlertContractExpiring, Message: "soon"}).Error)
	repair := &models.MaintenanceRequest{PropertyID: p.ID, ContractID: &c.ID, Title: "Leak"}
	require.NoError(t, db.CreateMaintenance(repair))

	require.NoError(t, db.DeleteContract(c.ID, nil))

	for _, model := range []interface{}{&models.RentalPayment{}, &models.RentalDocument{}, &models.RentalAlert{}} {
		var n int64
		require.NoError(t, db.DB().Model(model).Where("contract_id = ?", c.ID).Count(&n).Error)
		assert.Zero(t, n)
	}

	m, err := db.GetMaintenance(repair.ID)
	require.NoError(t, err)
	assert.Nil(t, m.ContractID)
	assert.Equal(t, models.PropertyStatusAvailable, propertyStatus(t, db, p.ID))

	var logs int64
	require.NoError(t, db.DB().Model(&models.DeleteLog{}).Where("entity_type = ?", models.EntityContract).Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}

func TestMarkAlertRead(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	tenant := seedClient(t, db, "Tess")
	c := seedContract(t, db, p.ID, tenant.ID, date(2024, 1, 1), date(2024, 3, 31), models.ContractDraft)
	alert := &models.RentalAlert{ContractID: c.ID, Type: models.AlertContractExpiring, Message: "soon"}
	require.NoError(t, db.DB().Create(alert).Error)

	got, err := db.MarkAlertRead(alert.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	unread := false
	_, total, err := db.ListAlerts(AlertFilter{IsRead: &unread}, NewPage(0, 0))
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = db.MarkAlertRead(999)
	assert.ErrorIs(t, err, ErrNotFound)
}
