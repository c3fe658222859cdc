package database

import (
	"testing"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenance_ResolvedAtFollowsStatus(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")

	m := &models.MaintenanceRequest{PropertyID: p.ID, Title: "Boiler"}
	require.NoError(t, db.CreateMaintenance(m))
	assert.Equal(t, models.MaintenanceOpen, m.Status)
	assert.Equal(t, models.PriorityMedium, m.Priority)
	assert.Nil(t, m.ResolvedAt)

	resolved, err := db.UpdateMaintenance(m.ID, map[string]interface{}{"status": models.MaintenanceResolved})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	stamp := *resolved.ResolvedAt

	// moving between finished states keeps the first stamp
	closed, err := db.UpdateMaintenance(m.ID, map[string]interface{}{"status": models.MaintenanceClosed})
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt)
	assert.True(t, closed.ResolvedAt.Equal(stamp))

	reopened, err := db.UpdateMaintenance(m.ID, map[string]interface{}{"status": models.MaintenanceInProgress})
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedAt)
}

func TestMaintenance_References(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")

	assert.ErrorIs(t, db.CreateMaintenance(&models.MaintenanceRequest{PropertyID: 999, Title: "x"}), ErrNotFound)
	assert.ErrorIs(t, db.CreateMaintenance(&models.MaintenanceRequest{PropertyID: p.ID, ContractID: ptr(uint(77)), Title: "x"}), ErrNotFound)
	assert.ErrorIs(t, db.CreateMaintenance(&models.MaintenanceRequest{PropertyID: p.ID, ReportedBy: ptr(uint(77)), Title: "x"}), ErrNotFound)
}

func TestMaintenance_ReporterNulledWhenClientDeleted(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	reporter := seedClient(t, db, "Rita")

	m := &models.MaintenanceRequest{PropertyID: p.ID, ReportedBy: &reporter.ID, Title: "Window"}
	require.NoError(t, db.CreateMaintenance(m))
	require.NoError(t, db.DeleteClient(reporter.ID, nil))

	got, err := db.GetMaintenance(m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReportedBy)
}

func TestMaintenance_PhotosAndDelete(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Flat")
	m := &models.MaintenanceRequest{PropertyID: p.ID, Title: "Door", Priority: models.PriorityUrgent}
	require.NoError(t, db.CreateMaintenance(m))

	photo := &models.MaintenancePhoto{RequestID: m.ID, URL: "https://img/door.jpg"}
	require.NoError(t, db.AddMaintenancePhoto(photo))
	assert.ErrorIs(t, db.AddMaintenancePhoto(&models.MaintenancePhoto{RequestID: 999, URL: "https://img/x.jpg"}), ErrNotFound)

	got, err := db.GetMaintenance(m.ID)
	require.NoError(t, err)
	assert.Len(t, got.Photos, 1)

	items, total, err := db.ListMaintenance(MaintenanceFilter{Priority: "urgent"}, NewPage(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, m.ID, items[0].ID)

	require.NoError(t, db.DeleteMaintenance(m.ID, nil))
	var n int64
	require.NoError(t, db.DB().Model(&models.MaintenancePhoto{}).Where("request_id = ?", m.ID).Count(&n).Error)
	assert.Zero(t, n)
	assert.ErrorIs(t, db.DeleteMaintenancePhoto(m.ID, photo.ID), ErrNotFound)
}
