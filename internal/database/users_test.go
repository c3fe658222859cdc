package database

import (
	"testing"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_DuplicateEmailIgnoresCase(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "agent@example.com", models.RoleAgent)

	err := db.CreateUser(&models.User{Name: "Other", Email: "  Agent@Example.COM ", PasswordHash: "x", Role: models.RoleAgent})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateBootstrapAdmin_OnlyOnEmptyTable(t *testing.T) {
	db := newTestDB(t)

	first := &models.User{Name: "Boss", Email: "boss@example.com", PasswordHash: "x", Role: models.RoleAgent}
	require.NoError(t, db.CreateBootstrapAdmin(first))
	assert.Equal(t, models.RoleAdmin, first.Role)

	err := db.CreateBootstrapAdmin(&models.User{Name: "Late", Email: "late@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteUser_Rules(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	agent := seedUser(t, db, "agent@example.com", models.RoleAgent)

	assert.ErrorIs(t, db.DeleteUser(admin.ID, admin.ID), ErrSelfDelete)
	assert.ErrorIs(t, db.DeleteUser(admin.ID, agent.ID), ErrLastAdmin)

	_, err := db.GetUserByID(admin.ID)
	require.NoError(t, err, "admin must survive the refused delete")

	require.NoError(t, db.DeleteUser(agent.ID, admin.ID))
	_, err = db.GetUserByID(agent.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var logs []models.DeleteLog
	require.NoError(t, db.DB().Where("entity_type = ?", models.EntityUser).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, agent.ID, logs[0].EntityID)
	require.NotNil(t, logs[0].DeletedBy)
	assert.Equal(t, admin.ID, *logs[0].DeletedBy)
}

func TestDeleteUser_LastActiveAdmin(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "a@example.com", models.RoleAdmin)
	b := seedUser(t, db, "b@example.com", models.RoleAdmin)

	_, err := db.UpdateUser(b.ID, UserUpdate{IsActive: ptr(false)})
	require.NoError(t, err)

	// Two admins exist but only a is active
	assert.ErrorIs(t, db.DeleteUser(a.ID, b.ID), ErrLastActiveAdmin)
}

func TestUpdateUser_LastActiveAdmin(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)

	_, err := db.UpdateUser(admin.ID, UserUpdate{Role: ptr(models.RoleAgent)})
	assert.ErrorIs(t, err, ErrLastActiveAdmin)

	_, err = db.UpdateUser(admin.ID, UserUpdate{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrLastActiveAdmin)

	second := seedUser(t, db, "second@example.com", models.RoleAdmin)
	updated, err := db.UpdateUser(admin.ID, UserUpdate{Role: ptr(models.RoleAgent)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, updated.Role)

	_, err = db.UpdateUser(second.ID, UserUpdate{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrLastActiveAdmin)
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "one@example.com", models.RoleAdmin)
	two := seedUser(t, db, "two@example.com", models.RoleAgent)

	_, err := db.UpdateUser(two.ID, UserUpdate{Email: ptr("ONE@example.com")})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
