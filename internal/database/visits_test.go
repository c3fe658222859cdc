package database

import (
	"errors"
	"testing"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVisit_Conflicts(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Loft")
	agent := uint(1)

	existing := &models.PropertyVisit{PropertyID: p.ID, AgentID: &agent, StartTime: at(10, 0), EndTime: at(11, 0), Status: models.VisitConfirmed}
	require.NoError(t, db.CreateVisit(existing))

	overlap := &models.PropertyVisit{PropertyID: p.ID, StartTime: at(10, 30), EndTime: at(11, 30)}
	err := db.CreateVisit(overlap)
	require.ErrorIs(t, err, ErrVisitConflict)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, existing.ID, conflict.Conflicts[0].ID)

	touching := &models.PropertyVisit{PropertyID: p.ID, StartTime: at(11, 0), EndTime: at(12, 0)}
	assert.NoError(t, db.CreateVisit(touching), "back-to-back visits do not overlap")
}

func TestCreateVisit_SameAgentOtherProperty(t *testing.T) {
	db := newTestDB(t)
	p1 := seedProperty(t, db, "Loft")
	p2 := seedProperty(t, db, "House")
	agent := uint(7)

	require.NoError(t, db.CreateVisit(&models.PropertyVisit{PropertyID: p1.ID, AgentID: &agent, StartTime: at(14, 0), EndTime: at(15, 0), Status: models.VisitConfirmed}))

	err := db.CreateVisit(&models.PropertyVisit{PropertyID: p2.ID, AgentID: &agent, StartTime: at(14, 30), EndTime: at(15, 30)})
	assert.ErrorIs(t, err, ErrVisitConflict)

	other := uint(8)
	assert.NoError(t, db.CreateVisit(&models.PropertyVisit{PropertyID: p2.ID, AgentID: &other, StartTime: at(14, 30), EndTime: at(15, 30)}))
}

func TestCreateVisit_OnlyConfirmedBlocks(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Loft")

	require.NoError(t, db.CreateVisit(&models.PropertyVisit{PropertyID: p.ID, StartTime: at(9, 0), EndTime: at(10, 0), Status: models.VisitRequested}))
	require.NoError(t, db.CreateVisit(&models.PropertyVisit{PropertyID: p.ID, StartTime: at(9, 0), EndTime: at(10, 0), Status: models.VisitConfirmed}))

	conflicts, err := db.FindConflicts(ConflictQuery{PropertyID: p.ID, Start: at(9, 30), End: at(9, 45)})
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
	assert.Equal(t, models.VisitConfirmed, conflicts[0].Status)
}

func TestCreateVisit_RejectsInvertedSlot(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Loft")

	err := db.CreateVisit(&models.PropertyVisit{PropertyID: p.ID, StartTime: at(12, 0), EndTime: at(12, 0)})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateVisit_ConflictRollsBack(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Loft")

	require.NoError(t, db.CreateVisit(&models.PropertyVisit{PropertyID: p.ID, StartTime: at(10, 0), EndTime: at(11, 0), Status: models.VisitConfirmed}))
	moving := &models.PropertyVisit{PropertyID: p.ID, StartTime: at(13, 0), EndTime: at(14, 0), Status: models.VisitConfirmed}
	require.NoError(t, db.CreateVisit(moving))

	_, err := db.UpdateVisit(moving.ID, map[string]interface{}{"start_time": at(10, 30), "end_time": at(11, 30)})
	require.ErrorIs(t, err, ErrVisitConflict)

	reloaded, err := db.GetVisit(moving.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.StartTime.Equal(at(13, 0)), "failed move must not persist")

	// Excludes itself when re-checking
	updated, err := db.UpdateVisit(moving.ID, map[string]interface{}{"end_time": at(14, 30)})
	require.NoError(t, err)
	assert.True(t, updated.EndTime.Equal(at(14, 30)))
}

func TestUpdateVisitStatus_ConfirmChecksCalendar(t *testing.T) {
	db := newTestDB(t)
	p := seedProperty(t, db, "Loft")

	first := &models.PropertyVisit{PropertyID: p.ID, StartTime: at(10, 0), EndTime: at(11, 0), Status: models.VisitRequested}
	require.NoError(t, db.CreateVisit(first))
	second := &models.PropertyVisit{PropertyID: p.ID, StartTime: at(10, 0), EndTime: at(11, 0), Status: models.VisitRequested}
	require.NoError(t, db.CreateVisit(second))

	_, err := db.UpdateVisitStatus(first.ID, models.VisitConfirmed, nil, nil)
	require.NoError(t, err)

	_, err = db.UpdateVisitStatus(second.ID, models.VisitConfirmed, nil, nil)
	assert.ErrorIs(t, err, ErrVisitConflict)

	done, err := db.UpdateVisitStatus(second.ID, models.VisitCancelled, ptr("Client changed plans"), ptr(3))
	require.NoError(t, err)
	assert.Equal(t, models.VisitCancelled, done.Status)
	assert.Equal(t, "Client changed plans", done.Feedback)
}
