package database

import (
	"testing"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_EntityReference(t *testing.T) {
	db := newTestDB(t)

	err := db.CreateDocument(&models.Document{Title: "Deed", EntityType: models.EntityProperty, FileURL: "https://files/deed.pdf"})
	assert.ErrorIs(t, err, ErrInvalidState)

	general := &models.Document{Title: "Price list", EntityType: models.EntityGeneral, FileURL: "https://files/prices.pdf"}
	require.NoError(t, db.CreateDocument(general))

	_, err = db.UpdateDocument(general.ID, map[string]interface{}{"entity_type": models.EntityClient})
	assert.ErrorIs(t, err, ErrInvalidState)

	updated, err := db.UpdateDocument(general.ID, map[string]interface{}{"entity_type": models.EntityClient, "entity_id": ptr(uint(4))})
	require.NoError(t, err)
	assert.Equal(t, models.EntityClient, updated.EntityType)
	require.NotNil(t, updated.EntityID)
	assert.EqualValues(t, 4, *updated.EntityID)
}

func TestListDocuments_Filters(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.CreateDocument(&models.Document{Title: "Lease Dupont", Category: models.DocumentContract, EntityType: models.EntityClient, EntityID: ptr(uint(1)), FileURL: "https://f/1"}))
	require.NoError(t, db.CreateDocument(&models.Document{Title: "Invoice March", Category: models.DocumentInvoice, EntityType: models.EntityGeneral, FileURL: "https://f/2"}))

	items, total, err := db.ListDocuments(DocumentFilter{Category: "invoice"}, NewPage(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Invoice March", items[0].Title)

	items, total, err = db.ListDocuments(DocumentFilter{EntityType: models.EntityClient, EntityID: ptr(uint(1)), Query: "Dupont"}, NewPage(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Lease Dupont", items[0].Title)

	assert.ErrorIs(t, db.DeleteDocument(999), ErrNotFound)
}
