package export

import (
	"bytes"
	"testing"
	"time"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClientsWorkbook(t *testing.T) {
	email := "ana@example.com"
	data, err := Clients([]models.Client{{
		ID:        3,
		FirstName: "Ana",
		LastName:  "Silva",
		Email:     &email,
		Type:      models.ClientTypeBuyer,
		Status:    models.ClientStatusLead,
		CreatedAt: time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Clients"}, f.GetSheetList())

	rows, err := f.GetRows("Clients")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First Name", rows[0][1])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "ana@example.com", rows[1][3])
	assert.Equal(t, "2026-02-03 10:30", rows[1][9])
}

func TestPaymentsWorkbook_Empty(t *testing.T) {
	data, err := Payments(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, "Due Date", rows[0][2])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "clients-20261015.xlsx", Filename("clients", time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)))
}
