package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*GormDB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return NewGormDBFromDB(gdb), mock
}

func TestDeleteClient_RollsBackOnCascadeFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `clients`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "type"}).AddRow(7, "Carl", "Doe", "buyer"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `rental_contracts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM `client_needs`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `interactions`").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := db.DeleteClient(7, nil)
	assert.EqualError(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteClient_InUseRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `clients`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "type"}).AddRow(7, "Carl", "Doe", "tenant"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `rental_contracts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	assert.ErrorIs(t, db.DeleteClient(7, nil), ErrClientInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}
