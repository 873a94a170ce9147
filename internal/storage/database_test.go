package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
)

func setupMockDB(t *testing.T) (*DatabaseStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewDatabaseStore(db), mock
}

func TestDatabaseStore_EmergencyAppointmentCommits(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	appt, err := store.CreateEmergencyAppointment(context.Background(), EmergencyBooking{
		PatientName:  "Ramesh",
		HospitalName: "District Hospital",
		Pincode:      "110001",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(11), appt.ID)
	assert.Equal(t, uint(7), appt.PatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_EmergencyAppointmentRollsBack(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.CreateEmergencyAppointment(context.Background(), EmergencyBooking{
		PatientName:  "Ramesh",
		HospitalName: "District Hospital",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_GetAppointmentNotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT appointments\.\*, patients\.name AS patient_name`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetAppointment(context.Background(), 5)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_UpdateAppointmentStatus(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.UpdateAppointmentStatus(context.Background(), 3, "confirmed", "admin"))

	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := store.UpdateAppointmentStatus(context.Background(), 4, "rejected", "admin")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))

	// invalid status never reaches the database
	err = store.UpdateAppointmentStatus(context.Background(), 4, "archived", "admin")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_DeleteAppointment(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM "appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := store.DeleteAppointment(context.Background(), 9)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_SeedDefaultsSkipsPopulatedTables(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "doctors"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "services"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, store.SeedDefaults(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
