package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

func TestInventoryRepositoryDispenseWithinStock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	busID := "b1"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(7_100_001)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM inventory_purchases WHERE category = \\$1").
		WithArgs(models.CategoryFuel).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(120.0))
	mock.ExpectExec("INSERT INTO inventory_dispenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Dispense(context.Background(), &models.InventoryDispense{Category: models.CategoryFuel, BusID: &busID, Date: time.Now(), Quantity: 100}, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryDispenseInsufficientStock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM inventory_purchases").WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(40.5))
	mock.ExpectRollback()

	err := repo.Dispense(context.Background(), &models.InventoryDispense{Category: models.CategoryUrea, Quantity: 50}, true)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 40.5, stockErr.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryDispenseWithoutGuard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO inventory_dispenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Dispense(context.Background(), &models.InventoryDispense{Category: models.CategoryFuel, Quantity: 500}, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryFuelReadings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	d1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 7)
	mock.ExpectQuery("SELECT date, odometer_reading, quantity FROM inventory_dispenses").
		WithArgs(models.CategoryFuel, "b1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "odometer_reading", "quantity"}).
			AddRow(d1, 1000.0, 40.0).
			AddRow(d2, 1400.0, 50.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(quantity), 0) FROM inventory_dispenses WHERE category = $1 AND bus_id = $2")).
		WithArgs(models.CategoryFuel, "b1").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(90.0))

	readings, litres, err := repo.FuelReadings(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, readings, 2)
	assert.Equal(t, 90.0, litres)
	assert.Equal(t, 1400.0, readings[1].Odometer)
}
