package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

var studentDetailColumns = []string{"id", "name", "class", "section", "village", "parent_name", "parent_contact", "emergency_contact",
	"monthly_fee", "fee_waiver_percent", "bus_id", "start_date", "end_date", "is_active", "created_at", "updated_at", "registration_number", "fee_paid"}

func TestStudentRepositoryListFiltersByBus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentDetailColumns).
		AddRow("s1", "Asha", "5", nil, nil, nil, nil, nil, 1500.0, 0.0, "b1", now, nil, true, now, now, "KA-01-1234", 4500.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s LEFT JOIN buses b ON b.id = s.bus_id WHERE s.bus_id = $1 ORDER BY s.name ASC LIMIT 50 OFFSET 0")).
		WithArgs("b1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE s.bus_id = $1")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{BusID: "b1"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 4500.0, students[0].FeePaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateOpensStatusPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	busID := "b1"
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_status_history").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.StudentStatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Student{Name: "Asha", Class: "5", BusID: &busID, IsActive: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	effective := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET is_active").
		WithArgs("s1", false, effective, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_status_history SET end_date").
		WithArgs("s1", effective).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_status_history").
		WithArgs(sqlmock.AnyArg(), "s1", models.StudentStatusInactive, effective, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetStatus(context.Background(), "s1", false, effective, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetStatusMissingStudentRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET is_active").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetStatus(context.Background(), "missing", true, time.Now(), nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountActiveOnBus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE bus_id = $1 AND is_active = TRUE AND id <> $2")).
		WithArgs("b1", "00000000-0000-0000-0000-000000000000").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(59))

	count, err := repo.CountActiveOnBus(context.Background(), "b1", "")
	require.NoError(t, err)
	assert.Equal(t, 59, count)
}
