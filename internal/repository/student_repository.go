package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

const studentColumns = `s.id, s.name, s.class, s.section, s.village, s.parent_name, s.parent_contact, s.emergency_contact,
s.monthly_fee, s.fee_waiver_percent, s.bus_id, s.start_date, s.end_date, s.is_active, s.created_at, s.updated_at`

const studentDetailSelect = `SELECT ` + studentColumns + `, b.registration_number,
COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.student_id = s.id), 0) AS fee_paid
FROM students s LEFT JOIN buses b ON b.id = s.bus_id`

// StudentRepository provides access to students and their status history.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students with the bus registration and total fees paid.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.BusID != "" {
		args = append(args, filter.BusID)
		conditions = append(conditions, fmt.Sprintf("s.bus_id = $%d", len(args)))
	}
	if filter.Class != "" {
		args = append(args, filter.Class)
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("s.is_active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(COALESCE(s.parent_name, '')) LIKE $%d)", len(args), len(args)))
	}
	where := whereClause(conditions)

	_, size, offset := models.PageBounds(filter.Page, filter.PageSize, 50, 500)
	query := fmt.Sprintf("%s%s ORDER BY s.name ASC LIMIT %d OFFSET %d", studentDetailSelect, where, size, offset)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, wrapErr("list students", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students s"+where, args...); err != nil {
		return nil, 0, wrapErr("count students", err)
	}
	return students, total, nil
}

// FindByID returns a student with derived fee totals.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, studentDetailSelect+` WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find student", err)
	}
	return &student, nil
}

// CountActiveOnBus counts active students on a bus, ignoring excludeID.
func (r *StudentRepository) CountActiveOnBus(ctx context.Context, busID, excludeID string) (int, error) {
	if excludeID == "" {
		excludeID = uuid.Nil.String()
	}
	var count int
	const query = `SELECT COUNT(*) FROM students WHERE bus_id = $1 AND is_active = TRUE AND id <> $2`
	if err := r.db.GetContext(ctx, &count, query, busID, excludeID); err != nil {
		return 0, wrapErr("count active students on bus", err)
	}
	return count, nil
}

// Create inserts a student and opens its first status period.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (err error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin create student", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO students (id, name, class, section, village, parent_name, parent_contact, emergency_contact,
monthly_fee, fee_waiver_percent, bus_id, start_date, end_date, is_active, created_at, updated_at)
VALUES (:id, :name, :class, :section, :village, :parent_name, :parent_contact, :emergency_contact,
:monthly_fee, :fee_waiver_percent, :bus_id, :start_date, :end_date, :is_active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, student); err != nil {
		return wrapWriteErr("create student", err)
	}
	start := now
	if student.StartDate != nil {
		start = *student.StartDate
	}
	status := models.StudentStatusActive
	if !student.IsActive {
		status = models.StudentStatusInactive
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO student_status_history (id, student_id, status, start_date, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), student.ID, status, start, now); err != nil {
		return wrapErr("open student status", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit create student", err)
	}
	return nil
}

// Update replaces the profile columns of a student. Activity is changed through SetStatus.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, class = :class, section = :section, village = :village,
parent_name = :parent_name, parent_contact = :parent_contact, emergency_contact = :emergency_contact,
monthly_fee = :monthly_fee, fee_waiver_percent = :fee_waiver_percent, bus_id = :bus_id, start_date = :start_date,
end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return wrapWriteErr("update student", err)
	}
	return expectAffected(res, "update student")
}

// Delete removes a student together with payments and history.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete student", err)
	}
	return expectAffected(res, "delete student")
}

// SetStatus flips is_active, closes the open history period and opens a new one.
func (r *StudentRepository) SetStatus(ctx context.Context, id string, active bool, effective time.Time, reason *string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin student status", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	var endDate interface{}
	if !active {
		endDate = effective
	}
	res, err := tx.ExecContext(ctx, `UPDATE students SET is_active = $2, end_date = $3, updated_at = $4 WHERE id = $1`, id, active, endDate, now)
	if err != nil {
		return wrapErr("update student status", err)
	}
	if err = expectAffected(res, "update student status"); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE student_status_history SET end_date = $2 WHERE student_id = $1 AND end_date IS NULL`, id, effective); err != nil {
		return wrapErr("close student status", err)
	}
	status := models.StudentStatusActive
	if !active {
		status = models.StudentStatusInactive
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO student_status_history (id, student_id, status, start_date, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), id, status, effective, reason, now); err != nil {
		return wrapErr("insert student status", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit student status", err)
	}
	return nil
}

// StatusHistory returns a student's status periods, newest first.
func (r *StudentRepository) StatusHistory(ctx context.Context, id string) ([]models.StudentStatusHistory, error) {
	const query = `SELECT id, student_id, status, start_date, end_date, reason, created_at FROM student_status_history WHERE student_id = $1 ORDER BY start_date DESC, created_at DESC`
	var history []models.StudentStatusHistory
	if err := r.db.SelectContext(ctx, &history, query, id); err != nil {
		return nil, wrapErr("student status history", err)
	}
	return history, nil
}

// ListForPromotion returns the given students, or every active student when ids is empty.
func (r *StudentRepository) ListForPromotion(ctx context.Context, ids []string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.is_active = TRUE`
	var args []interface{}
	if len(ids) > 0 {
		query = `SELECT ` + studentColumns + ` FROM students s WHERE s.id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, wrapErr("list students for promotion", err)
	}
	return students, nil
}

// UpdateClasses writes new class values in one transaction.
func (r *StudentRepository) UpdateClasses(ctx context.Context, classes map[string]string) (err error) {
	if len(classes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin promote students", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	for id, class := range classes {
		if _, err = tx.ExecContext(ctx, `UPDATE students SET class = $2, updated_at = $3 WHERE id = $1`, id, class, now); err != nil {
			return fmt.Errorf("promote student %s: %w", id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit promote students", err)
	}
	return nil
}

// ListForExport returns students with the amount paid in one academic year.
func (r *StudentRepository) ListForExport(ctx context.Context, busID, academicYear string) ([]models.StudentExportRow, error) {
	query := `SELECT s.id, s.name, s.class, s.section, s.village, s.parent_name, s.parent_contact, b.registration_number,
s.monthly_fee, s.fee_waiver_percent, s.is_active,
COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.student_id = s.id AND p.academic_year = $1), 0) AS paid_in_year
FROM students s LEFT JOIN buses b ON b.id = s.bus_id`
	args := []interface{}{academicYear}
	if busID != "" {
		query += ` WHERE s.bus_id = $2`
		args = append(args, busID)
	}
	query += ` ORDER BY b.registration_number ASC NULLS LAST, s.class ASC, s.name ASC`
	var rows []models.StudentExportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("list students for export", err)
	}
	return rows, nil
}
