package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
)

// ErrDuplicatePayment is returned when the student already paid the quarter.
var ErrDuplicatePayment = errors.New("payment already recorded for quarter")

const paymentDetailSelect = `SELECT p.id, p.student_id, p.amount, p.payment_date, p.quarter, p.academic_year, p.payment_method,
p.transaction_id, p.check_number, p.bank_name, p.collected_by, p.remarks, p.receipt_number, p.created_at,
s.name AS student_name, s.class AS student_class, s.bus_id, b.registration_number
FROM payments p
JOIN students s ON s.id = p.student_id
LEFT JOIN buses b ON b.id = s.bus_id`

// CreatePaymentOptions controls how a payment is recorded.
type CreatePaymentOptions struct {
	// AllowSplit permits several payments for the same quarter.
	AllowSplit bool
	// Receipt formats the receipt number from the next sequence value.
	Receipt func(seq int64) string
}

// PaymentRepository provides access to student fee payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a payment. The student row is locked so the duplicate check
// and receipt sequence are serialised per student.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment, opts CreatePaymentOptions) (err error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = payment.CreatedAt
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin create payment", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var studentID string
	if err = tx.GetContext(ctx, &studentID, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, payment.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return wrapErr("lock student", err)
	}

	if !opts.AllowSplit {
		var exists bool
		const dup = `SELECT EXISTS (SELECT 1 FROM payments WHERE student_id = $1 AND quarter = $2 AND academic_year = $3)`
		if err = tx.GetContext(ctx, &exists, dup, payment.StudentID, payment.Quarter, payment.AcademicYear); err != nil {
			return wrapErr("check duplicate payment", err)
		}
		if exists {
			err = ErrDuplicatePayment
			return err
		}
	}

	var seq int64
	if err = tx.GetContext(ctx, &seq, `SELECT nextval('payment_receipt_seq')`); err != nil {
		return wrapErr("next receipt number", err)
	}
	if opts.Receipt != nil {
		payment.ReceiptNumber = opts.Receipt(seq)
	} else {
		payment.ReceiptNumber = ledger.ReceiptNumber(ledger.DefaultReceiptPrefix, time.Now().UTC().Year(), seq)
	}

	const insert = `INSERT INTO payments (id, student_id, amount, payment_date, quarter, academic_year, payment_method,
transaction_id, check_number, bank_name, collected_by, remarks, receipt_number, created_at)
VALUES (:id, :student_id, :amount, :payment_date, :quarter, :academic_year, :payment_method,
:transaction_id, :check_number, :bank_name, :collected_by, :remarks, :receipt_number, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, payment); err != nil {
		return wrapWriteErr("insert payment", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit create payment", err)
	}
	return nil
}

func paymentConditions(filter models.PaymentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("p.academic_year = $%d", len(args)))
	}
	if filter.BusID != "" {
		args = append(args, filter.BusID)
		conditions = append(conditions, fmt.Sprintf("s.bus_id = $%d", len(args)))
	}
	return conditions, args
}

// List returns payments newest first with the student joined.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	conditions, args := paymentConditions(filter)
	where := whereClause(conditions)

	_, size, offset := models.PageBounds(filter.Page, filter.PageSize, 50, 500)
	query := fmt.Sprintf("%s%s ORDER BY p.payment_date DESC, p.created_at DESC LIMIT %d OFFSET %d", paymentDetailSelect, where, size, offset)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, wrapErr("list payments", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM payments p JOIN students s ON s.id = p.student_id" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, wrapErr("count payments", err)
	}
	return payments, total, nil
}

// ListAll returns every payment matching filter, ignoring paging.
func (r *PaymentRepository) ListAll(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, error) {
	conditions, args := paymentConditions(filter)
	query := paymentDetailSelect + whereClause(conditions) + ` ORDER BY p.payment_date ASC, p.receipt_number ASC`
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, wrapErr("list all payments", err)
	}
	return payments, nil
}

// FindByID returns one payment with the student joined.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment, paymentDetailSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find payment", err)
	}
	return &payment, nil
}

// ListByStudent returns a student's payments for one academic year.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID, academicYear string) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, payment_date, quarter, academic_year, payment_method, transaction_id,
check_number, bank_name, collected_by, remarks, receipt_number, created_at
FROM payments WHERE student_id = $1 AND academic_year = $2 ORDER BY quarter ASC, payment_date ASC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID, academicYear); err != nil {
		return nil, wrapErr("list student payments", err)
	}
	return payments, nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete payment", err)
	}
	return expectAffected(res, "delete payment")
}
