package models

import (
	"time"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
)

// PaymentMethod enumerates accepted collection channels.
type PaymentMethod string

const (
	PaymentMethodCash           PaymentMethod = "CASH"
	PaymentMethodCheque         PaymentMethod = "CHEQUE"
	PaymentMethodUPI            PaymentMethod = "UPI"
	PaymentMethodOnlineTransfer PaymentMethod = "ONLINE_TRANSFER"
	PaymentMethodCard           PaymentMethod = "CARD"
)

// Payment is one fee collection against a student's quarter.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"studentId"`
	Amount        float64       `db:"amount" json:"amount"`
	PaymentDate   time.Time     `db:"payment_date" json:"paymentDate"`
	Quarter       int           `db:"quarter" json:"quarter"`
	AcademicYear  string        `db:"academic_year" json:"academicYear"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	TransactionID *string       `db:"transaction_id" json:"transactionId,omitempty"`
	CheckNumber   *string       `db:"check_number" json:"checkNumber,omitempty"`
	BankName      *string       `db:"bank_name" json:"bankName,omitempty"`
	CollectedBy   *string       `db:"collected_by" json:"collectedBy,omitempty"`
	Remarks       *string       `db:"remarks" json:"remarks,omitempty"`
	ReceiptNumber string        `db:"receipt_number" json:"receiptNumber"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// PaymentDetail joins the student the payment belongs to.
type PaymentDetail struct {
	Payment
	StudentName        string  `db:"student_name" json:"studentName"`
	StudentClass       string  `db:"student_class" json:"studentClass"`
	BusID              *string `db:"bus_id" json:"busId,omitempty"`
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`
}

// PaymentFilter captures list filters.
type PaymentFilter struct {
	StudentID    string
	AcademicYear string
	BusID        string
	Page         int
	PageSize     int
}

// PaymentRequest is the payload for recording a fee payment.
type PaymentRequest struct {
	StudentID     string        `json:"studentId" validate:"required,uuid"`
	Amount        float64       `json:"amount" validate:"required,gt=0"`
	Quarter       int           `json:"quarter" validate:"required,min=1,max=4"`
	AcademicYear  string        `json:"academicYear" validate:"required,academic_year"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=CASH CHEQUE UPI ONLINE_TRANSFER CARD"`
	PaymentDate   *time.Time    `json:"paymentDate"`
	TransactionID *string       `json:"transactionId"`
	CheckNumber   *string       `json:"checkNumber"`
	BankName      *string       `json:"bankName"`
	CollectedBy   *string       `json:"collectedBy"`
	Remarks       *string       `json:"remarks"`
}

// StudentFeeStatus is the per-quarter view of a student's fees for one academic year.
type StudentFeeStatus struct {
	StudentID        string            `json:"studentId"`
	StudentName      string            `json:"studentName"`
	MonthlyFee       float64           `json:"monthlyFee"`
	FeeWaiverPercent float64           `json:"feeWaiverPercent"`
	FeePaid          float64           `json:"feePaid"`
	Summary          ledger.FeeSummary `json:"summary"`
}
