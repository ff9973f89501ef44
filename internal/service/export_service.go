package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/export"
)

type studentExportReader interface {
	ListForExport(ctx context.Context, busID, academicYear string) ([]models.StudentExportRow, error)
}

type paymentExportReader interface {
	ListAll(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportService renders student fee and payment registers.
type ExportService struct {
	students studentExportReader
	payments paymentExportReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(students studentExportReader, payments paymentExportReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, payments: payments, logger: logger, now: time.Now}
}

// StudentRows returns the student fee register for an academic year, defaulting to the current one.
func (s *ExportService) StudentRows(ctx context.Context, busID, academicYear string) ([]models.StudentExportRow, string, error) {
	year, err := s.resolveYear(academicYear)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.students.ListForExport(ctx, busID, year)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for export")
	}
	if rows == nil {
		rows = []models.StudentExportRow{}
	}
	for i := range rows {
		rows[i].AnnualDue = ledger.AnnualDue(rows[i].MonthlyFee, rows[i].FeeWaiverPercent)
		rows[i].Outstanding = ledger.Total(rows[i].AnnualDue, -rows[i].PaidInYear)
	}
	return rows, year, nil
}

// Students renders the student fee register as csv, xlsx or pdf.
func (s *ExportService) Students(ctx context.Context, busID, academicYear, format string) (*ExportFile, error) {
	f, ok := export.Lookup(format)
	if !ok {
		return nil, unsupportedFormat(format)
	}
	rows, year, err := s.StudentRows(ctx, busID, academicYear)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Title:   "Students " + year,
		Headers: []string{"Name", "Class", "Section", "Village", "Parent", "Contact", "Bus", "Monthly Fee", "Waiver %", "Annual Due", "Paid", "Outstanding", "Active"},
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{
			r.Name,
			r.Class,
			deref(r.Section),
			deref(r.Village),
			deref(r.ParentName),
			deref(r.ParentContact),
			deref(r.RegistrationNumber),
			money(r.MonthlyFee),
			money(r.FeeWaiverPercent),
			money(r.AnnualDue),
			money(r.PaidInYear),
			money(r.Outstanding),
			strconv.FormatBool(r.IsActive),
		})
	}
	return s.render(f, "students_"+year, data)
}

// Payments renders the payment register for an academic year as csv or xlsx.
func (s *ExportService) Payments(ctx context.Context, academicYear, format string) (*ExportFile, error) {
	f, ok := export.Lookup(format)
	if !ok || f.Name == "pdf" {
		return nil, unsupportedFormat(format)
	}
	year, err := s.resolveYear(academicYear)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListAll(ctx, models.PaymentFilter{AcademicYear: year})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments for export")
	}
	data := export.Dataset{
		Title:   "Payments " + year,
		Headers: []string{"Receipt", "Date", "Student", "Class", "Bus", "Quarter", "Amount", "Method", "Reference"},
	}
	for _, p := range payments {
		reference := deref(p.TransactionID)
		if reference == "" {
			reference = deref(p.CheckNumber)
		}
		data.Rows = append(data.Rows, []string{
			p.ReceiptNumber,
			p.PaymentDate.UTC().Format("2006-01-02"),
			p.StudentName,
			p.StudentClass,
			deref(p.RegistrationNumber),
			"Q" + strconv.Itoa(p.Quarter),
			money(p.Amount),
			string(p.PaymentMethod),
			reference,
		})
	}
	return s.render(f, "payments_"+year, data)
}

func (s *ExportService) render(f export.Format, baseName string, data export.Dataset) (*ExportFile, error) {
	body, err := f.Renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("export rendered", zap.String("file", baseName), zap.String("format", f.Name), zap.Int("rows", len(data.Rows)))
	return &ExportFile{FileName: baseName + f.Extension, ContentType: f.ContentType, Body: body}, nil
}

func (s *ExportService) resolveYear(academicYear string) (string, error) {
	year := strings.TrimSpace(academicYear)
	if year == "" {
		return ledger.AcademicYearOf(s.now()), nil
	}
	if !ledger.ValidAcademicYear(year) {
		return "", appErrors.Clone(appErrors.ErrBadRequest, "academicYear must look like 2024-25")
	}
	return year, nil
}

func unsupportedFormat(format string) error {
	return appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("Unsupported export format %q", format))
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
