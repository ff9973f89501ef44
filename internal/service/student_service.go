package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	CountActiveOnBus(ctx context.Context, busID, excludeID string) (int, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, active bool, effective time.Time, reason *string) error
	StatusHistory(ctx context.Context, id string) ([]models.StudentStatusHistory, error)
	ListForPromotion(ctx context.Context, ids []string) ([]models.Student, error)
	UpdateClasses(ctx context.Context, classes map[string]string) error
}

// StudentService handles student enrolment on buses.
type StudentService struct {
	repo      studentRepository
	buses     busReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, buses busReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, buses: buses, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page, size, _ := models.PageBounds(filter.Page, filter.PageSize, 50, 500)
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create enrols a student on a bus with room left.
func (s *StudentService) Create(ctx context.Context, req models.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid student payload")
	}
	if err := s.ensureCapacity(ctx, req.BusID, ""); err != nil {
		return nil, err
	}

	busID := req.BusID
	student := &models.Student{IsActive: true, BusID: &busID}
	applyStudentRequest(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return student, nil
}

// Update modifies a student profile. Moving to another bus re-checks capacity.
func (s *StudentService) Update(ctx context.Context, id string, req models.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid student payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := detail.Student
	if student.IsActive && (student.BusID == nil || *student.BusID != req.BusID) {
		if err := s.ensureCapacity(ctx, req.BusID, id); err != nil {
			return nil, err
		}
	}

	busID := req.BusID
	student.BusID = &busID
	applyStudentRequest(&student, req)
	if err := s.repo.Update(ctx, &student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return &student, nil
}

// Delete removes a student with its payments and history.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return nil
}

// SetStatus activates or deactivates a student and records the period change.
func (s *StudentService) SetStatus(ctx context.Context, id string, req models.StudentStatusRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid status payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	active := *req.IsActive
	if detail.IsActive == active {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "Status unchanged")
	}
	if active && detail.BusID != nil {
		if err := s.ensureCapacity(ctx, *detail.BusID, id); err != nil {
			return nil, err
		}
	}

	effective := s.now().UTC()
	if req.EffectiveDate != nil {
		effective = req.EffectiveDate.UTC()
	}
	if err := s.repo.SetStatus(ctx, id, active, effective, req.Reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	s.logger.Info("student status changed", zap.String("student_id", id), zap.Bool("active", active))

	detail.IsActive = active
	if active {
		detail.EndDate = nil
	} else {
		detail.EndDate = &effective
	}
	return detail, nil
}

// StatusHistory lists a student's active and inactive periods.
func (s *StudentService) StatusHistory(ctx context.Context, id string) ([]models.StudentStatusHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.repo.StatusHistory(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}
	if history == nil {
		history = []models.StudentStatusHistory{}
	}
	return history, nil
}

// Promote moves students up one class. Classes that are not numbers are skipped.
func (s *StudentService) Promote(ctx context.Context, req models.PromoteRequest) (*models.PromoteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid promote payload")
	}
	students, err := s.repo.ListForPromotion(ctx, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	result := &models.PromoteResult{}
	classes := make(map[string]string)
	for _, student := range students {
		current, convErr := strconv.Atoi(strings.TrimSpace(student.Class))
		if convErr != nil {
			result.Skipped++
			continue
		}
		next := ledger.PromoteClass(current)
		if next == current {
			result.Capped++
			continue
		}
		classes[student.ID] = strconv.Itoa(next)
		result.Promoted++
	}
	if err := s.repo.UpdateClasses(ctx, classes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote students")
	}
	s.logger.Info("students promoted", zap.Int("promoted", result.Promoted), zap.Int("capped", result.Capped), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *StudentService) ensureCapacity(ctx context.Context, busID, excludeStudentID string) error {
	bus, err := s.buses.FindByID(ctx, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	count, err := s.repo.CountActiveOnBus(ctx, busID, excludeStudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students on bus")
	}
	if count >= ledger.StudentCapacity(bus.SeatingCapacity) {
		return appErrors.Clone(appErrors.ErrBusAtCapacity, "Bus is at full capacity")
	}
	return nil
}

func applyStudentRequest(student *models.Student, req models.StudentRequest) {
	student.Name = strings.TrimSpace(req.Name)
	student.Class = strings.TrimSpace(req.Class)
	student.Section = req.Section
	student.Village = req.Village
	student.ParentName = req.ParentName
	student.ParentContact = req.ParentContact
	student.EmergencyContact = req.EmergencyContact
	student.MonthlyFee = req.MonthlyFee
	student.FeeWaiverPercent = req.FeeWaiverPercent
	student.StartDate = req.StartDate
	student.EndDate = req.EndDate
}
