package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	history    []models.StudentStatusHistory
	classes    map[string]string
	lastFilter models.StudentFilter
	seq        int
}

func newMockStudentRepo(students ...models.Student) *mockStudentRepo {
	m := &mockStudentRepo{students: make(map[string]models.Student)}
	for _, s := range students {
		m.students[s.ID] = s
	}
	return m
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	m.lastFilter = filter
	details := make([]models.StudentDetail, 0, len(m.students))
	for _, s := range m.students {
		details = append(details, models.StudentDetail{Student: s})
	}
	return details, len(details), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return &models.StudentDetail{Student: s}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) CountActiveOnBus(ctx context.Context, busID, excludeID string) (int, error) {
	count := 0
	for _, s := range m.students {
		if s.IsActive && s.BusID != nil && *s.BusID == busID && s.ID != excludeID {
			count++
		}
	}
	return count, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.seq++
	student.ID = "student-new"
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) SetStatus(ctx context.Context, id string, active bool, effective time.Time, reason *string) error {
	s, ok := m.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.IsActive = active
	m.students[id] = s
	status := models.StudentStatusActive
	if !active {
		status = models.StudentStatusInactive
	}
	m.history = append(m.history, models.StudentStatusHistory{StudentID: id, Status: status, StartDate: effective, Reason: reason})
	return nil
}

func (m *mockStudentRepo) StatusHistory(ctx context.Context, id string) ([]models.StudentStatusHistory, error) {
	return m.history, nil
}

func (m *mockStudentRepo) ListForPromotion(ctx context.Context, ids []string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if len(ids) == 0 && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) UpdateClasses(ctx context.Context, classes map[string]string) error {
	m.classes = classes
	return nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func smallBus() fakeBusReader {
	// two seats carry three students
	return fakeBusReader{schoolBusUUID: {ID: schoolBusUUID, SeatingCapacity: 2, OwnershipType: models.OwnershipSchool}}
}

func studentOnBus(id string, active bool) models.Student {
	return models.Student{ID: id, Name: id, Class: "5", BusID: strPtr(schoolBusUUID), IsActive: active}
}

func studentRequest() models.StudentRequest {
	return models.StudentRequest{Name: " Ravi ", Class: "4", MonthlyFee: 1200, BusID: schoolBusUUID}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newMockStudentRepo(studentOnBus("s1", true), studentOnBus("s2", true))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)

	student, err := svc.Create(context.Background(), studentRequest())
	require.NoError(t, err)
	assert.Equal(t, "Ravi", student.Name)
	assert.True(t, student.IsActive)
	assert.Equal(t, schoolBusUUID, *student.BusID)
}

func TestStudentServiceCreateRejectsFullBus(t *testing.T) {
	repo := newMockStudentRepo(studentOnBus("s1", true), studentOnBus("s2", true), studentOnBus("s3", true), studentOnBus("s4", false))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)

	_, err := svc.Create(context.Background(), studentRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBusAtCapacity.Code, appErr.Code)
	assert.Equal(t, "Bus is at full capacity", appErr.Message)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), smallBus(), nil, nil, nil)

	req := studentRequest()
	req.FeeWaiverPercent = 120
	req.BusID = "not-a-uuid"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "feeWaiverPercent")
	assert.Contains(t, details, "busId")
}

func TestStudentServiceSetStatus(t *testing.T) {
	repo := newMockStudentRepo(studentOnBus("s1", true))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }

	detail, err := svc.SetStatus(context.Background(), "s1", models.StudentStatusRequest{IsActive: boolPtr(false), Reason: strPtr("moved")})
	require.NoError(t, err)
	assert.False(t, detail.IsActive)
	require.NotNil(t, detail.EndDate)
	assert.Equal(t, time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC), *detail.EndDate)
	require.Len(t, repo.history, 1)
	assert.Equal(t, models.StudentStatusInactive, repo.history[0].Status)

	_, err = svc.SetStatus(context.Background(), "s1", models.StudentStatusRequest{IsActive: boolPtr(false)})
	require.Error(t, err)
	assert.Equal(t, "Status unchanged", appErrors.FromError(err).Message)

	_, err = svc.SetStatus(context.Background(), "missing", models.StudentStatusRequest{IsActive: boolPtr(true)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceReactivationChecksCapacity(t *testing.T) {
	repo := newMockStudentRepo(studentOnBus("s1", true), studentOnBus("s2", true), studentOnBus("s3", true), studentOnBus("s4", false))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)

	_, err := svc.SetStatus(context.Background(), "s4", models.StudentStatusRequest{IsActive: boolPtr(true)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBusAtCapacity.Code, appErrors.FromError(err).Code)
}

func TestStudentServicePromote(t *testing.T) {
	s1 := studentOnBus("s1", true)
	s2 := studentOnBus("s2", true)
	s2.Class = "12"
	s3 := studentOnBus("s3", true)
	s3.Class = "UKG"
	repo := newMockStudentRepo(s1, s2, s3, studentOnBus("s4", false))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)

	result, err := svc.Promote(context.Background(), models.PromoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.PromoteResult{Promoted: 1, Capped: 1, Skipped: 1}, *result)
	assert.Equal(t, map[string]string{"s1": "6"}, repo.classes)
}

func TestStudentServiceUpdateAndDelete(t *testing.T) {
	repo := newMockStudentRepo(studentOnBus("s1", true))
	svc := NewStudentService(repo, smallBus(), nil, nil, nil)

	req := studentRequest()
	req.Class = "6"
	updated, err := svc.Update(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, "6", updated.Class)
	assert.True(t, updated.IsActive)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	err = svc.Delete(context.Background(), "s1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
