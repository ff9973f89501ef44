package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	listCount int
	updateErr error
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, m.listCount, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func newUserFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin-1": {ID: "admin-1", Username: "root", Email: "root@example.com", Role: models.RoleAdmin, Active: true},
		"staff-1": {ID: "staff-1", Username: "clerk", Email: "clerk@example.com", Role: models.RoleStaff, Active: true},
	}, listCount: 42}
	return NewUserService(repo, nil, nil), repo
}

func TestUserServiceListPagination(t *testing.T) {
	svc, _ := newUserFixture()

	users, pagination, err := svc.List(context.Background(), models.UserFilter{Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestUserServiceUpdateRole(t *testing.T) {
	svc, repo := newUserFixture()
	role := models.RoleViewer
	email := " Clerk@Depot.example "

	user, err := svc.Update(context.Background(), "admin-1", "staff-1", models.UserUpdateRequest{Role: &role, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.Equal(t, "clerk@depot.example", repo.users["staff-1"].Email)
}

func TestUserServiceRejectsBlankEmail(t *testing.T) {
	svc, repo := newUserFixture()
	blank := "   "

	_, err := svc.Update(context.Background(), "admin-1", "staff-1", models.UserUpdateRequest{Email: &blank})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.NotEmpty(t, repo.users["staff-1"].Email)
}

func TestUserServiceRejectsSelfDemotion(t *testing.T) {
	svc, repo := newUserFixture()
	role := models.RoleStaff

	_, err := svc.Update(context.Background(), "admin-1", "admin-1", models.UserUpdateRequest{Role: &role})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErr.Code)
	assert.Equal(t, models.RoleAdmin, repo.users["admin-1"].Role)

	err = svc.Deactivate(context.Background(), "admin-1", "admin-1")
	require.ErrorAs(t, err, &appErr)
	assert.True(t, repo.users["admin-1"].Active)
}

func TestUserServiceDeactivate(t *testing.T) {
	svc, repo := newUserFixture()

	require.NoError(t, svc.Deactivate(context.Background(), "admin-1", "staff-1"))
	assert.False(t, repo.users["staff-1"].Active)

	err := svc.Deactivate(context.Background(), "admin-1", "ghost")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestUserServiceEmailConflict(t *testing.T) {
	svc, repo := newUserFixture()
	repo.updateErr = fmt.Errorf("update user: %w", repository.ErrUniqueViolation)
	email := "root@example.com"

	_, err := svc.Update(context.Background(), "admin-1", "staff-1", models.UserUpdateRequest{Email: &email})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUserServiceRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserFixture()
	role := models.UserRole("teacher")

	_, err := svc.Update(context.Background(), "admin-1", "staff-1", models.UserUpdateRequest{Role: &role})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
