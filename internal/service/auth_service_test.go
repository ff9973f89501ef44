package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	created   []*models.User
	auditLogs []*models.AuditLog
	lastLogin bool
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	m := &mockAuthRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "u-" + user.Username
	m.users[user.Username] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func hashed(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "test"})
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Username: "admin", Email: "a@example.com", PasswordHash: hashed(t, "secret1"), Role: models.RoleAdmin, Active: true})
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.True(t, repo.lastLogin)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Username: "admin", PasswordHash: hashed(t, "secret1"), Active: true})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Username: "old", PasswordHash: hashed(t, "secret1"), Active: false})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "old", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceFirstRegistrationBecomesAdmin(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo)

	status, err := svc.SetupStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.NeedsSetup)

	info, err := svc.Register(context.Background(), models.RegisterRequest{Username: "owner", Email: "Owner@Example.com", Password: "secret1", Role: models.RoleViewer}, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.Equal(t, "owner@example.com", info.Email)

	second, err := svc.Register(context.Background(), models.RegisterRequest{Username: "clerk", Email: "clerk@example.com", Password: "secret1"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, second.Role)
}

func TestAuthServiceRegisterConflictAndValidation(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Username: "admin", Email: "a@example.com"})
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "admin", Email: "new@example.com", Password: "secret1"}, "", "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Username: "ab", Email: "not-an-email", Password: "123"}, "", "")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Username: "admin", PasswordHash: hashed(t, "secret1"), Active: true})
	svc := newTestAuthService(repo)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
