package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid login payload")
	}

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	token, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.audit(ctx, &user.ID, models.AuditActionLogin, req.IP, req.UserAgent)

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.AccessTokenExpiry.Seconds()),
		ExpiresAt: expiresAt,
		User:      userInfo(user),
	}, nil
}

// Register creates an operator account. The first account is always an admin;
// later ones need an admin caller, enforced by the route.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ip, userAgent string) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid registration payload")
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if count == 0 {
		role = models.RoleAdmin
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Username or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.audit(ctx, &user.ID, models.AuditActionRegister, ip, userAgent)

	info := userInfo(user)
	return &info, nil
}

// SetupStatus reports whether the first administrator still needs to register.
func (s *AuthService) SetupStatus(ctx context.Context) (*models.SetupStatus, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	return &models.SetupStatus{NeedsSetup: count == 0, UserCount: count}, nil
}

// NeedsSetup is true while no account exists.
func (s *AuthService) NeedsSetup(ctx context.Context) (bool, error) {
	status, err := s.SetupStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.NeedsSetup, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	info := userInfo(user)
	return &info, nil
}

// Logout records the sign-out. Tokens are stateless and expire on their own.
func (s *AuthService) Logout(ctx context.Context, userID, ip, userAgent string) {
	s.audit(ctx, &userID, models.AuditActionLogout, ip, userAgent)
}

// ValidateToken parses and validates a JWT access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) audit(ctx context.Context, userID *string, action, ip, userAgent string) {
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: userID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}
}
