package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UserService lets admins manage operator accounts.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page, size, _ := models.PageBounds(filter.Page, filter.PageSize, 20, 100)
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Update changes email, role or active flag. Admins cannot demote or
// deactivate themselves, so at least one admin always remains reachable.
func (s *UserService) Update(ctx context.Context, actorID, id string, req models.UserUpdateRequest) (*models.User, error) {
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid user payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if actorID == user.ID && (user.Role != models.RoleAdmin || !user.Active) {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "You cannot demote or deactivate your own account")
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, appErrors.Clone(appErrors.ErrConflict, "Email already in use")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("role", string(user.Role)), zap.Bool("active", user.Active))
	return user, nil
}

// Deactivate soft-deletes an account.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) error {
	inactive := false
	_, err := s.Update(ctx, actorID, id, models.UserUpdateRequest{Active: &inactive})
	return err
}
