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

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

const userColumns = `id, username, email, password_hash, role, active, last_login, created_at, updated_at`

// UserRepository provides database access for operator accounts and the audit trail.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns a user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find user by username", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find user by id", err)
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is taken.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username, email); err != nil {
		return false, wrapErr("check user exists", err)
	}
	return exists, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, wrapErr("count users", err)
	}
	return total, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return wrapErr("update last login", err)
	}
	return nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, username, email, password_hash, role, active, created_at, updated_at) VALUES (:id, :username, :email, :password_hash, :role, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return wrapErr("create user", err)
	}
	return nil
}

// List returns accounts matching the filter, newest first, with the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return nil, 0, wrapErr("count users", err)
	}

	_, size, offset := models.PageBounds(filter.Page, filter.PageSize, 20, 100)
	args = append(args, size, offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, userColumns, where, len(args)-1, len(args))

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, wrapErr("list users", err)
	}
	return users, total, nil
}

// Update persists email, role and active flag.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return wrapWriteErr("update user", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, request_id, details, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :action, :resource, :resource_id, :request_id, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return wrapErr("create audit log", err)
	}
	return nil
}
