package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleStaff  UserRole = "staff"
	RoleViewer UserRole = "viewer"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// PageBounds normalises paging input and returns limit/offset.
func PageBounds(page, size, defaultSize, maxSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	return page, size, (page - 1) * size
}

// UserFilter narrows the account list.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// UserUpdateRequest changes an account's email, role or active flag.
type UserUpdateRequest struct {
	Email  *string   `json:"email" validate:"omitnil,email"`
	Role   *UserRole `json:"role" validate:"omitempty,oneof=admin staff viewer"`
	Active *bool     `json:"active"`
}
