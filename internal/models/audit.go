package models

import "time"

// Audit actions.
const (
	AuditActionLogin    = "LOGIN"
	AuditActionLogout   = "LOGOUT"
	AuditActionRegister = "REGISTER"
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
)

// AuditLog is one row of the write trail. Details holds the route, status
// and latency of the request as JSON.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	RequestID  string    `db:"request_id" json:"requestId,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
