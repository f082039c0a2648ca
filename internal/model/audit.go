package model

import "time"

// AuditEvent records an access to sensitive data or a session change.
type AuditEvent struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID *int64    `json:"resourceId" db:"resource_id"`
	IPAddress  string    `json:"ipAddress" db:"ip_address"`
	UserAgent  string    `json:"userAgent" db:"user_agent"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate   = "create"
	AuditActionRead     = "read"
	AuditActionList     = "list"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionActivate = "activate"
	AuditActionRevoke   = "deactivate"
	AuditActionAccess   = "emergency_access"
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"

	// Resource types
	AuditResourceSession       = "session"
	AuditResourceMedicalRecord = "medical_record"
	AuditResourceSosContract   = "sos_contract"

	AuditStatusSuccess = "success"
	AuditStatusDenied  = "denied"
)
