package models

import "time"

const (
	AuditActionLogin            = "LOGIN"
	AuditActionLogout           = "LOGOUT"
	AuditActionUserCreate       = "USER_CREATE"
	AuditActionUserUpdate       = "USER_UPDATE"
	AuditActionUserDelete       = "USER_DELETE"
	AuditActionPasswordChange   = "PASSWORD_CHANGE"
	AuditActionCalendarSync     = "CALENDAR_SYNC"
	AuditActionAvailability     = "AVAILABILITY_CHANGE"
	AuditActionPermissionUpdate = "PERMISSION_UPDATE"
	AuditActionPaymentCreate    = "PAYMENT_CREATE"
	AuditActionAdjustmentPost   = "ADJUSTMENT_POST"
	AuditActionReportTrigger    = "REPORT_TRIGGER"
	AuditActionExportDownload   = "EXPORT_DOWNLOAD"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *int64    `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RequestMeta carries the client details recorded on audit rows.
type RequestMeta struct {
	IP        string
	UserAgent string
}
