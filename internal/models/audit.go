package models

import "time"

const (
	AuditActionLogin                    = "LOGIN"
	AuditActionLogout                   = "LOGOUT"
	AuditActionRegistrationStatusChange = "REGISTRATION_STATUS_CHANGE"
	AuditActionTicketRequeue            = "TICKET_REQUEUE"
	AuditActionDecisionExport           = "ENTRY_DECISION_EXPORT"
	AuditActionDecisionReview           = "ENTRY_DECISION_REVIEW"
	AuditActionStaffCreate              = "STAFF_CREATE"
	AuditActionStaffUpdate              = "STAFF_UPDATE"
)

// AuditLog records an administrative action. Gate decisions live in
// entry_decisions, not here.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
