package models

import "time"

// Audit action values recorded by the audit service.
const (
	AuditActionExport           = "property.export"
	AuditActionPaymentConfirmed = "payment.confirmed"
	AuditActionPropertyDeleted  = "property.deleted"
	AuditActionRoleGranted      = "user.role_granted"
)

// AuditLog is an append-only record of a sensitive operation (exports,
// confirmed payments, cascade deletes, role grants).
type AuditLog struct {
	ID         string    `json:"id" firestore:"-"`
	UserID     string    `json:"userId" firestore:"userId"`
	Action     string    `json:"action" firestore:"action"`
	TargetType string    `json:"targetType" firestore:"targetType"`
	TargetID   string    `json:"targetId" firestore:"targetId"`
	Details    string    `json:"details,omitempty" firestore:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
}
