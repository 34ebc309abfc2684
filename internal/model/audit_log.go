package model

import "time"

type AuditLevel string

const (
	AuditLevelInfo     AuditLevel = "info"
	AuditLevelWarning  AuditLevel = "warning"
	AuditLevelCritical AuditLevel = "critical"
)

// AuditLog is an append-only record of a portal action.
type AuditLog struct {
	ID        string     `json:"id"`
	Actor     string     `json:"actor"`
	Action    string     `json:"action"`
	Details   string     `json:"details"`
	Level     AuditLevel `json:"level"`
	Timestamp time.Time  `json:"timestamp"`
}
