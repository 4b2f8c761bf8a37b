package entity

import (
	"encoding/json"
	"time"
)

// Tipos y severidades de alertas del sistema de inventario.
const (
	AlertTypeDeductionFailure = "inventory_deduction_failure"
	AlertTypeCriticalFailure  = "critical_system_failure"

	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"

	AuditOperationDeduction = "deduction"
	AuditStatusSuccess      = "success"
)

// SystemAlert alerta persistida para seguimiento manual (tabla system_alerts).
type SystemAlert struct {
	ID         string
	AlertType  string
	Severity   string
	Title      string
	Message    string
	Metadata   json.RawMessage
	IsResolved bool
	CreatedAt  time.Time
}

// DeductionAudit registro de descuento exitoso (tabla inventory_audit_log).
type DeductionAudit struct {
	ID             string
	ReferenceID    string
	OperationType  string
	Status         string
	ItemsProcessed int
	Metadata       json.RawMessage
	CreatedAt      time.Time
}
