package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions
const (
	AuditCreate       = "CREATE"
	AuditUpdate       = "UPDATE"
	AuditToggleHidden = "TOGGLE_HIDDEN"
	AuditSoftDelete   = "SOFT_DELETE"
	AuditRestore      = "RESTORE"
	AuditAdd          = "ADD"
	AuditDelete       = "DELETE"
	AuditStatusUpdate = "STATUS_UPDATE"
	AuditMemoUpdate   = "MEMO_UPDATE"
	AuditUpsert       = "UPSERT"
)

// AuditStatus is the action recorded for a task status transition.
func AuditStatus(status string) string {
	return "STATUS_" + status
}

// AuditLog records a before/after snapshot of every store mutation.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EntityType string         `gorm:"not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint           `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Action     string         `gorm:"not null" json:"action"`
	Before     datatypes.JSON `gorm:"column:before_json" json:"before,omitempty"`
	After      datatypes.JSON `gorm:"column:after_json" json:"after,omitempty"`
	Timestamp  time.Time      `gorm:"column:ts;autoCreateTime" json:"ts"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit entity types beyond those in EntityRef.
const (
	EntityTypePhoto = "PHOTO"
	EntityTypeTask  = "TASK"
)
