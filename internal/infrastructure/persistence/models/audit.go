package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for the audit log Entry.
// The table is append-only: rows are inserted and read, never updated.
type AuditLogModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	AdminID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	AdminUsername string     `gorm:"type:varchar(100);not null"`
	Action        string     `gorm:"type:varchar(100);not null;index"`
	ObjectType    string     `gorm:"type:varchar(100);not null;index"`
	ObjectID      *uuid.UUID `gorm:"type:uuid;index"`
	Detail        string     `gorm:"type:jsonb"`
	RequestID     string     `gorm:"type:varchar(64)"`
	CreatedAt     time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_log_entries"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() *audit.Entry {
	var detail map[string]interface{}
	if m.Detail != "" {
		_ = json.Unmarshal([]byte(m.Detail), &detail)
	}

	return &audit.Entry{
		ID:            m.ID,
		AdminID:       m.AdminID,
		AdminUsername: m.AdminUsername,
		Action:        m.Action,
		ObjectType:    m.ObjectType,
		ObjectID:      m.ObjectID,
		Detail:        detail,
		RequestID:     m.RequestID,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain audit Entry.
func (m *AuditLogModel) FromDomain(e *audit.Entry) {
	m.ID = e.ID
	m.AdminID = e.AdminID
	m.AdminUsername = e.AdminUsername
	m.Action = e.Action
	m.ObjectType = e.ObjectType
	m.ObjectID = e.ObjectID
	m.RequestID = e.RequestID
	m.CreatedAt = e.CreatedAt

	if e.Detail != nil {
		if data, err := json.Marshal(e.Detail); err == nil {
			m.Detail = string(data)
		}
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	m := &AuditLogModel{}
	m.FromDomain(e)
	return m
}
