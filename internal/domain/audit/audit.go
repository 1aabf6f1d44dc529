// Package audit provides the append-only admin action log. Entries are never
// updated or deleted; the repository exposes Append and read queries only.
package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
)

// Entry is a single immutable audit log record
type Entry struct {
	ID            uuid.UUID
	AdminID       uuid.UUID
	AdminUsername string
	Action        string // Verb, e.g. "approve_registration"
	ObjectType    string // e.g. "SellerRegistrationRequest"
	ObjectID      *uuid.UUID
	Detail        map[string]interface{}
	RequestID     string
	CreatedAt     time.Time
}

// NewEntry creates a new audit log entry
func NewEntry(adminID uuid.UUID, adminUsername, action, objectType string, objectID *uuid.UUID, detail map[string]interface{}, requestID string) (*Entry, error) {
	if adminID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Admin ID cannot be empty")
	}
	if strings.TrimSpace(action) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action cannot be empty")
	}
	if strings.TrimSpace(objectType) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Object type cannot be empty")
	}

	return &Entry{
		ID:            uuid.New(),
		AdminID:       adminID,
		AdminUsername: adminUsername,
		Action:        strings.TrimSpace(action),
		ObjectType:    strings.TrimSpace(objectType),
		ObjectID:      objectID,
		Detail:        detail,
		RequestID:     requestID,
		CreatedAt:     time.Now(),
	}, nil
}
