package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/audit"
)

// RecordInput contains the input for appending an audit log entry
type RecordInput struct {
	AdminID       uuid.UUID
	AdminUsername string
	Action        string
	ObjectType    string
	ObjectID      *uuid.UUID
	Detail        map[string]interface{}
	RequestID     string
}

// EntryResponse is the DTO representation of an audit log entry
type EntryResponse struct {
	ID            uuid.UUID
	AdminID       uuid.UUID
	AdminUsername string
	Action        string
	ObjectType    string
	ObjectID      *uuid.UUID
	Detail        map[string]interface{}
	RequestID     string
	CreatedAt     time.Time
}

// ToEntryResponse converts a domain entry to its DTO
func ToEntryResponse(entry *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:            entry.ID,
		AdminID:       entry.AdminID,
		AdminUsername: entry.AdminUsername,
		Action:        entry.Action,
		ObjectType:    entry.ObjectType,
		ObjectID:      entry.ObjectID,
		Detail:        entry.Detail,
		RequestID:     entry.RequestID,
		CreatedAt:     entry.CreatedAt,
	}
}

// ListEntriesInput contains the input for listing audit log entries
type ListEntriesInput struct {
	AdminID    *uuid.UUID
	Action     string
	ObjectType string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// EntryListResult contains a page of audit log entries
type EntryListResult struct {
	Entries  []EntryResponse
	Total    int64
	Page     int
	PageSize int
}
