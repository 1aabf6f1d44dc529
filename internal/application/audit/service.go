package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/audit"
)

// Service appends and queries the admin audit log. The log is append-only;
// there is nothing here that mutates an existing entry.
type Service struct {
	auditRepo audit.Repository
	logger    *zap.Logger
}

// NewService creates a new audit service
func NewService(auditRepo audit.Repository, logger *zap.Logger) *Service {
	return &Service{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends an entry for an admin mutation. Failures are surfaced to the
// caller but should not abort the mutation that was already applied.
func (s *Service) Record(ctx context.Context, input RecordInput) (*EntryResponse, error) {
	entry, err := audit.NewEntry(
		input.AdminID,
		input.AdminUsername,
		input.Action,
		input.ObjectType,
		input.ObjectID,
		input.Detail,
		input.RequestID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append audit entry",
			zap.String("action", input.Action),
			zap.String("object_type", input.ObjectType),
			zap.Error(err))
		return nil, err
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Get retrieves an audit entry by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.auditRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// List returns audit entries matching the filter
func (s *Service) List(ctx context.Context, input ListEntriesInput) (*EntryListResult, error) {
	filter := audit.NewFilter()
	filter.AdminID = input.AdminID
	filter.Action = input.Action
	filter.ObjectType = input.ObjectType
	filter.From = input.From
	filter.To = input.To
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}

	entries, total, err := s.auditRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToEntryResponse(entry)
	}

	return &EntryListResult{
		Entries:  responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Count returns the number of entries matching the filter
func (s *Service) Count(ctx context.Context, input ListEntriesInput) (int64, error) {
	filter := audit.NewFilter()
	filter.AdminID = input.AdminID
	filter.Action = input.Action
	filter.ObjectType = input.ObjectType
	filter.From = input.From
	filter.To = input.To

	return s.auditRepo.Count(ctx, filter)
}
