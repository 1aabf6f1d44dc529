package alert

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/shared"
)

// Service handles marketplace alert administration
type Service struct {
	alertRepo alert.Repository
	logger    *zap.Logger
}

// NewService creates a new alert service
func NewService(alertRepo alert.Repository, logger *zap.Logger) *Service {
	return &Service{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// Create creates a manual alert
func (s *Service) Create(ctx context.Context, input CreateAlertInput) (*AlertResponse, error) {
	a, err := alert.NewAlert(input.Category, input.Severity, input.Title, input.Message, input.ReferenceID)
	if err != nil {
		return nil, err
	}

	if err := s.alertRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Alert created",
		zap.String("alert_id", a.ID.String()),
		zap.String("category", string(a.Category)),
		zap.String("severity", string(a.Severity)),
		zap.String("title", a.Title))

	resp := ToAlertResponse(a)
	return &resp, nil
}

// Raise opens or refreshes the active alert for a category and source
// reference. Event handlers use it to stay idempotent per source: an existing
// non-resolved alert is refreshed instead of duplicated.
func (s *Service) Raise(ctx context.Context, input CreateAlertInput) (*AlertResponse, error) {
	if input.ReferenceID == nil {
		return s.Create(ctx, input)
	}

	existing, err := s.alertRepo.FindActiveByReference(ctx, input.Category, *input.ReferenceID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		return s.Create(ctx, input)
	}

	if err := existing.Refresh(input.Severity, input.Message); err != nil {
		return nil, err
	}

	if err := s.alertRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("Alert refreshed",
		zap.String("alert_id", existing.ID.String()),
		zap.String("category", string(existing.Category)),
		zap.String("severity", string(existing.Severity)))

	resp := ToAlertResponse(existing)
	return &resp, nil
}

// Acknowledge marks an alert as seen by an admin
func (s *Service) Acknowledge(ctx context.Context, input HandleAlertInput) (*AlertResponse, error) {
	return s.handle(ctx, input, func(a *alert.Alert) error {
		return a.Acknowledge(input.AdminID)
	})
}

// Resolve closes an alert
func (s *Service) Resolve(ctx context.Context, input HandleAlertInput) (*AlertResponse, error) {
	return s.handle(ctx, input, func(a *alert.Alert) error {
		return a.Resolve(input.AdminID)
	})
}

// Get retrieves an alert by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AlertResponse, error) {
	a, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToAlertResponse(a)
	return &resp, nil
}

// List returns alerts matching the filter
func (s *Service) List(ctx context.Context, input ListAlertsInput) (*AlertListResult, error) {
	filter := alert.NewFilter()
	filter.Status = input.Status
	filter.Category = input.Category
	filter.Severity = input.Severity
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	alerts, total, err := s.alertRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = ToAlertResponse(a)
	}

	return &AlertListResult{
		Alerts:   responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// CountActive returns the number of active alerts
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.alertRepo.CountActive(ctx)
}

func (s *Service) handle(ctx context.Context, input HandleAlertInput, transition func(*alert.Alert) error) (*AlertResponse, error) {
	a, err := s.alertRepo.FindByID(ctx, input.AlertID)
	if err != nil {
		return nil, err
	}

	if err := transition(a); err != nil {
		return nil, err
	}

	if err := s.alertRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Alert status changed",
		zap.String("alert_id", a.ID.String()),
		zap.String("status", string(a.Status)),
		zap.String("admin_id", input.AdminID.String()))

	resp := ToAlertResponse(a)
	return &resp, nil
}
