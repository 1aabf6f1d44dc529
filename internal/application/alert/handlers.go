package alert

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
)

// criticalExcessPercent is the violation margin above which a price alert
// escalates from warning to critical.
var criticalExcessPercent = decimal.NewFromInt(50)

// NonComplianceRecordedHandler raises a price violation alert whenever a
// ceiling violation is recorded.
type NonComplianceRecordedHandler struct {
	alerts *Service
	logger *zap.Logger
}

// NewNonComplianceRecordedHandler creates a new handler for non-compliance events
func NewNonComplianceRecordedHandler(alerts *Service, logger *zap.Logger) *NonComplianceRecordedHandler {
	return &NonComplianceRecordedHandler{
		alerts: alerts,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NonComplianceRecordedHandler) EventTypes() []string {
	return []string{pricing.EventTypeNonComplianceRecorded}
}

// Handle raises or refreshes the price violation alert for the record
func (h *NonComplianceRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*pricing.NonComplianceRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			pricing.EventTypeNonComplianceRecorded, event.EventType())
	}

	severity := alert.SeverityWarning
	if recorded.ExcessPercent.GreaterThanOrEqual(criticalExcessPercent) {
		severity = alert.SeverityCritical
	}

	referenceID := recorded.RecordID
	_, err := h.alerts.Raise(ctx, CreateAlertInput{
		Category: alert.CategoryPriceViolation,
		Severity: severity,
		Title:    fmt.Sprintf("Price ceiling violation: %s", recorded.ProductCode),
		Message: fmt.Sprintf("Listed at %s against a ceiling of %s (%s%% over)",
			recorded.ListedPrice.String(), recorded.CeilingPrice.String(), recorded.ExcessPercent.String()),
		ReferenceID: &referenceID,
	})
	if err != nil {
		h.logger.Error("Failed to raise price violation alert",
			zap.String("record_id", recorded.RecordID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

// LowStockDetectedHandler raises a low stock alert when inventory crosses
// below its minimum threshold.
type LowStockDetectedHandler struct {
	alerts *Service
	logger *zap.Logger
}

// NewLowStockDetectedHandler creates a new handler for low stock events
func NewLowStockDetectedHandler(alerts *Service, logger *zap.Logger) *LowStockDetectedHandler {
	return &LowStockDetectedHandler{
		alerts: alerts,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockDetectedHandler) EventTypes() []string {
	return []string{opas.EventTypeLowStockDetected}
}

// Handle raises or refreshes the low stock alert for the inventory item
func (h *LowStockDetectedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	detected, ok := event.(*opas.LowStockDetectedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			opas.EventTypeLowStockDetected, event.EventType())
	}

	referenceID := detected.ItemID
	_, err := h.alerts.Raise(ctx, CreateAlertInput{
		Category: alert.CategoryLowStock,
		Severity: alert.SeverityWarning,
		Title:    fmt.Sprintf("Low stock: %s", detected.ProductName),
		Message: fmt.Sprintf("%s on hand is %s, below the minimum of %s",
			detected.ProductCode, detected.Quantity.String(), detected.MinThreshold.String()),
		ReferenceID: &referenceID,
	})
	if err != nil {
		h.logger.Error("Failed to raise low stock alert",
			zap.String("product_code", detected.ProductCode),
			zap.Error(err))
		return err
	}

	return nil
}

// RegistrationSubmittedHandler raises an informational alert when a new seller
// registration lands in the review queue.
type RegistrationSubmittedHandler struct {
	alerts *Service
	logger *zap.Logger
}

// NewRegistrationSubmittedHandler creates a new handler for registration events
func NewRegistrationSubmittedHandler(alerts *Service, logger *zap.Logger) *RegistrationSubmittedHandler {
	return &RegistrationSubmittedHandler{
		alerts: alerts,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *RegistrationSubmittedHandler) EventTypes() []string {
	return []string{seller.EventTypeRegistrationSubmitted}
}

// Handle raises a registration alert for the submitted request
func (h *RegistrationSubmittedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submitted, ok := event.(*seller.RegistrationSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			seller.EventTypeRegistrationSubmitted, event.EventType())
	}

	referenceID := submitted.AggregateID()
	_, err := h.alerts.Raise(ctx, CreateAlertInput{
		Category: alert.CategoryRegistration,
		Severity: alert.SeverityInfo,
		Title:    fmt.Sprintf("New seller registration: %s", submitted.BusinessName),
		Message: fmt.Sprintf("%s applied for market section %s and awaits review",
			submitted.BusinessName, submitted.MarketSection),
		ReferenceID: &referenceID,
	})
	if err != nil {
		h.logger.Error("Failed to raise registration alert",
			zap.String("registration_id", referenceID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

var (
	_ shared.EventHandler = (*NonComplianceRecordedHandler)(nil)
	_ shared.EventHandler = (*LowStockDetectedHandler)(nil)
	_ shared.EventHandler = (*RegistrationSubmittedHandler)(nil)
)
