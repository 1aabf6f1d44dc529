package pricing

import (
	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeCeiling       = "PriceCeiling"
	AggregateTypeListing       = "ProductListing"
	AggregateTypeNonCompliance = "NonComplianceRecord"
)

// Pricing domain event types
const (
	EventTypeNonComplianceRecorded = "NonComplianceRecorded"
)

// NonComplianceRecordedEvent is published when a price ceiling violation is detected
type NonComplianceRecordedEvent struct {
	shared.BaseDomainEvent
	RecordID      uuid.UUID       `json:"record_id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	ListingID     uuid.UUID       `json:"listing_id"`
	ProductCode   string          `json:"product_code"`
	ListedPrice   decimal.Decimal `json:"listed_price"`
	CeilingPrice  decimal.Decimal `json:"ceiling_price"`
	ExcessPercent decimal.Decimal `json:"excess_percent"`
}

// NewNonComplianceRecordedEvent creates a new NonComplianceRecordedEvent
func NewNonComplianceRecordedEvent(record *NonComplianceRecord) *NonComplianceRecordedEvent {
	return &NonComplianceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNonComplianceRecorded, AggregateTypeNonCompliance, record.ID),
		RecordID:        record.ID,
		SellerID:        record.SellerID,
		ListingID:       record.ListingID,
		ProductCode:     record.ProductCode,
		ListedPrice:     record.ListedPrice,
		CeilingPrice:    record.CeilingPrice,
		ExcessPercent:   record.ExcessPercent,
	}
}
