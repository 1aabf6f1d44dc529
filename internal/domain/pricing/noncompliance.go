package pricing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NonComplianceStatus represents the status of a non-compliance record
type NonComplianceStatus string

const (
	NonComplianceStatusOpen     NonComplianceStatus = "open"
	NonComplianceStatusResolved NonComplianceStatus = "resolved"
	NonComplianceStatusWaived   NonComplianceStatus = "waived"
)

// IsValid checks if the status is a valid NonComplianceStatus
func (s NonComplianceStatus) IsValid() bool {
	switch s {
	case NonComplianceStatusOpen, NonComplianceStatusResolved, NonComplianceStatusWaived:
		return true
	}
	return false
}

// String returns the string representation of NonComplianceStatus
func (s NonComplianceStatus) String() string {
	return string(s)
}

// NonComplianceRecord represents a detected price ceiling violation.
// It is the aggregate root for violation handling.
type NonComplianceRecord struct {
	shared.BaseAggregateRoot
	SellerID       uuid.UUID
	ListingID      uuid.UUID
	CeilingID      uuid.UUID
	ProductCode    string
	ListedPrice    decimal.Decimal
	CeilingPrice   decimal.Decimal // Ceiling price at detection time
	ExcessPercent  decimal.Decimal
	Status         NonComplianceStatus
	DetectedAt     time.Time
	ResolvedBy     *uuid.UUID
	ResolvedAt     *time.Time
	ResolutionNote string
}

// ExcessPercent computes how far a listed price exceeds a ceiling, in percent,
// rounded to 2 decimal places.
func ExcessPercent(listed, ceiling decimal.Decimal) decimal.Decimal {
	if ceiling.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return listed.Sub(ceiling).Div(ceiling).Mul(decimal.NewFromInt(100)).Round(2)
}

// NewNonComplianceRecord opens a record for a listing violating a ceiling
func NewNonComplianceRecord(listing *Listing, ceiling *Ceiling) (*NonComplianceRecord, error) {
	if listing == nil || ceiling == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Listing and ceiling are required")
	}
	if !listing.ExceedsCeiling(ceiling) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Listing does not exceed the ceiling")
	}

	record := &NonComplianceRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          listing.SellerID,
		ListingID:         listing.ID,
		CeilingID:         ceiling.ID,
		ProductCode:       listing.ProductCode,
		ListedPrice:       listing.ListedPrice,
		CeilingPrice:      ceiling.CeilingPrice,
		ExcessPercent:     ExcessPercent(listing.ListedPrice, ceiling.CeilingPrice),
		Status:            NonComplianceStatusOpen,
		DetectedAt:        time.Now(),
	}

	record.AddDomainEvent(NewNonComplianceRecordedEvent(record))

	return record, nil
}

// Refresh updates an open record with the latest observed prices.
// Keeps the scan idempotent: one open record per listing.
func (r *NonComplianceRecord) Refresh(listed, ceilingPrice decimal.Decimal) error {
	if r.Status != NonComplianceStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open records can be refreshed")
	}

	r.ListedPrice = listed
	r.CeilingPrice = ceilingPrice
	r.ExcessPercent = ExcessPercent(listed, ceilingPrice)
	r.DetectedAt = time.Now()
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Resolve closes the record as corrected
func (r *NonComplianceRecord) Resolve(adminID uuid.UUID, note string) error {
	return r.close(adminID, note, NonComplianceStatusResolved)
}

// Waive closes the record without requiring correction
func (r *NonComplianceRecord) Waive(adminID uuid.UUID, note string) error {
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("INVALID_REASON", "Waiving requires a note")
	}
	return r.close(adminID, note, NonComplianceStatusWaived)
}

func (r *NonComplianceRecord) close(adminID uuid.UUID, note string, status NonComplianceStatus) error {
	if adminID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Admin ID cannot be empty")
	}
	if r.Status != NonComplianceStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Record is already closed")
	}

	now := time.Now()
	r.Status = status
	r.ResolvedBy = &adminID
	r.ResolvedAt = &now
	r.ResolutionNote = strings.TrimSpace(note)
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// IsOpen returns true if the record is open
func (r *NonComplianceRecord) IsOpen() bool {
	return r.Status == NonComplianceStatusOpen
}
