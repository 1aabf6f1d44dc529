package seller

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProfileStatus represents the status of a seller profile
type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusSuspended ProfileStatus = "suspended"
	ProfileStatusBanned    ProfileStatus = "banned"
)

// IsValid checks if the status is a valid ProfileStatus
func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusActive, ProfileStatusSuspended, ProfileStatusBanned:
		return true
	}
	return false
}

// String returns the string representation of ProfileStatus
func (s ProfileStatus) String() string {
	return string(s)
}

// SellerCodePrefix is the prefix of generated seller codes
const SellerCodePrefix = "SLR-"

// FormatSellerCode formats a sequence number as a seller code
func FormatSellerCode(seq int64) string {
	return fmt.Sprintf("%s%06d", SellerCodePrefix, seq)
}

// Profile represents an approved marketplace seller.
// It is the aggregate root for seller lifecycle and performance tracking.
type Profile struct {
	shared.BaseAggregateRoot
	SellerCode      string
	ApplicantID     uuid.UUID
	RegistrationID  uuid.UUID
	BusinessName    string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	MarketSection   string
	StallNumber     string
	Status          ProfileStatus
	Rating          decimal.Decimal // 0 to 5, unrated sellers stay at 0
	RatingCount     int64
	OrdersFulfilled int64
	OrdersTotal     int64
	StatusReason    string
}

// NewProfileFromRegistration creates an active seller profile from an approved registration
func NewProfileFromRegistration(sellerCode string, req *RegistrationRequest) (*Profile, error) {
	if strings.TrimSpace(sellerCode) == "" {
		return nil, shared.NewDomainError("INVALID_SELLER_CODE", "Seller code cannot be empty")
	}
	if req == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Registration request is required")
	}
	if req.Status != RegistrationStatusApproved {
		return nil, shared.NewDomainError("INVALID_STATE", "Profile can only be created from an approved registration")
	}

	profile := &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerCode:        sellerCode,
		ApplicantID:       req.ApplicantID,
		RegistrationID:    req.ID,
		BusinessName:      req.BusinessName,
		ContactName:       req.ContactName,
		ContactPhone:      req.ContactPhone,
		ContactEmail:      req.ContactEmail,
		MarketSection:     req.MarketSection,
		StallNumber:       req.StallNumber,
		Status:            ProfileStatusActive,
		Rating:            decimal.Zero,
	}

	profile.AddDomainEvent(NewSellerApprovedEvent(profile))

	return profile, nil
}

// Suspend suspends the seller
func (p *Profile) Suspend(reason string) error {
	if p.Status == ProfileStatusBanned {
		return shared.NewDomainError("INVALID_STATE", "Banned sellers cannot be suspended")
	}
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Seller is already suspended")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Suspension reason cannot be empty")
	}

	p.Status = ProfileStatusSuspended
	p.StatusReason = strings.TrimSpace(reason)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewSellerStatusChangedEvent(p, ProfileStatusActive, ProfileStatusSuspended))

	return nil
}

// Reinstate returns a suspended seller to active
func (p *Profile) Reinstate() error {
	if p.Status != ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended sellers can be reinstated")
	}

	p.Status = ProfileStatusActive
	p.StatusReason = ""
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewSellerStatusChangedEvent(p, ProfileStatusSuspended, ProfileStatusActive))

	return nil
}

// Ban permanently bans the seller
func (p *Profile) Ban(reason string) error {
	if p.Status == ProfileStatusBanned {
		return shared.NewDomainError("ALREADY_BANNED", "Seller is already banned")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Ban reason cannot be empty")
	}

	oldStatus := p.Status
	p.Status = ProfileStatusBanned
	p.StatusReason = strings.TrimSpace(reason)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewSellerStatusChangedEvent(p, oldStatus, ProfileStatusBanned))

	return nil
}

// SetRating sets the seller's rating (0 to 5)
func (p *Profile) SetRating(rating decimal.Decimal) error {
	if rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
	}

	p.Rating = rating.Round(2)
	p.RatingCount++
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RecordFulfillment records the outcome of an order
func (p *Profile) RecordFulfillment(fulfilled bool) {
	p.OrdersTotal++
	if fulfilled {
		p.OrdersFulfilled++
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// FulfillmentRate returns the fulfillment percentage (0 to 100).
// Sellers with no orders default to 100.
func (p *Profile) FulfillmentRate() decimal.Decimal {
	if p.OrdersTotal == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(p.OrdersFulfilled).
		Div(decimal.NewFromInt(p.OrdersTotal)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// IsActive returns true if the seller is active
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}
