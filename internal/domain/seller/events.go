package seller

import (
	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeRegistration = "SellerRegistrationRequest"
	AggregateTypeProfile      = "SellerProfile"
)

// Seller domain event types
const (
	EventTypeRegistrationSubmitted = "SellerRegistrationSubmitted"
	EventTypeRegistrationApproved  = "SellerRegistrationApproved"
	EventTypeRegistrationRejected  = "SellerRegistrationRejected"
	EventTypeSellerApproved        = "SellerApproved"
	EventTypeSellerStatusChanged   = "SellerStatusChanged"
)

// RegistrationSubmittedEvent is published when a registration request is submitted
type RegistrationSubmittedEvent struct {
	shared.BaseDomainEvent
	ApplicantID   uuid.UUID `json:"applicant_id"`
	BusinessName  string    `json:"business_name"`
	MarketSection string    `json:"market_section"`
}

// NewRegistrationSubmittedEvent creates a new RegistrationSubmittedEvent
func NewRegistrationSubmittedEvent(req *RegistrationRequest) *RegistrationSubmittedEvent {
	return &RegistrationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationSubmitted, AggregateTypeRegistration, req.ID),
		ApplicantID:     req.ApplicantID,
		BusinessName:    req.BusinessName,
		MarketSection:   req.MarketSection,
	}
}

// RegistrationApprovedEvent is published when a registration request is approved
type RegistrationApprovedEvent struct {
	shared.BaseDomainEvent
	ApplicantID  uuid.UUID `json:"applicant_id"`
	BusinessName string    `json:"business_name"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
}

// NewRegistrationApprovedEvent creates a new RegistrationApprovedEvent
func NewRegistrationApprovedEvent(req *RegistrationRequest) *RegistrationApprovedEvent {
	evt := &RegistrationApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationApproved, AggregateTypeRegistration, req.ID),
		ApplicantID:     req.ApplicantID,
		BusinessName:    req.BusinessName,
	}
	if req.ReviewerID != nil {
		evt.ReviewerID = *req.ReviewerID
	}
	return evt
}

// RegistrationRejectedEvent is published when a registration request is rejected
type RegistrationRejectedEvent struct {
	shared.BaseDomainEvent
	ApplicantID uuid.UUID `json:"applicant_id"`
	Reason      string    `json:"reason"`
}

// NewRegistrationRejectedEvent creates a new RegistrationRejectedEvent
func NewRegistrationRejectedEvent(req *RegistrationRequest) *RegistrationRejectedEvent {
	return &RegistrationRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationRejected, AggregateTypeRegistration, req.ID),
		ApplicantID:     req.ApplicantID,
		Reason:          req.RejectionReason,
	}
}

// SellerApprovedEvent is published when a seller profile is created from an approved registration
type SellerApprovedEvent struct {
	shared.BaseDomainEvent
	SellerCode   string    `json:"seller_code"`
	ApplicantID  uuid.UUID `json:"applicant_id"`
	BusinessName string    `json:"business_name"`
}

// NewSellerApprovedEvent creates a new SellerApprovedEvent
func NewSellerApprovedEvent(profile *Profile) *SellerApprovedEvent {
	return &SellerApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSellerApproved, AggregateTypeProfile, profile.ID),
		SellerCode:      profile.SellerCode,
		ApplicantID:     profile.ApplicantID,
		BusinessName:    profile.BusinessName,
	}
}

// SellerStatusChangedEvent is published when a seller profile's status changes
type SellerStatusChangedEvent struct {
	shared.BaseDomainEvent
	SellerCode string        `json:"seller_code"`
	OldStatus  ProfileStatus `json:"old_status"`
	NewStatus  ProfileStatus `json:"new_status"`
	Reason     string        `json:"reason"`
}

// NewSellerStatusChangedEvent creates a new SellerStatusChangedEvent
func NewSellerStatusChangedEvent(profile *Profile, oldStatus, newStatus ProfileStatus) *SellerStatusChangedEvent {
	return &SellerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSellerStatusChanged, AggregateTypeProfile, profile.ID),
		SellerCode:      profile.SellerCode,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		Reason:          profile.StatusReason,
	}
}
