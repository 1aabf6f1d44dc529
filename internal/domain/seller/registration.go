package seller

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
)

// RegistrationStatus represents the status of a seller registration request
type RegistrationStatus string

const (
	RegistrationStatusPending     RegistrationStatus = "pending"
	RegistrationStatusUnderReview RegistrationStatus = "under_review"
	RegistrationStatusApproved    RegistrationStatus = "approved"
	RegistrationStatusRejected    RegistrationStatus = "rejected"
)

// IsValid checks if the status is a valid RegistrationStatus
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusUnderReview,
		RegistrationStatusApproved, RegistrationStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of RegistrationStatus
func (s RegistrationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RegistrationStatus) CanTransitionTo(target RegistrationStatus) bool {
	switch s {
	case RegistrationStatusPending:
		return target == RegistrationStatusUnderReview || target == RegistrationStatusApproved || target == RegistrationStatusRejected
	case RegistrationStatusUnderReview:
		return target == RegistrationStatusApproved || target == RegistrationStatusRejected
	case RegistrationStatusApproved, RegistrationStatusRejected:
		return false // Terminal states
	}
	return false
}

// IsLive returns true while the request blocks a new submission from the same applicant.
// Rejected applicants may reapply.
func (s RegistrationStatus) IsLive() bool {
	return s != RegistrationStatusRejected
}

// RegistrationRequest represents an application to become a seller.
// It is the aggregate root for the registration review workflow.
type RegistrationRequest struct {
	shared.BaseAggregateRoot
	ApplicantID     uuid.UUID
	BusinessName    string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	MarketSection   string
	StallNumber     string
	DocumentKeys    []string // Object storage keys of verification documents
	Status          RegistrationStatus
	ReviewerID      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason string
}

// NewRegistrationRequest creates a new pending registration request
func NewRegistrationRequest(applicantID uuid.UUID, businessName, contactName, contactPhone, contactEmail, marketSection, stallNumber string) (*RegistrationRequest, error) {
	if applicantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPLICANT", "Applicant ID cannot be empty")
	}
	if err := validateBusinessName(businessName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(contactName) == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact name cannot be empty")
	}
	if strings.TrimSpace(contactPhone) == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact phone cannot be empty")
	}
	if strings.TrimSpace(marketSection) == "" {
		return nil, shared.NewDomainError("INVALID_MARKET_SECTION", "Market section cannot be empty")
	}

	req := &RegistrationRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApplicantID:       applicantID,
		BusinessName:      strings.TrimSpace(businessName),
		ContactName:       strings.TrimSpace(contactName),
		ContactPhone:      strings.TrimSpace(contactPhone),
		ContactEmail:      strings.TrimSpace(contactEmail),
		MarketSection:     strings.TrimSpace(marketSection),
		StallNumber:       strings.TrimSpace(stallNumber),
		DocumentKeys:      make([]string, 0),
		Status:            RegistrationStatusPending,
	}

	req.AddDomainEvent(NewRegistrationSubmittedEvent(req))

	return req, nil
}

// AddDocument attaches a verification document key to the request
func (r *RegistrationRequest) AddDocument(key string) error {
	if strings.TrimSpace(key) == "" {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document key cannot be empty")
	}
	if r.Status == RegistrationStatusApproved || r.Status == RegistrationStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Cannot attach documents to a reviewed request")
	}

	for _, k := range r.DocumentKeys {
		if k == key {
			return shared.NewDomainError("ALREADY_EXISTS", "Document is already attached")
		}
	}

	r.DocumentKeys = append(r.DocumentKeys, key)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// StartReview moves the request to under_review
func (r *RegistrationRequest) StartReview(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID cannot be empty")
	}
	if !r.Status.CanTransitionTo(RegistrationStatusUnderReview) {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can enter review")
	}

	r.Status = RegistrationStatusUnderReview
	r.ReviewerID = &reviewerID
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Approve approves the request. The seller profile is created by the application
// service in the same transaction.
func (r *RegistrationRequest) Approve(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID cannot be empty")
	}
	if !r.Status.CanTransitionTo(RegistrationStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", "Request cannot be approved in its current state")
	}

	now := time.Now()
	r.Status = RegistrationStatusApproved
	r.ReviewerID = &reviewerID
	r.ReviewedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationApprovedEvent(r))

	return nil
}

// Reject rejects the request with a reason
func (r *RegistrationRequest) Reject(reviewerID uuid.UUID, reason string) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason cannot be empty")
	}
	if !r.Status.CanTransitionTo(RegistrationStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", "Request cannot be rejected in its current state")
	}

	now := time.Now()
	r.Status = RegistrationStatusRejected
	r.ReviewerID = &reviewerID
	r.ReviewedAt = &now
	r.RejectionReason = strings.TrimSpace(reason)
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationRejectedEvent(r))

	return nil
}

// IsLive returns true while the request blocks a new submission from the same applicant
func (r *RegistrationRequest) IsLive() bool {
	return r.Status.IsLive()
}

func validateBusinessName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}
	return nil
}
