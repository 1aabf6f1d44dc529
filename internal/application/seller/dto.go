package seller

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/seller"
)

// SubmitRegistrationInput contains the input for submitting a registration request
type SubmitRegistrationInput struct {
	ApplicantID   uuid.UUID
	BusinessName  string
	ContactName   string
	ContactPhone  string
	ContactEmail  string
	MarketSection string
	StallNumber   string
}

// RegistrationResponse is the DTO representation of a registration request
type RegistrationResponse struct {
	ID              uuid.UUID
	ApplicantID     uuid.UUID
	BusinessName    string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	MarketSection   string
	StallNumber     string
	DocumentKeys    []string
	Status          seller.RegistrationStatus
	ReviewerID      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToRegistrationResponse converts a domain registration request to its DTO
func ToRegistrationResponse(req *seller.RegistrationRequest) RegistrationResponse {
	return RegistrationResponse{
		ID:              req.ID,
		ApplicantID:     req.ApplicantID,
		BusinessName:    req.BusinessName,
		ContactName:     req.ContactName,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		MarketSection:   req.MarketSection,
		StallNumber:     req.StallNumber,
		DocumentKeys:    req.DocumentKeys,
		Status:          req.Status,
		ReviewerID:      req.ReviewerID,
		ReviewedAt:      req.ReviewedAt,
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}

// ListRegistrationsInput contains the input for listing registration requests
type ListRegistrationsInput struct {
	Keyword   string
	Status    *seller.RegistrationStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RegistrationListResult contains a page of registration requests
type RegistrationListResult struct {
	Requests []RegistrationResponse
	Total    int64
	Page     int
	PageSize int
}

// ReviewInput contains the input for review transitions
type ReviewInput struct {
	RegistrationID uuid.UUID
	ReviewerID     uuid.UUID
}

// RejectInput contains the input for rejecting a registration request
type RejectInput struct {
	RegistrationID uuid.UUID
	ReviewerID     uuid.UUID
	Reason         string
}

// ApproveResult contains the result of approving a registration request
type ApproveResult struct {
	Registration RegistrationResponse
	Profile      ProfileResponse
}

// InitiateDocumentUploadInput contains the input for starting a document upload
type InitiateDocumentUploadInput struct {
	RegistrationID uuid.UUID
	FileName       string
	ContentType    string
}

// InitiateDocumentUploadResult contains the presigned upload URL
type InitiateDocumentUploadResult struct {
	StorageKey string
	UploadURL  string
	ExpiresAt  time.Time
}

// ConfirmDocumentUploadInput contains the input for confirming a document upload
type ConfirmDocumentUploadInput struct {
	RegistrationID uuid.UUID
	StorageKey     string
}

// DocumentURL pairs a storage key with a presigned download URL
type DocumentURL struct {
	StorageKey string
	URL        string
	ExpiresAt  time.Time
}

// ProfileResponse is the DTO representation of a seller profile
type ProfileResponse struct {
	ID              uuid.UUID
	SellerCode      string
	ApplicantID     uuid.UUID
	RegistrationID  uuid.UUID
	BusinessName    string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	MarketSection   string
	StallNumber     string
	Status          seller.ProfileStatus
	Rating          decimal.Decimal
	RatingCount     int64
	OrdersFulfilled int64
	OrdersTotal     int64
	FulfillmentRate decimal.Decimal
	StatusReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToProfileResponse converts a domain seller profile to its DTO
func ToProfileResponse(profile *seller.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              profile.ID,
		SellerCode:      profile.SellerCode,
		ApplicantID:     profile.ApplicantID,
		RegistrationID:  profile.RegistrationID,
		BusinessName:    profile.BusinessName,
		ContactName:     profile.ContactName,
		ContactPhone:    profile.ContactPhone,
		ContactEmail:    profile.ContactEmail,
		MarketSection:   profile.MarketSection,
		StallNumber:     profile.StallNumber,
		Status:          profile.Status,
		Rating:          profile.Rating,
		RatingCount:     profile.RatingCount,
		OrdersFulfilled: profile.OrdersFulfilled,
		OrdersTotal:     profile.OrdersTotal,
		FulfillmentRate: profile.FulfillmentRate(),
		StatusReason:    profile.StatusReason,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}
}

// ListProfilesInput contains the input for listing seller profiles
type ListProfilesInput struct {
	Keyword       string
	Status        *seller.ProfileStatus
	MarketSection string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// ProfileListResult contains a page of seller profiles
type ProfileListResult struct {
	Profiles []ProfileResponse
	Total    int64
	Page     int
	PageSize int
}

// StatusChangeInput contains the input for profile status changes
type StatusChangeInput struct {
	ProfileID uuid.UUID
	Reason    string
}

// RateSellerInput contains the input for rating a seller
type RateSellerInput struct {
	ProfileID uuid.UUID
	Rating    decimal.Decimal
}

// RecordFulfillmentInput contains the input for recording an order outcome
type RecordFulfillmentInput struct {
	ProfileID uuid.UUID
	Fulfilled bool
}
