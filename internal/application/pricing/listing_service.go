package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
)

// ListingService handles product listings and runs the immediate compliance
// check on every price change.
type ListingService struct {
	listingRepo pricing.ListingRepository
	compliance  *ComplianceService
	logger      *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(
	listingRepo pricing.ListingRepository,
	compliance *ComplianceService,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		compliance:  compliance,
		logger:      logger,
	}
}

// Upsert creates a seller's listing for a product or updates the existing
// one, then immediately checks the new price against the effective ceiling.
func (s *ListingService) Upsert(ctx context.Context, input UpsertListingInput) (*UpsertListingResult, error) {
	listing, err := s.listingRepo.FindBySellerAndProduct(ctx, input.SellerID, input.ProductCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if listing == nil {
		listing, err = pricing.NewListing(
			input.SellerID,
			input.ProductCode,
			input.ProductName,
			input.ListedPrice,
			input.Quantity,
			input.Unit,
		)
		if err != nil {
			return nil, err
		}
		if err := s.listingRepo.Create(ctx, listing); err != nil {
			return nil, err
		}
	} else {
		if err := listing.ChangePrice(input.ListedPrice); err != nil {
			return nil, err
		}
		if err := listing.SetQuantity(input.Quantity); err != nil {
			return nil, err
		}
		if !listing.Active {
			if err := listing.Reactivate(); err != nil {
				return nil, err
			}
		}
		if err := s.listingRepo.Update(ctx, listing); err != nil {
			return nil, err
		}
	}

	violation, err := s.compliance.CheckListing(ctx, listing)
	if err != nil {
		// The listing is saved; surface the check failure in logs only
		s.logger.Error("Immediate compliance check failed",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
	}

	return &UpsertListingResult{
		Listing:   ToListingResponse(listing),
		Compliant: violation == nil,
		Violation: violation,
	}, nil
}

// Get retrieves a listing by ID
func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToListingResponse(listing)
	return &resp, nil
}

// List returns listings matching the filter
func (s *ListingService) List(ctx context.Context, input ListListingsInput) (*ListingListResult, error) {
	filter := pricing.NewListingFilter()
	filter.Keyword = input.Keyword
	filter.SellerID = input.SellerID
	filter.ProductCode = input.ProductCode
	filter.Active = input.Active
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

	listings, total, err := s.listingRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		responses[i] = ToListingResponse(listing)
	}

	return &ListingListResult{
		Listings: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Deactivate takes a listing off the market
func (s *ListingService) Deactivate(ctx context.Context, id uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := listing.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("Listing deactivated", zap.String("listing_id", listing.ID.String()))

	resp := ToListingResponse(listing)
	return &resp, nil
}
