package seller

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
)

// ProfileService handles seller profile lifecycle and performance tracking
type ProfileService struct {
	profileRepo seller.ProfileRepository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo seller.ProfileRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Get retrieves a seller profile by ID
func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// GetBySellerCode retrieves a seller profile by its seller code
func (s *ProfileService) GetBySellerCode(ctx context.Context, code string) (*ProfileResponse, error) {
	profile, err := s.profileRepo.FindBySellerCode(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// List returns seller profiles matching the filter
func (s *ProfileService) List(ctx context.Context, input ListProfilesInput) (*ProfileListResult, error) {
	filter := seller.NewProfileFilter()
	filter.Keyword = input.Keyword
	filter.Status = input.Status
	filter.MarketSection = input.MarketSection
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

	profiles, total, err := s.profileRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProfileResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = ToProfileResponse(profile)
	}

	return &ProfileListResult{
		Profiles: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Suspend suspends a seller
func (s *ProfileService) Suspend(ctx context.Context, input StatusChangeInput) (*ProfileResponse, error) {
	return s.changeStatus(ctx, input.ProfileID, func(profile *seller.Profile) error {
		return profile.Suspend(input.Reason)
	})
}

// Reinstate returns a suspended seller to active
func (s *ProfileService) Reinstate(ctx context.Context, input StatusChangeInput) (*ProfileResponse, error) {
	return s.changeStatus(ctx, input.ProfileID, func(profile *seller.Profile) error {
		return profile.Reinstate()
	})
}

// Ban permanently bans a seller
func (s *ProfileService) Ban(ctx context.Context, input StatusChangeInput) (*ProfileResponse, error) {
	return s.changeStatus(ctx, input.ProfileID, func(profile *seller.Profile) error {
		return profile.Ban(input.Reason)
	})
}

// Rate records a rating for a seller
func (s *ProfileService) Rate(ctx context.Context, input RateSellerInput) (*ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	if err := profile.SetRating(input.Rating); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("Seller rated",
		zap.String("seller_code", profile.SellerCode),
		zap.String("rating", profile.Rating.String()))

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// RecordFulfillment records the outcome of an order against the seller's
// fulfillment counters.
func (s *ProfileService) RecordFulfillment(ctx context.Context, input RecordFulfillmentInput) (*ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	profile.RecordFulfillment(input.Fulfilled)

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// changeStatus applies a status transition and publishes the resulting events
func (s *ProfileService) changeStatus(ctx context.Context, profileID uuid.UUID, transition func(*seller.Profile) error) (*ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := transition(profile); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, profile)

	s.logger.Info("Seller status changed",
		zap.String("seller_code", profile.SellerCode),
		zap.String("status", string(profile.Status)))

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// publishEvents publishes and clears an aggregate's pending domain events
func (s *ProfileService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
