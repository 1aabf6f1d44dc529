package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
)

// CeilingService handles price ceiling administration
type CeilingService struct {
	ceilingRepo pricing.CeilingRepository
	logger      *zap.Logger
}

// NewCeilingService creates a new ceiling service
func NewCeilingService(ceilingRepo pricing.CeilingRepository, logger *zap.Logger) *CeilingService {
	return &CeilingService{
		ceilingRepo: ceilingRepo,
		logger:      logger,
	}
}

// Create creates a new price ceiling. A product can only have one active
// ceiling at a time.
func (s *CeilingService) Create(ctx context.Context, input CreateCeilingInput) (*CeilingResponse, error) {
	existing, err := s.ceilingRepo.FindActiveByProductCode(ctx, input.ProductCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("CEILING_EXISTS",
			"Product already has an active price ceiling")
	}

	ceiling, err := pricing.NewCeiling(
		input.ProductCode,
		input.ProductName,
		input.Category,
		input.CeilingPrice,
		input.Unit,
		input.EffectiveFrom,
	)
	if err != nil {
		return nil, err
	}

	if input.EffectiveUntil != nil {
		if err := ceiling.SetEffectiveWindow(ceiling.EffectiveFrom, input.EffectiveUntil); err != nil {
			return nil, err
		}
	}

	if err := s.ceilingRepo.Create(ctx, ceiling); err != nil {
		return nil, err
	}

	s.logger.Info("Price ceiling created",
		zap.String("ceiling_id", ceiling.ID.String()),
		zap.String("product_code", ceiling.ProductCode),
		zap.String("ceiling_price", ceiling.CeilingPrice.String()))

	resp := ToCeilingResponse(ceiling)
	return &resp, nil
}

// Update updates a ceiling's price and effective window
func (s *CeilingService) Update(ctx context.Context, input UpdateCeilingInput) (*CeilingResponse, error) {
	ceiling, err := s.ceilingRepo.FindByID(ctx, input.CeilingID)
	if err != nil {
		return nil, err
	}

	if input.CeilingPrice != nil {
		if err := ceiling.UpdatePrice(*input.CeilingPrice); err != nil {
			return nil, err
		}
	}

	if input.EffectiveFrom != nil || input.EffectiveUntil != nil {
		from := ceiling.EffectiveFrom
		if input.EffectiveFrom != nil {
			from = *input.EffectiveFrom
		}
		until := ceiling.EffectiveUntil
		if input.EffectiveUntil != nil {
			until = input.EffectiveUntil
		}
		if err := ceiling.SetEffectiveWindow(from, until); err != nil {
			return nil, err
		}
	}

	if err := s.ceilingRepo.Update(ctx, ceiling); err != nil {
		return nil, err
	}

	s.logger.Info("Price ceiling updated",
		zap.String("ceiling_id", ceiling.ID.String()),
		zap.String("ceiling_price", ceiling.CeilingPrice.String()))

	resp := ToCeilingResponse(ceiling)
	return &resp, nil
}

// Deactivate deactivates a ceiling. Ceilings are never hard-deleted so that
// non-compliance records keep their reference.
func (s *CeilingService) Deactivate(ctx context.Context, id uuid.UUID) (*CeilingResponse, error) {
	return s.changeActivation(ctx, id, func(ceiling *pricing.Ceiling) error {
		return ceiling.Deactivate()
	})
}

// Reactivate reactivates a ceiling
func (s *CeilingService) Reactivate(ctx context.Context, id uuid.UUID) (*CeilingResponse, error) {
	return s.changeActivation(ctx, id, func(ceiling *pricing.Ceiling) error {
		return ceiling.Reactivate()
	})
}

// Get retrieves a ceiling by ID
func (s *CeilingService) Get(ctx context.Context, id uuid.UUID) (*CeilingResponse, error) {
	ceiling, err := s.ceilingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCeilingResponse(ceiling)
	return &resp, nil
}

// GetActiveForProduct retrieves the active ceiling for a product
func (s *CeilingService) GetActiveForProduct(ctx context.Context, productCode string) (*CeilingResponse, error) {
	ceiling, err := s.ceilingRepo.FindActiveByProductCode(ctx, productCode)
	if err != nil {
		return nil, err
	}

	resp := ToCeilingResponse(ceiling)
	return &resp, nil
}

// List returns ceilings matching the filter
func (s *CeilingService) List(ctx context.Context, input ListCeilingsInput) (*CeilingListResult, error) {
	filter := pricing.NewCeilingFilter()
	filter.Keyword = input.Keyword
	filter.Category = input.Category
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

	ceilings, total, err := s.ceilingRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]CeilingResponse, len(ceilings))
	for i, ceiling := range ceilings {
		responses[i] = ToCeilingResponse(ceiling)
	}

	return &CeilingListResult{
		Ceilings: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

func (s *CeilingService) changeActivation(ctx context.Context, id uuid.UUID, transition func(*pricing.Ceiling) error) (*CeilingResponse, error) {
	ceiling, err := s.ceilingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := transition(ceiling); err != nil {
		return nil, err
	}

	if err := s.ceilingRepo.Update(ctx, ceiling); err != nil {
		return nil, err
	}

	s.logger.Info("Price ceiling activation changed",
		zap.String("ceiling_id", ceiling.ID.String()),
		zap.Bool("active", ceiling.Active))

	resp := ToCeilingResponse(ceiling)
	return &resp, nil
}
