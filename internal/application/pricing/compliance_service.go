package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
)

// ComplianceService detects and manages price ceiling violations
type ComplianceService struct {
	ceilingRepo       pricing.CeilingRepository
	listingRepo       pricing.ListingRepository
	nonComplianceRepo pricing.NonComplianceRepository
	eventBus          shared.EventPublisher
	logger            *zap.Logger
}

// NewComplianceService creates a new compliance service
func NewComplianceService(
	ceilingRepo pricing.CeilingRepository,
	listingRepo pricing.ListingRepository,
	nonComplianceRepo pricing.NonComplianceRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ComplianceService {
	return &ComplianceService{
		ceilingRepo:       ceilingRepo,
		listingRepo:       listingRepo,
		nonComplianceRepo: nonComplianceRepo,
		eventBus:          eventBus,
		logger:            logger,
	}
}

// CheckListing checks a single listing against its product's effective
// ceiling. A violating listing gets one open record: an existing open record
// is refreshed with the latest prices, otherwise a new record is opened and
// the detection event is published. Returns the open record if the listing
// violates its ceiling.
func (s *ComplianceService) CheckListing(ctx context.Context, listing *pricing.Listing) (*NonComplianceResponse, error) {
	ceiling, err := s.ceilingRepo.FindActiveByProductCode(ctx, listing.ProductCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// No ceiling, nothing to enforce
			return nil, nil
		}
		return nil, err
	}

	record, created, err := s.applyCheck(ctx, listing, ceiling)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	if created {
		s.logger.Warn("Price ceiling violation detected",
			zap.String("listing_id", listing.ID.String()),
			zap.String("product_code", listing.ProductCode),
			zap.String("listed_price", listing.ListedPrice.String()),
			zap.String("ceiling_price", ceiling.CeilingPrice.String()))
	}

	resp := ToNonComplianceResponse(record)
	return &resp, nil
}

// Scan runs the periodic compliance scan over all active ceilings and the
// active listings of their products. The scan is idempotent: re-running it
// refreshes existing open records instead of duplicating them.
func (s *ComplianceService) Scan(ctx context.Context) (*ScanResult, error) {
	ceilings, err := s.ceilingRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{CeilingsScanned: len(ceilings)}
	if len(ceilings) == 0 {
		return result, nil
	}

	ceilingsByProduct := make(map[string]*pricing.Ceiling, len(ceilings))
	productCodes := make([]string, 0, len(ceilings))
	for _, ceiling := range ceilings {
		ceilingsByProduct[ceiling.ProductCode] = ceiling
		productCodes = append(productCodes, ceiling.ProductCode)
	}

	listings, err := s.listingRepo.FindActiveByProductCodes(ctx, productCodes)
	if err != nil {
		return nil, err
	}

	for _, listing := range listings {
		ceiling, ok := ceilingsByProduct[listing.ProductCode]
		if !ok {
			continue
		}
		result.ListingsChecked++

		record, created, err := s.applyCheck(ctx, listing, ceiling)
		if err != nil {
			s.logger.Error("Compliance check failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(err))
			continue
		}
		if record == nil {
			continue
		}

		result.Violations++
		if created {
			result.NewRecords++
		} else {
			result.Refreshed++
		}
	}

	s.logger.Info("Compliance scan completed",
		zap.Int("ceilings", result.CeilingsScanned),
		zap.Int("listings", result.ListingsChecked),
		zap.Int("violations", result.Violations),
		zap.Int("new_records", result.NewRecords))

	return result, nil
}

// applyCheck compares a listing against a ceiling and maintains its open
// record. Returns the open record when the listing violates the ceiling and
// whether it was newly created.
func (s *ComplianceService) applyCheck(ctx context.Context, listing *pricing.Listing, ceiling *pricing.Ceiling) (*pricing.NonComplianceRecord, bool, error) {
	existing, err := s.nonComplianceRepo.FindOpenByListing(ctx, listing.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	if !listing.ExceedsCeiling(ceiling) {
		// Compliant again. Open records stay open for an admin to resolve
		// with the corrected price on display.
		return nil, false, nil
	}

	if existing != nil {
		if err := existing.Refresh(listing.ListedPrice, ceiling.CeilingPrice); err != nil {
			return nil, false, err
		}
		if err := s.nonComplianceRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	record, err := pricing.NewNonComplianceRecord(listing, ceiling)
	if err != nil {
		return nil, false, err
	}

	if err := s.nonComplianceRepo.Create(ctx, record); err != nil {
		return nil, false, err
	}

	s.publishEvents(ctx, record)

	return record, true, nil
}

// Resolve closes a record as corrected
func (s *ComplianceService) Resolve(ctx context.Context, input CloseRecordInput) (*NonComplianceResponse, error) {
	return s.closeRecord(ctx, input, func(record *pricing.NonComplianceRecord) error {
		return record.Resolve(input.AdminID, input.Note)
	})
}

// Waive closes a record without requiring correction
func (s *ComplianceService) Waive(ctx context.Context, input CloseRecordInput) (*NonComplianceResponse, error) {
	return s.closeRecord(ctx, input, func(record *pricing.NonComplianceRecord) error {
		return record.Waive(input.AdminID, input.Note)
	})
}

// Get retrieves a non-compliance record by ID
func (s *ComplianceService) Get(ctx context.Context, id uuid.UUID) (*NonComplianceResponse, error) {
	record, err := s.nonComplianceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToNonComplianceResponse(record)
	return &resp, nil
}

// List returns non-compliance records matching the filter
func (s *ComplianceService) List(ctx context.Context, input ListNonComplianceInput) (*NonComplianceListResult, error) {
	filter := pricing.NewNonComplianceFilter()
	filter.SellerID = input.SellerID
	filter.ProductCode = input.ProductCode
	filter.Status = input.Status
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

	records, total, err := s.nonComplianceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]NonComplianceResponse, len(records))
	for i, record := range records {
		responses[i] = ToNonComplianceResponse(record)
	}

	return &NonComplianceListResult{
		Records:  responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// ComplianceRate returns the share of active ceiling-covered listings priced
// at or below their ceiling. With nothing to enforce the rate is 100.
func (s *ComplianceService) ComplianceRate(ctx context.Context) (*ComplianceRateResult, error) {
	total, compliant, err := s.listingRepo.CountActiveUnderCeiling(ctx)
	if err != nil {
		return nil, err
	}

	rate := decimal.NewFromInt(100)
	if total > 0 {
		rate = decimal.NewFromInt(compliant).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return &ComplianceRateResult{
		TotalListings:     total,
		CompliantListings: compliant,
		Rate:              rate,
	}, nil
}

func (s *ComplianceService) closeRecord(ctx context.Context, input CloseRecordInput, transition func(*pricing.NonComplianceRecord) error) (*NonComplianceResponse, error) {
	record, err := s.nonComplianceRepo.FindByID(ctx, input.RecordID)
	if err != nil {
		return nil, err
	}

	if err := transition(record); err != nil {
		return nil, err
	}

	if err := s.nonComplianceRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Non-compliance record closed",
		zap.String("record_id", record.ID.String()),
		zap.String("status", string(record.Status)),
		zap.String("admin_id", input.AdminID.String()))

	resp := ToNonComplianceResponse(record)
	return &resp, nil
}

// publishEvents publishes and clears an aggregate's pending domain events
func (s *ComplianceService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
