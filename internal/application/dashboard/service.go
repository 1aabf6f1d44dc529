package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pricingapp "github.com/opas/backend/internal/application/pricing"
	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/seller"
)

// SnapshotCache stores serialized dashboard snapshots with a short TTL.
// Get returns (nil, nil) on a miss so the service falls through to a
// recompute. Implemented by the Redis and in-memory dashboard caches.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

const (
	statsCacheKey  = "stats"
	healthCacheKey = "health"
)

// Health score weights: compliance 40%, seller rating 30%, fulfillment 30%
var (
	weightCompliance  = decimal.RequireFromString("0.4")
	weightRating      = decimal.RequireFromString("0.3")
	weightFulfillment = decimal.RequireFromString("0.3")

	healthyFloor  = decimal.NewFromInt(80)
	degradedFloor = decimal.NewFromInt(50)
)

// ServiceConfig contains configurable dashboard settings
type ServiceConfig struct {
	CacheTTL time.Duration
}

// DefaultServiceConfig returns the default dashboard configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CacheTTL: 60 * time.Second,
	}
}

// Service aggregates marketplace statistics and the health score for the
// admin dashboard. Snapshots are cached briefly; staleness up to the TTL is
// acceptable for an overview screen.
type Service struct {
	registrationRepo  seller.RegistrationRepository
	profileRepo       seller.ProfileRepository
	nonComplianceRepo pricing.NonComplianceRepository
	alertRepo         alert.Repository
	purchaseRepo      opas.PurchaseRepository
	inventoryRepo     opas.InventoryRepository
	compliance        *pricingapp.ComplianceService
	cache             SnapshotCache
	config            ServiceConfig
	logger            *zap.Logger
}

// NewService creates a new dashboard service
func NewService(
	registrationRepo seller.RegistrationRepository,
	profileRepo seller.ProfileRepository,
	nonComplianceRepo pricing.NonComplianceRepository,
	alertRepo alert.Repository,
	purchaseRepo opas.PurchaseRepository,
	inventoryRepo opas.InventoryRepository,
	compliance *pricingapp.ComplianceService,
	cache SnapshotCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		registrationRepo:  registrationRepo,
		profileRepo:       profileRepo,
		nonComplianceRepo: nonComplianceRepo,
		alertRepo:         alertRepo,
		purchaseRepo:      purchaseRepo,
		inventoryRepo:     inventoryRepo,
		compliance:        compliance,
		cache:             cache,
		config:            DefaultServiceConfig(),
		logger:            logger,
	}
}

// SetConfig updates the service configuration
func (s *Service) SetConfig(config ServiceConfig) {
	if config.CacheTTL > 0 {
		s.config.CacheTTL = config.CacheTTL
	}
}

// Stats returns the dashboard statistics snapshot, cached for the TTL
func (s *Service) Stats(ctx context.Context) (*StatsResult, error) {
	var cached StatsResult
	if s.fromCache(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	result, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, statsCacheKey, result)
	return result, nil
}

// Refresh recomputes both snapshots and stores them, bypassing the cache.
// The scheduler calls this so the first admin of the day gets a warm cache.
func (s *Service) Refresh(ctx context.Context) error {
	stats, err := s.computeStats(ctx)
	if err != nil {
		return err
	}
	s.toCache(ctx, statsCacheKey, stats)

	health, err := s.computeHealth(ctx)
	if err != nil {
		return err
	}
	s.toCache(ctx, healthCacheKey, health)

	s.logger.Info("Dashboard snapshots refreshed",
		zap.String("health_score", health.Score.String()),
		zap.String("health_band", string(health.Band)))

	return nil
}

func (s *Service) computeStats(ctx context.Context) (*StatsResult, error) {
	result := &StatsResult{GeneratedAt: time.Now()}

	sellerCounts := map[seller.ProfileStatus]*int64{
		seller.ProfileStatusActive:    &result.Sellers.Active,
		seller.ProfileStatusSuspended: &result.Sellers.Suspended,
		seller.ProfileStatusBanned:    &result.Sellers.Banned,
	}
	for status, target := range sellerCounts {
		count, err := s.profileRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*target = count
	}
	result.Sellers.Total = result.Sellers.Active + result.Sellers.Suspended + result.Sellers.Banned

	pending, err := s.registrationRepo.CountByStatus(ctx, seller.RegistrationStatusPending)
	if err != nil {
		return nil, err
	}
	underReview, err := s.registrationRepo.CountByStatus(ctx, seller.RegistrationStatusUnderReview)
	if err != nil {
		return nil, err
	}
	result.Registrations = RegistrationStats{Pending: pending, UnderReview: underReview}

	if result.OpenNonCompliance, err = s.nonComplianceRepo.CountByStatus(ctx, pricing.NonComplianceStatusOpen); err != nil {
		return nil, err
	}

	if result.ActiveAlerts, err = s.alertRepo.CountActive(ctx); err != nil {
		return nil, err
	}

	purchaseCounts := map[opas.PurchaseStatus]*int64{
		opas.PurchaseStatusDraft:     &result.Purchases.Draft,
		opas.PurchaseStatusConfirmed: &result.Purchases.Confirmed,
		opas.PurchaseStatusReceived:  &result.Purchases.Received,
		opas.PurchaseStatusPaid:      &result.Purchases.Paid,
	}
	for status, target := range purchaseCounts {
		count, err := s.purchaseRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*target = count
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if result.Purchases.MonthToDateSpend, err = s.purchaseRepo.TotalAmountSince(ctx, monthStart); err != nil {
		return nil, err
	}

	if result.LowStockItems, err = s.inventoryRepo.CountLowStock(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// Health returns the marketplace health snapshot, cached for the TTL
func (s *Service) Health(ctx context.Context) (*HealthResult, error) {
	var cached HealthResult
	if s.fromCache(ctx, healthCacheKey, &cached) {
		return &cached, nil
	}

	result, err := s.computeHealth(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, healthCacheKey, result)
	return result, nil
}

func (s *Service) computeHealth(ctx context.Context) (*HealthResult, error) {
	complianceRate, err := s.compliance.ComplianceRate(ctx)
	if err != nil {
		return nil, err
	}

	avgRating, rated, err := s.profileRepo.AverageRating(ctx)
	if err != nil {
		return nil, err
	}
	// Rating is 0-5; normalize to 0-100. No rated sellers contributes zero.
	sellerRating := decimal.Zero
	if rated > 0 {
		sellerRating = decimal.NewFromFloat(avgRating).Mul(decimal.NewFromInt(20)).Round(2)
	}

	fulfilled, totalOrders, err := s.profileRepo.FulfillmentTotals(ctx)
	if err != nil {
		return nil, err
	}
	fulfillmentRate := decimal.NewFromInt(100)
	if totalOrders > 0 {
		fulfillmentRate = decimal.NewFromInt(fulfilled).
			Div(decimal.NewFromInt(totalOrders)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	score := complianceRate.Rate.Mul(weightCompliance).
		Add(sellerRating.Mul(weightRating)).
		Add(fulfillmentRate.Mul(weightFulfillment)).
		Round(2)

	band := HealthBandCritical
	switch {
	case score.GreaterThanOrEqual(healthyFloor):
		band = HealthBandHealthy
	case score.GreaterThanOrEqual(degradedFloor):
		band = HealthBandDegraded
	}

	return &HealthResult{
		Score:           score,
		Band:            band,
		ComplianceRate:  complianceRate.Rate,
		SellerRating:    sellerRating,
		FulfillmentRate: fulfillmentRate,
		GeneratedAt:     time.Now(),
	}, nil
}

// fromCache loads a snapshot into target, returning true on a hit. Cache
// failures are logged and treated as misses.
func (s *Service) fromCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		s.logger.Warn("Dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to serialize dashboard snapshot", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
