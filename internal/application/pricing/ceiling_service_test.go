package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
)

// MockCeilingRepository is a mock implementation of pricing.CeilingRepository
type MockCeilingRepository struct {
	mock.Mock
}

func (m *MockCeilingRepository) Create(ctx context.Context, ceiling *pricing.Ceiling) error {
	args := m.Called(ctx, ceiling)
	return args.Error(0)
}

func (m *MockCeilingRepository) Update(ctx context.Context, ceiling *pricing.Ceiling) error {
	args := m.Called(ctx, ceiling)
	return args.Error(0)
}

func (m *MockCeilingRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Ceiling, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Ceiling), args.Error(1)
}

func (m *MockCeilingRepository) FindActiveByProductCode(ctx context.Context, productCode string) (*pricing.Ceiling, error) {
	args := m.Called(ctx, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Ceiling), args.Error(1)
}

func (m *MockCeilingRepository) FindAll(ctx context.Context, filter pricing.CeilingFilter) ([]*pricing.Ceiling, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*pricing.Ceiling), args.Get(1).(int64), args.Error(2)
}

func (m *MockCeilingRepository) FindAllActive(ctx context.Context) ([]*pricing.Ceiling, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricing.Ceiling), args.Error(1)
}

// MockListingRepository is a mock implementation of pricing.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *pricing.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *pricing.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Listing), args.Error(1)
}

func (m *MockListingRepository) FindBySellerAndProduct(ctx context.Context, sellerID uuid.UUID, productCode string) (*pricing.Listing, error) {
	args := m.Called(ctx, sellerID, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Listing), args.Error(1)
}

func (m *MockListingRepository) FindAll(ctx context.Context, filter pricing.ListingFilter) ([]*pricing.Listing, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*pricing.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) FindActiveByProductCodes(ctx context.Context, productCodes []string) ([]*pricing.Listing, error) {
	args := m.Called(ctx, productCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricing.Listing), args.Error(1)
}

func (m *MockListingRepository) CountActiveUnderCeiling(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockNonComplianceRepository is a mock implementation of pricing.NonComplianceRepository
type MockNonComplianceRepository struct {
	mock.Mock
}

func (m *MockNonComplianceRepository) Create(ctx context.Context, record *pricing.NonComplianceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockNonComplianceRepository) Update(ctx context.Context, record *pricing.NonComplianceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockNonComplianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.NonComplianceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.NonComplianceRecord), args.Error(1)
}

func (m *MockNonComplianceRepository) FindOpenByListing(ctx context.Context, listingID uuid.UUID) (*pricing.NonComplianceRecord, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.NonComplianceRecord), args.Error(1)
}

func (m *MockNonComplianceRepository) FindAll(ctx context.Context, filter pricing.NonComplianceFilter) ([]*pricing.NonComplianceRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*pricing.NonComplianceRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockNonComplianceRepository) CountByStatus(ctx context.Context, status pricing.NonComplianceStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newTestCeilingService() (*CeilingService, *MockCeilingRepository) {
	ceilingRepo := new(MockCeilingRepository)
	service := NewCeilingService(ceilingRepo, zap.NewNop())
	return service, ceilingRepo
}

func newRiceCeiling(t *testing.T) *pricing.Ceiling {
	t.Helper()
	ceiling, err := pricing.NewCeiling(
		"RICE-50KG",
		"Rice 50kg Bag",
		"Grains",
		decimal.NewFromInt(1500),
		"bag",
		time.Time{},
	)
	require.NoError(t, err)
	return ceiling
}

func TestCeilingService_Create(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()

	ceilingRepo.On("FindActiveByProductCode", mock.Anything, "RICE-50KG").Return(nil, shared.ErrNotFound)
	ceilingRepo.On("Create", mock.Anything, mock.AnythingOfType("*pricing.Ceiling")).Return(nil)

	resp, err := service.Create(context.Background(), CreateCeilingInput{
		ProductCode:  "RICE-50KG",
		ProductName:  "Rice 50kg Bag",
		Category:     "Grains",
		CeilingPrice: decimal.NewFromInt(1500),
		Unit:         "bag",
	})

	require.NoError(t, err)
	assert.Equal(t, "RICE-50KG", resp.ProductCode)
	assert.True(t, resp.CeilingPrice.Equal(decimal.NewFromInt(1500)))
	assert.True(t, resp.Active)
	ceilingRepo.AssertExpectations(t)
}

func TestCeilingService_Create_AlreadyExists(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()
	existing := newRiceCeiling(t)

	ceilingRepo.On("FindActiveByProductCode", mock.Anything, "RICE-50KG").Return(existing, nil)

	_, err := service.Create(context.Background(), CreateCeilingInput{
		ProductCode:  "RICE-50KG",
		ProductName:  "Rice 50kg Bag",
		Category:     "Grains",
		CeilingPrice: decimal.NewFromInt(1600),
		Unit:         "bag",
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "CEILING_EXISTS", domainErr.Code)
	ceilingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCeilingService_Create_InvalidPrice(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()

	ceilingRepo.On("FindActiveByProductCode", mock.Anything, "RICE-50KG").Return(nil, shared.ErrNotFound)

	_, err := service.Create(context.Background(), CreateCeilingInput{
		ProductCode:  "RICE-50KG",
		ProductName:  "Rice 50kg Bag",
		CeilingPrice: decimal.Zero,
		Unit:         "bag",
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	ceilingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCeilingService_Update_Price(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()
	ceiling := newRiceCeiling(t)

	ceilingRepo.On("FindByID", mock.Anything, ceiling.ID).Return(ceiling, nil)
	ceilingRepo.On("Update", mock.Anything, ceiling).Return(nil)

	newPrice := decimal.NewFromInt(1650)
	resp, err := service.Update(context.Background(), UpdateCeilingInput{
		CeilingID:    ceiling.ID,
		CeilingPrice: &newPrice,
	})

	require.NoError(t, err)
	assert.True(t, resp.CeilingPrice.Equal(newPrice))
	ceilingRepo.AssertExpectations(t)
}

func TestCeilingService_Update_InvalidWindow(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()
	ceiling := newRiceCeiling(t)

	ceilingRepo.On("FindByID", mock.Anything, ceiling.ID).Return(ceiling, nil)

	until := ceiling.EffectiveFrom.Add(-time.Hour)
	_, err := service.Update(context.Background(), UpdateCeilingInput{
		CeilingID:      ceiling.ID,
		EffectiveUntil: &until,
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	ceilingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCeilingService_Deactivate(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()
	ceiling := newRiceCeiling(t)

	ceilingRepo.On("FindByID", mock.Anything, ceiling.ID).Return(ceiling, nil)
	ceilingRepo.On("Update", mock.Anything, ceiling).Return(nil)

	resp, err := service.Deactivate(context.Background(), ceiling.ID)

	require.NoError(t, err)
	assert.False(t, resp.Active)

	// Deactivating again is rejected
	_, err = service.Deactivate(context.Background(), ceiling.ID)
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestCeilingService_List(t *testing.T) {
	service, ceilingRepo := newTestCeilingService()
	ceiling := newRiceCeiling(t)

	ceilingRepo.On("FindAll", mock.Anything, mock.AnythingOfType("pricing.CeilingFilter")).
		Return([]*pricing.Ceiling{ceiling}, int64(1), nil)

	result, err := service.List(context.Background(), ListCeilingsInput{Category: "Grains", Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Ceilings, 1)
	assert.Equal(t, "RICE-50KG", result.Ceilings[0].ProductCode)
}
