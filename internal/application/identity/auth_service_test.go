package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/identity"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/auth"
	"github.com/opas/backend/internal/infrastructure/config"
)

// MockAdminUserRepository is a mock implementation of identity.AdminUserRepository
type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *identity.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) Update(ctx context.Context, user *identity.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) FindByUsername(ctx context.Context, username string) (*identity.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) FindByEmail(ctx context.Context, email string) (*identity.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) FindAll(ctx context.Context, filter identity.AdminUserFilter) ([]*identity.AdminUser, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.AdminUser), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-tests",
		Issuer:                 "opas-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(repo *MockAdminUserRepository) *AuthService {
	return NewAuthService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func newTestAdminUser(t *testing.T, role identity.AdminRole) *identity.AdminUser {
	t.Helper()
	user, err := identity.NewAdminUser("marketadmin", "admin@market.example", "Passw0rd123", role)
	require.NoError(t, err)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	result, err := service.Login(context.Background(), LoginInput{
		Username: "marketadmin",
		Password: "Passw0rd123",
		IP:       "192.168.1.10",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, identity.AdminRoleAdmin, result.User.Role)
	assert.Equal(t, "192.168.1.10", user.LastLoginIP)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)

	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

	_, err := service.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever1"})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	_, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "wrongpass1"})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	assert.Equal(t, 1, user.FailedLogins)
}

func TestAuthService_Login_LocksAfterMaxFailures(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)
	user.FailedLogins = identity.MaxFailedLogins - 1

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	_, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "wrongpass1"})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	assert.True(t, user.IsLocked())
}

func TestAuthService_Login_LockedAccount(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)
	require.NoError(t, user.Lock())

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)

	_, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "Passw0rd123"})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleModerator)

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	login, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "Passw0rd123"})
	require.NoError(t, err)

	result, err := service.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, login.RefreshToken, result.RefreshToken)
}

func TestAuthService_RefreshToken_InvalidToken(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)

	_, err := service.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "not-a-token"})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
}

func TestAuthService_RefreshToken_InactiveUser(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	login, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "Passw0rd123"})
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())

	_, err = service.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
}

func TestAuthService_ChangePassword_InvalidatesSessions(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)

	repo.On("FindByUsername", mock.Anything, "marketadmin").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	login, err := service.Login(context.Background(), LoginInput{Username: "marketadmin", Password: "Passw0rd123"})
	require.NoError(t, err)

	err = service.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "Passw0rd123",
		NewPassword: "NewPassw0rd456",
	})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("NewPassw0rd456"))

	// The refresh token issued before the change is rejected
	_, err = service.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleAdmin)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrong-old-1",
		NewPassword: "NewPassw0rd456",
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
}

func TestAuthService_Logout_BlacklistsToken(t *testing.T) {
	repo := new(MockAdminUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	service := NewAuthService(repo, newTestJWTService(), blacklist, zap.NewNop())

	err := service.Logout(context.Background(), LogoutInput{
		UserID:   uuid.New(),
		TokenJTI: "token-jti-1",
		TTL:      time.Minute,
	})
	require.NoError(t, err)

	revoked, err := blacklist.IsBlacklisted(context.Background(), "token-jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	repo := new(MockAdminUserRepository)
	service := newTestAuthService(repo)
	user := newTestAdminUser(t, identity.AdminRoleSuperAdmin)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	result, err := service.GetCurrentUser(context.Background(), GetCurrentUserInput{UserID: user.ID})

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, identity.AdminRoleSuperAdmin, result.User.Role)
}
