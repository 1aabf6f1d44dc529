package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/opas/backend/internal/application/identity"
	"github.com/opas/backend/internal/domain/identity"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/auth"
	"github.com/opas/backend/internal/infrastructure/config"
	"github.com/opas/backend/internal/infrastructure/persistence"
)

func newAuthService(t *testing.T, testDB *TestDB) (*appidentity.AuthService, identity.AdminUserRepository) {
	t.Helper()

	userRepo := persistence.NewGormAdminUserRepository(testDB.DB)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret",
		RefreshSecret:          "integration-test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "opas-backend-test",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	return appidentity.NewAuthService(userRepo, jwtService, blacklist, zap.NewNop()), userRepo
}

func TestAuthFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	authService, userRepo := newAuthService(t, testDB)
	ctx := context.Background()

	user, err := identity.NewAdminUser("operator1", "operator1@example.com",
		"Sup3rSecret!pw", identity.AdminRoleAdmin)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, user))

	t.Run("Login with valid credentials", func(t *testing.T) {
		result, err := authService.Login(ctx, appidentity.LoginInput{
			Username: "operator1",
			Password: "Sup3rSecret!pw",
			IP:       "127.0.0.1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "operator1", result.User.Username)
	})

	t.Run("Login with wrong password", func(t *testing.T) {
		_, err := authService.Login(ctx, appidentity.LoginInput{
			Username: "operator1",
			Password: "wrong-password",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)

		// Failure counter is persisted
		found, err := userRepo.FindByUsername(ctx, "operator1")
		require.NoError(t, err)
		assert.Greater(t, found.FailedLogins, 0)
	})

	t.Run("Login with unknown username", func(t *testing.T) {
		_, err := authService.Login(ctx, appidentity.LoginInput{
			Username: "no-such-user",
			Password: "whatever",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("Account locks after repeated failures", func(t *testing.T) {
		locked, err := identity.NewAdminUser("lockme", "lockme@example.com",
			"An0therSecret!", identity.AdminRoleModerator)
		require.NoError(t, err)
		require.NoError(t, userRepo.Create(ctx, locked))

		for i := 0; i < identity.MaxFailedLogins; i++ {
			_, err = authService.Login(ctx, appidentity.LoginInput{
				Username: "lockme",
				Password: "bad-password",
			})
			require.Error(t, err)
		}

		// Even the correct password is rejected once locked
		_, err = authService.Login(ctx, appidentity.LoginInput{
			Username: "lockme",
			Password: "An0therSecret!",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	})

	t.Run("RefreshToken issues a new access token", func(t *testing.T) {
		login, err := authService.Login(ctx, appidentity.LoginInput{
			Username: "operator1",
			Password: "Sup3rSecret!pw",
		})
		require.NoError(t, err)

		refreshed, err := authService.RefreshToken(ctx, appidentity.RefreshTokenInput{
			RefreshToken: login.RefreshToken,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
	})

	t.Run("GetCurrentUser", func(t *testing.T) {
		result, err := authService.GetCurrentUser(ctx, appidentity.GetCurrentUserInput{
			UserID: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "operator1", result.User.Username)
	})
}

func TestAdminUserRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormAdminUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Create and FindByUsername", func(t *testing.T) {
		user, err := identity.NewAdminUser("admin2", "admin2@example.com",
			"S0meSecret!pw", identity.AdminRoleSuperAdmin)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, user))

		found, err := repo.FindByUsername(ctx, "admin2")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, identity.AdminRoleSuperAdmin, found.Role)
		assert.True(t, found.VerifyPassword("S0meSecret!pw"))
	})

	t.Run("FindByEmail", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "admin2@example.com")
		require.NoError(t, err)
		assert.Equal(t, "admin2", found.Username)

		_, err = repo.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update role change round trip", func(t *testing.T) {
		user, err := identity.NewAdminUser("admin3", "admin3@example.com",
			"S0meSecret!pw", identity.AdminRoleModerator)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, user.SetRole(identity.AdminRoleAdmin))
		require.NoError(t, repo.Update(ctx, user))

		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.AdminRoleAdmin, found.Role)
	})

	t.Run("Delete", func(t *testing.T) {
		user, err := identity.NewAdminUser("admin4", "admin4@example.com",
			"S0meSecret!pw", identity.AdminRoleModerator)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.Delete(ctx, user.ID))

		_, err = repo.FindByID(ctx, user.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindAll with role filter", func(t *testing.T) {
		filter := identity.NewAdminUserFilter()
		role := identity.AdminRoleAdmin
		filter.Role = &role

		users, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, u := range users {
			assert.Equal(t, identity.AdminRoleAdmin, u.Role)
		}
	})
}
