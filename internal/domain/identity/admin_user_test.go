package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminUser(t *testing.T) {
	t.Run("creates active admin user with valid input", func(t *testing.T) {
		user, err := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		require.NoError(t, err)
		assert.Equal(t, "marketadmin", user.Username)
		assert.Equal(t, "admin@example.com", user.Email)
		assert.NotEmpty(t, user.PasswordHash)
		assert.Equal(t, AdminRoleAdmin, user.Role)
		assert.Equal(t, AdminStatusActive, user.Status)
		assert.Zero(t, user.FailedLogins)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*AdminUserCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes username and email to lowercase", func(t *testing.T) {
		user, err := NewAdminUser("MarketAdmin", "Admin@Example.COM", "Password123", AdminRoleModerator)

		require.NoError(t, err)
		assert.Equal(t, "marketadmin", user.Username)
		assert.Equal(t, "admin@example.com", user.Email)
	})

	t.Run("fails with empty username", func(t *testing.T) {
		_, err := NewAdminUser("", "admin@example.com", "Password123", AdminRoleAdmin)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewAdminUser("marketadmin", "admin@example.com", "Pass1", AdminRoleAdmin)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("fails with password without numbers", func(t *testing.T) {
		_, err := NewAdminUser("marketadmin", "admin@example.com", "Password", AdminRoleAdmin)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one letter and one number")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewAdminUser("marketadmin", "not-an-email", "Password123", AdminRoleAdmin)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})

	t.Run("fails with unknown role", func(t *testing.T) {
		_, err := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRole("viewer"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown admin role")
	})
}

func TestAdminUser_VerifyPassword(t *testing.T) {
	user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

	assert.True(t, user.VerifyPassword("Password123"))
	assert.False(t, user.VerifyPassword("WrongPassword1"))
}

func TestAdminUser_ChangePassword(t *testing.T) {
	t.Run("changes password with correct current password", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)
		user.ClearDomainEvents()

		err := user.ChangePassword("Password123", "NewPassword456")

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword456"))
		assert.False(t, user.VerifyPassword("Password123"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*AdminUserPasswordChangedEvent)
		assert.True(t, ok)
	})

	t.Run("fails with wrong current password", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		err := user.ChangePassword("WrongPassword1", "NewPassword456")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Current password is incorrect")
	})
}

func TestAdminUser_StatusTransitions(t *testing.T) {
	t.Run("deactivate and reactivate", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		require.NoError(t, user.Deactivate())
		assert.Equal(t, AdminStatusInactive, user.Status)
		assert.False(t, user.CanLogin())

		require.NoError(t, user.Activate())
		assert.Equal(t, AdminStatusActive, user.Status)
		assert.True(t, user.CanLogin())
	})

	t.Run("deactivating twice fails", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		require.NoError(t, user.Deactivate())
		assert.Error(t, user.Deactivate())
	})

	t.Run("lock and unlock", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		require.NoError(t, user.Lock())
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())

		require.NoError(t, user.Unlock())
		assert.True(t, user.IsActive())
		assert.Zero(t, user.FailedLogins)
	})

	t.Run("cannot lock inactive user", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		require.NoError(t, user.Deactivate())
		assert.Error(t, user.Lock())
	})

	t.Run("unlock fails when not locked", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		assert.Error(t, user.Unlock())
	})
}

func TestAdminUser_RecordLoginFailure(t *testing.T) {
	t.Run("locks after max consecutive failures", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		for i := 0; i < MaxFailedLogins-1; i++ {
			locked := user.RecordLoginFailure()
			assert.False(t, locked)
			assert.True(t, user.IsActive())
		}

		locked := user.RecordLoginFailure()
		assert.True(t, locked)
		assert.True(t, user.IsLocked())
	})

	t.Run("successful login resets the counter", func(t *testing.T) {
		user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

		user.RecordLoginFailure()
		user.RecordLoginFailure()
		user.RecordLoginSuccess("203.0.113.10")

		assert.Zero(t, user.FailedLogins)
		assert.NotNil(t, user.LastLoginAt)
		assert.Equal(t, "203.0.113.10", user.LastLoginIP)
	})
}

func TestAdminUser_SetRole(t *testing.T) {
	user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleModerator)
	user.ClearDomainEvents()

	require.NoError(t, user.SetRole(AdminRoleSuperAdmin))
	assert.True(t, user.IsSuperAdmin())

	events := user.GetDomainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*AdminUserRoleChangedEvent)
	require.True(t, ok)
	assert.Equal(t, AdminRoleModerator, evt.OldRole)
	assert.Equal(t, AdminRoleSuperAdmin, evt.NewRole)
}

func TestAdminUser_GetDisplayNameOrUsername(t *testing.T) {
	user, _ := NewAdminUser("marketadmin", "admin@example.com", "Password123", AdminRoleAdmin)

	assert.Equal(t, "marketadmin", user.GetDisplayNameOrUsername())

	require.NoError(t, user.SetDisplayName("Market Admin"))
	assert.Equal(t, "Market Admin", user.GetDisplayNameOrUsername())
}
