package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/identity"
)

// LoginInput contains the input for admin login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  AdminUserInfo
}

// AdminUserInfo contains basic admin user information returned by auth operations
type AdminUserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Role        identity.AdminRole
	Status      identity.AdminStatus
	LastLoginAt *time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for admin logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string // JWT ID of the access token being revoked
	IssuedAt time.Time
	TTL      time.Duration // Remaining lifetime of the access token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID uuid.UUID
}

// CurrentUserResult contains the current admin user's information
type CurrentUserResult struct {
	User AdminUserInfo
}

// CreateAdminUserInput contains the input for creating an admin user
type CreateAdminUserInput struct {
	ActorID     uuid.UUID // Admin performing the action
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        identity.AdminRole
}

// UpdateAdminUserInput contains the input for updating an admin user
type UpdateAdminUserInput struct {
	ActorID     uuid.UUID
	UserID      uuid.UUID
	DisplayName *string
	Email       *string
	Role        *identity.AdminRole
}

// SetAdminUserStatusInput contains the input for status changes
type SetAdminUserStatusInput struct {
	ActorID uuid.UUID
	UserID  uuid.UUID
}

// ResetPasswordInput contains the input for an admin password reset
type ResetPasswordInput struct {
	ActorID     uuid.UUID
	UserID      uuid.UUID
	NewPassword string
}

// DeleteAdminUserInput contains the input for deleting an admin user
type DeleteAdminUserInput struct {
	ActorID uuid.UUID
	UserID  uuid.UUID
}

// ListAdminUsersInput contains the input for listing admin users
type ListAdminUsersInput struct {
	Keyword   string
	Status    *identity.AdminStatus
	Role      *identity.AdminRole
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AdminUserListResult contains a page of admin users
type AdminUserListResult struct {
	Users    []AdminUserInfo
	Total    int64
	Page     int
	PageSize int
}

// ToAdminUserInfo converts a domain admin user to its DTO representation
func ToAdminUserInfo(user *identity.AdminUser) AdminUserInfo {
	return AdminUserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
	}
}
