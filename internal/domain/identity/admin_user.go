package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/opas/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AdminRole represents the role of an admin user
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin" // Full access including admin user management
	AdminRoleAdmin      AdminRole = "admin"       // Marketplace administration
	AdminRoleModerator  AdminRole = "moderator"   // Review and alert handling only
)

// AdminStatus represents the status of an admin user
type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
	AdminStatusLocked   AdminStatus = "locked" // Locked after repeated failed logins or manually
)

// MaxFailedLogins is the number of consecutive failed logins before lockout
const MaxFailedLogins = 5

// Password cost for bcrypt
const bcryptCost = 12

// AdminUser represents an administrator of the marketplace.
// It is the aggregate root for identity operations.
type AdminUser struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         AdminRole
	Status       AdminStatus
	FailedLogins int
	LastLoginAt  *time.Time
	LastLoginIP  string
}

// NewAdminUser creates a new active admin user
func NewAdminUser(username, email, password string, role AdminRole) (*AdminUser, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &AdminUser{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		Role:              role,
		Status:            AdminStatusActive,
	}

	user.AddDomainEvent(NewAdminUserCreatedEvent(user))

	return user, nil
}

// SetDisplayName sets the user's display name
func (u *AdminUser) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetEmail sets the user's email
func (u *AdminUser) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetRole changes the user's role
func (u *AdminUser) SetRole(role AdminRole) error {
	if err := validateRole(role); err != nil {
		return err
	}

	oldRole := u.Role
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if oldRole != role {
		u.AddDomainEvent(NewAdminUserRoleChangedEvent(u, oldRole, role))
	}

	return nil
}

// ChangePassword changes the password after verifying the current one
func (u *AdminUser) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *AdminUser) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewAdminUserPasswordChangedEvent(u))

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *AdminUser) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate activates the user
func (u *AdminUser) Activate() error {
	if u.Status == AdminStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Admin user is already active")
	}

	oldStatus := u.Status
	u.Status = AdminStatusActive
	u.FailedLogins = 0
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewAdminUserStatusChangedEvent(u, oldStatus, AdminStatusActive))

	return nil
}

// Deactivate deactivates the user
func (u *AdminUser) Deactivate() error {
	if u.Status == AdminStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Admin user is already inactive")
	}

	oldStatus := u.Status
	u.Status = AdminStatusInactive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewAdminUserStatusChangedEvent(u, oldStatus, AdminStatusInactive))

	return nil
}

// Lock locks the user account
func (u *AdminUser) Lock() error {
	if u.Status == AdminStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Cannot lock an inactive admin user")
	}
	if u.Status == AdminStatusLocked {
		return shared.NewDomainError("ALREADY_LOCKED", "Admin user is already locked")
	}

	oldStatus := u.Status
	u.Status = AdminStatusLocked
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewAdminUserStatusChangedEvent(u, oldStatus, AdminStatusLocked))

	return nil
}

// Unlock unlocks the user account and resets the failed login counter
func (u *AdminUser) Unlock() error {
	if u.Status != AdminStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "Admin user is not locked")
	}

	u.Status = AdminStatusActive
	u.FailedLogins = 0
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewAdminUserStatusChangedEvent(u, AdminStatusLocked, AdminStatusActive))

	return nil
}

// RecordLoginSuccess records a successful login
func (u *AdminUser) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedLogins = 0
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked by this failure.
func (u *AdminUser) RecordLoginFailure() bool {
	u.FailedLogins++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if u.FailedLogins >= MaxFailedLogins && u.Status == AdminStatusActive {
		_ = u.Lock()
		return true
	}

	return false
}

// IsActive returns true if the user is active
func (u *AdminUser) IsActive() bool {
	return u.Status == AdminStatusActive
}

// IsLocked returns true if the user is locked
func (u *AdminUser) IsLocked() bool {
	return u.Status == AdminStatusLocked
}

// CanLogin returns true if the user can authenticate
func (u *AdminUser) CanLogin() bool {
	return u.Status == AdminStatusActive
}

// IsSuperAdmin returns true if the user has the super_admin role
func (u *AdminUser) IsSuperAdmin() bool {
	return u.Role == AdminRoleSuperAdmin
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (u *AdminUser) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func validateRole(role AdminRole) error {
	switch role {
	case AdminRoleSuperAdmin, AdminRoleAdmin, AdminRoleModerator:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Unknown admin role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
