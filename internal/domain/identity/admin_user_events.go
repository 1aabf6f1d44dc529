package identity

import (
	"github.com/opas/backend/internal/domain/shared"
)

// Aggregate type constant for AdminUser
const AggregateTypeAdminUser = "AdminUser"

// AdminUser domain event types
const (
	EventTypeAdminUserCreated         = "AdminUserCreated"
	EventTypeAdminUserStatusChanged   = "AdminUserStatusChanged"
	EventTypeAdminUserRoleChanged     = "AdminUserRoleChanged"
	EventTypeAdminUserPasswordChanged = "AdminUserPasswordChanged"
)

// AdminUserCreatedEvent is published when an admin user is created
type AdminUserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     AdminRole `json:"role"`
}

// NewAdminUserCreatedEvent creates a new AdminUserCreatedEvent
func NewAdminUserCreatedEvent(user *AdminUser) *AdminUserCreatedEvent {
	return &AdminUserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminUserCreated, AggregateTypeAdminUser, user.ID),
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
	}
}

// AdminUserStatusChangedEvent is published when an admin user's status changes
type AdminUserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Username  string      `json:"username"`
	OldStatus AdminStatus `json:"old_status"`
	NewStatus AdminStatus `json:"new_status"`
}

// NewAdminUserStatusChangedEvent creates a new AdminUserStatusChangedEvent
func NewAdminUserStatusChangedEvent(user *AdminUser, oldStatus, newStatus AdminStatus) *AdminUserStatusChangedEvent {
	return &AdminUserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminUserStatusChanged, AggregateTypeAdminUser, user.ID),
		Username:        user.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// AdminUserRoleChangedEvent is published when an admin user's role changes
type AdminUserRoleChangedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	OldRole  AdminRole `json:"old_role"`
	NewRole  AdminRole `json:"new_role"`
}

// NewAdminUserRoleChangedEvent creates a new AdminUserRoleChangedEvent
func NewAdminUserRoleChangedEvent(user *AdminUser, oldRole, newRole AdminRole) *AdminUserRoleChangedEvent {
	return &AdminUserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminUserRoleChanged, AggregateTypeAdminUser, user.ID),
		Username:        user.Username,
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}

// AdminUserPasswordChangedEvent is published when an admin user's password is changed
type AdminUserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewAdminUserPasswordChangedEvent creates a new AdminUserPasswordChangedEvent
func NewAdminUserPasswordChangedEvent(user *AdminUser) *AdminUserPasswordChangedEvent {
	return &AdminUserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminUserPasswordChanged, AggregateTypeAdminUser, user.ID),
		Username:        user.Username,
	}
}
