package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/identity"
	"github.com/opas/backend/internal/domain/shared"
)

// AdminUserService handles admin user management.
// All mutating operations require the acting user to be a super admin.
type AdminUserService struct {
	userRepo identity.AdminUserRepository
	logger   *zap.Logger
}

// NewAdminUserService creates a new admin user management service
func NewAdminUserService(userRepo identity.AdminUserRepository, logger *zap.Logger) *AdminUserService {
	return &AdminUserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new admin user
func (s *AdminUserService) Create(ctx context.Context, input CreateAdminUserInput) (*AdminUserInfo, error) {
	if _, err := s.requireSuperAdmin(ctx, input.ActorID); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
	}

	user, err := identity.NewAdminUser(input.Username, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Admin user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	info := ToAdminUserInfo(user)
	return &info, nil
}

// Update updates an admin user's profile fields and role
func (s *AdminUserService) Update(ctx context.Context, input UpdateAdminUserInput) (*AdminUserInfo, error) {
	actor, err := s.requireSuperAdmin(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
		}
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	if input.Role != nil && *input.Role != user.Role {
		// A super admin demoting themselves could leave the system without one
		if actor.ID == user.ID && *input.Role != identity.AdminRoleSuperAdmin {
			return nil, shared.NewDomainError("FORBIDDEN", "Cannot change your own role")
		}
		if err := user.SetRole(*input.Role); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Admin user updated", zap.String("user_id", user.ID.String()))

	info := ToAdminUserInfo(user)
	return &info, nil
}

// Get retrieves an admin user by ID
func (s *AdminUserService) Get(ctx context.Context, id uuid.UUID) (*AdminUserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	info := ToAdminUserInfo(user)
	return &info, nil
}

// List returns admin users matching the filter
func (s *AdminUserService) List(ctx context.Context, input ListAdminUsersInput) (*AdminUserListResult, error) {
	filter := identity.NewAdminUserFilter()
	filter.Keyword = input.Keyword
	filter.Status = input.Status
	filter.Role = input.Role
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

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]AdminUserInfo, len(users))
	for i, user := range users {
		infos[i] = ToAdminUserInfo(user)
	}

	return &AdminUserListResult{
		Users:    infos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Activate activates an admin user
func (s *AdminUserService) Activate(ctx context.Context, input SetAdminUserStatusInput) error {
	return s.changeStatus(ctx, input, func(user *identity.AdminUser) error {
		return user.Activate()
	})
}

// Deactivate deactivates an admin user
func (s *AdminUserService) Deactivate(ctx context.Context, input SetAdminUserStatusInput) error {
	if input.ActorID == input.UserID {
		return shared.NewDomainError("FORBIDDEN", "Cannot deactivate your own account")
	}
	return s.changeStatus(ctx, input, func(user *identity.AdminUser) error {
		return user.Deactivate()
	})
}

// Lock locks an admin user so it can no longer authenticate
func (s *AdminUserService) Lock(ctx context.Context, input SetAdminUserStatusInput) error {
	if input.ActorID == input.UserID {
		return shared.NewDomainError("FORBIDDEN", "Cannot lock your own account")
	}
	return s.changeStatus(ctx, input, func(user *identity.AdminUser) error {
		return user.Lock()
	})
}

// Unlock unlocks a locked admin user and resets its failed login counter
func (s *AdminUserService) Unlock(ctx context.Context, input SetAdminUserStatusInput) error {
	return s.changeStatus(ctx, input, func(user *identity.AdminUser) error {
		return user.Unlock()
	})
}

// ResetPassword sets a new password for an admin user without the old one
func (s *AdminUserService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if _, err := s.requireSuperAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Admin user password reset",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", input.ActorID.String()))

	return nil
}

// Delete deletes an admin user
func (s *AdminUserService) Delete(ctx context.Context, input DeleteAdminUserInput) error {
	if _, err := s.requireSuperAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	if input.ActorID == input.UserID {
		return shared.NewDomainError("FORBIDDEN", "Cannot delete your own account")
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, input.UserID); err != nil {
		return err
	}

	s.logger.Info("Admin user deleted",
		zap.String("user_id", input.UserID.String()),
		zap.String("actor_id", input.ActorID.String()))

	return nil
}

// changeStatus applies a status transition under super admin authorization
func (s *AdminUserService) changeStatus(ctx context.Context, input SetAdminUserStatusInput, transition func(*identity.AdminUser) error) error {
	if _, err := s.requireSuperAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := transition(user); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Admin user status changed",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)))

	return nil
}

// requireSuperAdmin loads the acting user and verifies the super_admin role
func (s *AdminUserService) requireSuperAdmin(ctx context.Context, actorID uuid.UUID) (*identity.AdminUser, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, shared.NewDomainError("FORBIDDEN", "Acting user not found")
	}
	if !actor.IsSuperAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only super admins can manage admin users")
	}
	if !actor.IsActive() {
		return nil, shared.NewDomainError("FORBIDDEN", "Acting user is not active")
	}
	return actor, nil
}
